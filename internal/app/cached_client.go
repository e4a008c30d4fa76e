package app

import (
	"context"

	"github.com/clubdesk/clubdesk/internal/api"
	"github.com/clubdesk/clubdesk/internal/cache"
)

// cachedClient reads every record from the API and keeps the store's item
// entry current, so screens can paint the last known value while a load is
// running. Writes go straight to the API; the form invalidates the entries it
// touched once they succeed.
type cachedClient struct {
	api.ResourceStore
	store *cache.Store
}

func newCachedClient(client api.ResourceStore, store *cache.Store) *cachedClient {
	return &cachedClient{ResourceStore: client, store: store}
}

func (c *cachedClient) Get(ctx context.Context, id string) (api.Resource, error) {
	item, err := c.ResourceStore.Get(ctx, id)
	if err != nil {
		return api.Resource{}, err
	}
	c.store.PutItem(item)
	return item, nil
}
