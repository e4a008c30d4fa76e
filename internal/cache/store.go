package cache

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clubdesk/clubdesk/internal/api"
)

// Key is a logical cache key such as ["states-list"] or ["states-item", "12"].
type Key []string

// String joins the key parts for map lookups and logging.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// ListKey addresses the cached listing of a resource collection.
func ListKey(resource string) Key {
	return Key{resource + "-list"}
}

// ItemKey addresses a single cached record.
func ItemKey(resource, id string) Key {
	return Key{resource + "-item", id}
}

// Snapshot represents the latest list data available to the UI.
type Snapshot struct {
	Items               []api.Resource
	HasList             bool
	Stale               bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

type itemEntry struct {
	value api.Resource
	stale bool
}

// Store holds the cached list for one resource plus any single records
// fetched by forms. Invalidate marks entries stale and wakes the poller.
type Store struct {
	resource string

	mu       sync.RWMutex
	snapshot Snapshot
	items    map[string]itemEntry

	changed chan struct{}
}

// NewStore returns an empty store for the named resource collection.
func NewStore(resource string) *Store {
	return &Store{
		resource: resource,
		items:    make(map[string]itemEntry),
		changed:  make(chan struct{}, 1),
	}
}

// Resource returns the collection this store caches.
func (s *Store) Resource() string {
	return s.resource
}

// UpdateList replaces the stored listing. When err is non-nil the previous
// data is kept but the error is recorded for visibility.
func (s *Store) UpdateList(items []api.Resource, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.reconcileItems(items)
	s.snapshot.Items = sortByName(items)
	s.snapshot.HasList = true
	s.snapshot.Stale = false
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// reconcileItems marks item entries stale when the polled list shows a
// different version of the record, or no longer contains it. Callers hold mu.
func (s *Store) reconcileItems(items []api.Resource) {
	if len(s.items) == 0 {
		return
	}
	polled := make(map[string]api.Resource, len(items))
	for _, item := range items {
		polled[ItemKey(s.resource, item.ID.String()).String()] = item
	}
	for key, entry := range s.items {
		if entry.stale {
			continue
		}
		current, ok := polled[key]
		if ok && current.Name == entry.value.Name && current.UpdatedAt == entry.value.UpdatedAt {
			continue
		}
		entry.stale = true
		s.items[key] = entry
	}
}

// Snapshot returns a copy of the current list snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Items = cloneItems(s.snapshot.Items)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// PutItem caches a single record under its item key.
func (s *Store) PutItem(item api.Resource) {
	id := item.ID.String()
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[ItemKey(s.resource, id).String()] = itemEntry{value: item}
}

// Item returns a cached record. ok is false when nothing is cached or the
// entry was invalidated.
func (s *Store) Item(id string) (api.Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, found := s.items[ItemKey(s.resource, id).String()]
	if !found || entry.stale {
		return api.Resource{}, false
	}
	return entry.value, true
}

// Invalidate marks the given keys stale. It never blocks: the refresh it
// triggers happens on the poller's goroutine.
func (s *Store) Invalidate(keys ...Key) {
	if len(keys) == 0 {
		return
	}
	listKey := ListKey(s.resource).String()

	s.mu.Lock()
	for _, key := range keys {
		name := key.String()
		if name == listKey {
			s.snapshot.Stale = true
			continue
		}
		if entry, ok := s.items[name]; ok {
			entry.stale = true
			s.items[name] = entry
		}
	}
	s.mu.Unlock()

	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// IsStale reports whether key has been invalidated since it was last filled.
// Keys that were never filled count as stale.
func (s *Store) IsStale(key Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if key.String() == ListKey(s.resource).String() {
		return !s.snapshot.HasList || s.snapshot.Stale
	}
	entry, ok := s.items[key.String()]
	return !ok || entry.stale
}

// Changed delivers a signal after each Invalidate call. Signals coalesce.
func (s *Store) Changed() <-chan struct{} {
	return s.changed
}

func sortByName(items []api.Resource) []api.Resource {
	out := cloneItems(items)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func cloneItems(items []api.Resource) []api.Resource {
	if len(items) == 0 {
		return nil
	}
	dup := make([]api.Resource, len(items))
	copy(dup, items)
	return dup
}
