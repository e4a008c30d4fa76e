package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRoute(t *testing.T) {
	cases := []struct {
		path string
		want route
		ok   bool
	}{
		{"/states", route{kind: routeList}, true},
		{"/states/", route{kind: routeList}, true},
		{"/states/new", route{kind: routeNew}, true},
		{"/states/12/edit", route{kind: routeEdit, id: "12"}, true},
		{"/states//edit", route{}, false},
		{"/states/12", route{}, false},
		{"/clubs", route{}, false},
		{"/states/1/2/edit", route{}, false},
	}
	for _, tc := range cases {
		got, ok := parseRoute("/states", tc.path)
		require.Equal(t, tc.ok, ok, "path %q", tc.path)
		require.Equal(t, tc.want, got, "path %q", tc.path)
	}
}

func TestRoutePathRoundTrip(t *testing.T) {
	for _, r := range []route{{kind: routeList}, {kind: routeNew}, {kind: routeEdit, id: "7"}} {
		got, ok := parseRoute("states", r.path("states"))
		require.True(t, ok)
		require.Equal(t, r, got)
	}
	require.Equal(t, "/states/7/edit", route{kind: routeEdit, id: "7"}.path("/states"))
}

func TestEventsNeverBlockWhenFull(t *testing.T) {
	events := NewEvents()
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(events.ch)+2; i++ {
			events.NotifyError("boom")
		}
		events.NavigateTo("/states")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Events blocked with a full buffer")
	}

	got := 0
	timeout := time.After(2 * time.Second)
	for got < cap(events.ch)+3 {
		select {
		case <-events.ch:
			got++
		case <-timeout:
			t.Fatalf("received %d events, want %d", got, cap(events.ch)+3)
		}
	}
}
