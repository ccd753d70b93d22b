// Package closet holds the in-memory wardrobe state a client session works
// against. It starts from a seed wardrobe, absorbs remote data when a load
// succeeds, and applies deletions optimistically so the UI never waits on
// the network.
//
// A Wardrobe serves a single logical session and is not safe for concurrent
// use from multiple goroutines.
package closet

import (
	"context"
	"fmt"
	"log"

	"auraapi/apiclient"

	"github.com/getsentry/sentry-go"
)

// RemoteStore is the subset of the API client the wardrobe needs.
type RemoteStore interface {
	FetchAll(ctx context.Context) ([]apiclient.ClothingItem, error)
	Delete(ctx context.Context, id string) error
}

type Wardrobe struct {
	remote  RemoteStore
	items   []apiclient.ClothingItem
	loading bool
}

// New returns a wardrobe pre-populated with the seed items.
func New(remote RemoteStore) *Wardrobe {
	return &Wardrobe{
		remote: remote,
		items:  seedItems(),
	}
}

// Load fetches the remote wardrobe and replaces the local state wholesale.
// A failed fetch or an empty result leaves the current items untouched, so
// the session always has something to show.
func (w *Wardrobe) Load(ctx context.Context) {
	w.loading = true
	defer func() { w.loading = false }()

	fetched, err := w.remote.FetchAll(ctx)
	if err != nil {
		log.Printf("Failed to load wardrobe, keeping current items: %v", err)
		sentry.CaptureException(err)
		return
	}
	if len(fetched) == 0 {
		return
	}
	w.items = fetched
}

// Add appends an item the server already accepted.
func (w *Wardrobe) Add(item apiclient.ClothingItem) {
	w.items = append(w.items, item)
}

// Delete removes the item locally first, then tells the server. A remote
// failure is logged and swallowed, the local removal stands either way.
func (w *Wardrobe) Delete(ctx context.Context, id any) {
	key := normalizeID(id)

	kept := w.items[:0]
	for _, item := range w.items {
		if item.ID != key {
			kept = append(kept, item)
		}
	}
	w.items = kept

	if err := w.remote.Delete(ctx, key); err != nil {
		log.Printf("Failed to delete item %s remotely: %v", key, err)
		sentry.CaptureException(err)
	}
}

// GetByID looks an item up by id. Numeric and string ids referring to the
// same item are equivalent.
func (w *Wardrobe) GetByID(id any) (apiclient.ClothingItem, bool) {
	key := normalizeID(id)
	for _, item := range w.items {
		if item.ID == key {
			return item, true
		}
	}
	return apiclient.ClothingItem{}, false
}

// Items returns a copy of the current wardrobe in insertion order.
func (w *Wardrobe) Items() []apiclient.ClothingItem {
	out := make([]apiclient.ClothingItem, len(w.items))
	copy(out, w.items)
	return out
}

func (w *Wardrobe) Len() int {
	return len(w.items)
}

// RecentlyAdded returns up to n items, newest first.
func (w *Wardrobe) RecentlyAdded(n int) []apiclient.ClothingItem {
	if n <= 0 {
		return []apiclient.ClothingItem{}
	}
	if n > len(w.items) {
		n = len(w.items)
	}
	out := make([]apiclient.ClothingItem, 0, n)
	for i := len(w.items) - 1; i >= len(w.items)-n; i-- {
		out = append(out, w.items[i])
	}
	return out
}

// SetLoading drives the UI's blocking overlay. Plain overwrite, there is
// no in-flight operation counting.
func (w *Wardrobe) SetLoading(loading bool) {
	w.loading = loading
}

func (w *Wardrobe) Loading() bool {
	return w.loading
}

func normalizeID(id any) string {
	return fmt.Sprint(id)
}
