// Package ootd caches the daily outfit suggestion so the advisor is asked
// at most once per calendar day. Concurrent refreshes for the same day are
// last-write-wins; both writers store an equally valid suggestion for that
// day, so the race is harmless.
package ootd

import (
	"context"
	"log"
	"time"

	"auraapi/apiclient"
	"auraapi/closet"

	"github.com/getsentry/sentry-go"
)

const dayKeyLayout = "2006-01-02"

// Entry is the persisted shape of a day's suggestion.
type Entry struct {
	ItemIds   []string `json:"itemIds"`
	Reasoning string   `json:"reasoning"`
	Date      string   `json:"date"`
}

// Suggestion is a day's outfit resolved against the wardrobe.
type Suggestion struct {
	Items     []apiclient.ClothingItem
	Reasoning string
}

// Advisor produces a fresh suggestion for the given wardrobe.
type Advisor interface {
	SuggestOutfit(ctx context.Context, items []apiclient.ClothingItem) (*Entry, error)
}

type Cache struct {
	Store   Store
	Advisor Advisor
	// Now is the clock used for the day key, overridable in tests.
	// Defaults to time.Now.
	Now func() time.Time
}

func (c *Cache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Cache) todayKey() string {
	return c.now().UTC().Format(dayKeyLayout)
}

// Today returns the cached suggestion for the current day, asking the
// advisor only when the cache is missing, stale, or empty. An empty
// wardrobe yields no suggestion and no advisor call.
func (c *Cache) Today(ctx context.Context, wardrobe *closet.Wardrobe) (*Suggestion, error) {
	if wardrobe.Len() == 0 {
		return nil, nil
	}

	today := c.todayKey()
	cached, err := c.Store.Read()
	if err != nil {
		log.Printf("Failed to read outfit cache: %v", err)
		sentry.CaptureException(err)
	}
	if cached != nil && cached.Date == today && len(cached.ItemIds) > 0 {
		return c.resolveEntry(*cached, wardrobe), nil
	}

	return c.refresh(ctx, wardrobe, today)
}

// Regenerate bypasses the cache and asks the advisor for a fresh
// suggestion, overwriting whatever is stored.
func (c *Cache) Regenerate(ctx context.Context, wardrobe *closet.Wardrobe) (*Suggestion, error) {
	if wardrobe.Len() == 0 {
		return nil, nil
	}
	return c.refresh(ctx, wardrobe, c.todayKey())
}

func (c *Cache) refresh(ctx context.Context, wardrobe *closet.Wardrobe, day string) (*Suggestion, error) {
	entry, err := c.Advisor.SuggestOutfit(ctx, wardrobe.Items())
	if err != nil {
		return nil, err
	}
	entry.Date = day

	// A failed write costs one extra advisor call tomorrow, nothing worse.
	if err := c.Store.Write(*entry); err != nil {
		log.Printf("Failed to persist outfit suggestion: %v", err)
		sentry.CaptureException(err)
	}

	return c.resolveEntry(*entry, wardrobe), nil
}

// resolveEntry maps stored ids back to wardrobe items, dropping ids whose
// items have since been deleted.
func (c *Cache) resolveEntry(entry Entry, wardrobe *closet.Wardrobe) *Suggestion {
	items := make([]apiclient.ClothingItem, 0, len(entry.ItemIds))
	for _, id := range entry.ItemIds {
		if item, ok := wardrobe.GetByID(id); ok {
			items = append(items, item)
		}
	}
	return &Suggestion{Items: items, Reasoning: entry.Reasoning}
}
