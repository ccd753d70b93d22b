package ootd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"auraapi/apiclient"
	"auraapi/closet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type advisorMock struct {
	calls   int
	itemIds []string
	err     error
}

func (m *advisorMock) SuggestOutfit(ctx context.Context, items []apiclient.ClothingItem) (*Entry, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	itemIds := m.itemIds
	if itemIds == nil {
		for _, item := range items {
			itemIds = append(itemIds, item.ID)
		}
	}
	return &Entry{ItemIds: itemIds, Reasoning: "Great layers for today."}, nil
}

type remoteStub struct{}

func (remoteStub) FetchAll(ctx context.Context) ([]apiclient.ClothingItem, error) { return nil, nil }
func (remoteStub) Delete(ctx context.Context, id string) error                    { return nil }

func fixedClock(day string) func() time.Time {
	parsed, _ := time.Parse("2006-01-02", day)
	return func() time.Time { return parsed }
}

func newCache(t *testing.T, advisor Advisor, day string) (*Cache, *FileStore) {
	t.Helper()
	store := &FileStore{Dir: t.TempDir()}
	return &Cache{Store: store, Advisor: advisor, Now: fixedClock(day)}, store
}

func TestTodayAsksAdvisorOncePerDay(t *testing.T) {
	advisor := &advisorMock{}
	cache, _ := newCache(t, advisor, "2026-08-28")
	wardrobe := closet.New(remoteStub{})

	first, err := cache.Today(context.Background(), wardrobe)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Len(t, first.Items, 4)

	second, err := cache.Today(context.Background(), wardrobe)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.Reasoning, second.Reasoning)

	assert.Equal(t, 1, advisor.calls, "second call must come from the cache")
}

func TestTodayRefreshesStaleEntry(t *testing.T) {
	advisor := &advisorMock{}
	store := &FileStore{Dir: t.TempDir()}
	require.NoError(t, store.Write(Entry{ItemIds: []string{"1"}, Reasoning: "yesterday's pick", Date: "2026-08-27"}))

	cache := &Cache{Store: store, Advisor: advisor, Now: fixedClock("2026-08-28")}
	wardrobe := closet.New(remoteStub{})

	suggestion, err := cache.Today(context.Background(), wardrobe)
	require.NoError(t, err)
	require.NotNil(t, suggestion)
	assert.Equal(t, 1, advisor.calls)
	assert.NotEqual(t, "yesterday's pick", suggestion.Reasoning)

	// stale entry got overwritten with today's
	stored, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "2026-08-28", stored.Date)
}

func TestTodayEmptyWardrobe(t *testing.T) {
	advisor := &advisorMock{}
	cache, _ := newCache(t, advisor, "2026-08-28")
	wardrobe := closet.New(remoteStub{})
	for _, item := range wardrobe.Items() {
		wardrobe.Delete(context.Background(), item.ID)
	}

	suggestion, err := cache.Today(context.Background(), wardrobe)
	require.NoError(t, err)
	assert.Nil(t, suggestion)
	assert.Equal(t, 0, advisor.calls)
}

func TestTodayEmptyCachedItemIdsTriggersRefresh(t *testing.T) {
	advisor := &advisorMock{}
	store := &FileStore{Dir: t.TempDir()}
	require.NoError(t, store.Write(Entry{ItemIds: nil, Reasoning: "", Date: "2026-08-28"}))

	cache := &Cache{Store: store, Advisor: advisor, Now: fixedClock("2026-08-28")}
	wardrobe := closet.New(remoteStub{})

	suggestion, err := cache.Today(context.Background(), wardrobe)
	require.NoError(t, err)
	require.NotNil(t, suggestion)
	assert.Equal(t, 1, advisor.calls)
}

func TestRegenerateBypassesCache(t *testing.T) {
	advisor := &advisorMock{}
	cache, _ := newCache(t, advisor, "2026-08-28")
	wardrobe := closet.New(remoteStub{})

	_, err := cache.Today(context.Background(), wardrobe)
	require.NoError(t, err)

	_, err = cache.Regenerate(context.Background(), wardrobe)
	require.NoError(t, err)

	assert.Equal(t, 2, advisor.calls)
}

func TestAdvisorErrorPropagates(t *testing.T) {
	advisor := &advisorMock{err: errors.New("model unavailable")}
	cache, _ := newCache(t, advisor, "2026-08-28")
	wardrobe := closet.New(remoteStub{})

	_, err := cache.Today(context.Background(), wardrobe)
	assert.Error(t, err)
}

func TestResolveDropsDeletedItems(t *testing.T) {
	advisor := &advisorMock{itemIds: []string{"1", "2", "999"}}
	cache, _ := newCache(t, advisor, "2026-08-28")
	wardrobe := closet.New(remoteStub{})

	suggestion, err := cache.Today(context.Background(), wardrobe)
	require.NoError(t, err)
	require.NotNil(t, suggestion)

	ids := make([]string, 0, len(suggestion.Items))
	for _, item := range suggestion.Items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"1", "2"}, ids, "ids without a matching wardrobe item are dropped")
}

func TestFileStoreMalformedFileReadsAsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "outfit_of_the_day.json"), []byte("{not json"), 0o644))

	store := &FileStore{Dir: dir}
	entry, err := store.Read()
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestFileStoreMissingFileReadsAsEmpty(t *testing.T) {
	store := &FileStore{Dir: t.TempDir()}
	entry, err := store.Read()
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestFileStoreWriteOverwrites(t *testing.T) {
	store := &FileStore{Dir: t.TempDir()}
	require.NoError(t, store.Write(Entry{ItemIds: []string{"1"}, Date: "2026-08-27"}))
	require.NoError(t, store.Write(Entry{ItemIds: []string{"2"}, Date: "2026-08-28"}))

	entry, err := store.Read()
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, []string{"2"}, entry.ItemIds)
	assert.Equal(t, "2026-08-28", entry.Date)
}
