package closet

import (
	"context"
	"errors"
	"testing"

	"auraapi/apiclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type remoteMock struct {
	items      []apiclient.ClothingItem
	fetchErr   error
	deleteErr  error
	fetchCalls int
	deleted    []string
}

func (m *remoteMock) FetchAll(ctx context.Context) ([]apiclient.ClothingItem, error) {
	m.fetchCalls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.items, nil
}

func (m *remoteMock) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.deleteErr
}

func TestNewStartsWithSeed(t *testing.T) {
	w := New(&remoteMock{})
	require.Equal(t, 4, w.Len())

	item, ok := w.GetByID("1")
	require.True(t, ok)
	assert.Equal(t, "Black Graphic T-Shirt", item.Description)
}

func TestLoadReplacesWholesale(t *testing.T) {
	remote := &remoteMock{items: []apiclient.ClothingItem{
		{ID: "100", Description: "Linen Shirt", Category: "tops"},
		{ID: "101", Description: "Chinos", Category: "bottoms"},
	}}
	w := New(remote)

	w.Load(context.Background())

	require.Equal(t, 2, w.Len())
	_, ok := w.GetByID("1")
	assert.False(t, ok, "seed items should be gone after a successful load")
	_, ok = w.GetByID("100")
	assert.True(t, ok)
}

func TestLoadKeepsItemsOnError(t *testing.T) {
	remote := &remoteMock{fetchErr: errors.New("boom")}
	w := New(remote)

	w.Load(context.Background())

	assert.Equal(t, 4, w.Len(), "failed load keeps whatever was there")
	assert.False(t, w.Loading())
}

func TestLoadKeepsItemsOnEmptyResult(t *testing.T) {
	remote := &remoteMock{items: nil}
	w := New(remote)

	w.Load(context.Background())

	assert.Equal(t, 4, w.Len(), "empty remote wardrobe never wipes local state")
}

func TestDeleteIsOptimistic(t *testing.T) {
	remote := &remoteMock{deleteErr: errors.New("network down")}
	w := New(remote)

	w.Delete(context.Background(), "2")

	// remote failure is swallowed, local removal stands
	assert.Equal(t, 3, w.Len())
	_, ok := w.GetByID("2")
	assert.False(t, ok)
	assert.Equal(t, []string{"2"}, remote.deleted)
}

func TestDeleteNumericID(t *testing.T) {
	w := New(&remoteMock{})

	w.Delete(context.Background(), 3)

	assert.Equal(t, 3, w.Len())
	_, ok := w.GetByID("3")
	assert.False(t, ok)
}

func TestGetByIDNormalizesType(t *testing.T) {
	w := New(&remoteMock{})

	byString, okString := w.GetByID("4")
	byInt, okInt := w.GetByID(4)

	require.True(t, okString)
	require.True(t, okInt)
	assert.Equal(t, byString, byInt)
}

func TestGetByIDMissing(t *testing.T) {
	w := New(&remoteMock{})

	_, ok := w.GetByID("999")
	assert.False(t, ok)
}

func TestAddAppends(t *testing.T) {
	w := New(&remoteMock{})

	w.Add(apiclient.ClothingItem{ID: "50", Description: "Rain Coat", Category: "outerwear"})

	require.Equal(t, 5, w.Len())
	items := w.Items()
	assert.Equal(t, "50", items[len(items)-1].ID)
}

func TestItemsReturnsCopy(t *testing.T) {
	w := New(&remoteMock{})

	items := w.Items()
	items[0].Description = "mutated"

	fresh, _ := w.GetByID(items[0].ID)
	assert.NotEqual(t, "mutated", fresh.Description)
}

func TestRecentlyAdded(t *testing.T) {
	w := New(&remoteMock{})
	w.Add(apiclient.ClothingItem{ID: "50", Description: "Rain Coat"})

	recent := w.RecentlyAdded(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "50", recent[0].ID)
	assert.Equal(t, "4", recent[1].ID)

	all := w.RecentlyAdded(100)
	assert.Len(t, all, 5)

	assert.Empty(t, w.RecentlyAdded(0))
	assert.Empty(t, w.RecentlyAdded(-3))
}

func TestLoadingFlagDuringLoad(t *testing.T) {
	remote := &remoteMock{}
	w := New(remote)

	assert.False(t, w.Loading())
	w.Load(context.Background())
	assert.False(t, w.Loading(), "flag resets after load finishes")

	w.SetLoading(true)
	assert.True(t, w.Loading())
	w.SetLoading(false)
	assert.False(t, w.Loading())
}

func TestAddDeleteSequenceFolds(t *testing.T) {
	// the final item set depends only on the operation sequence, not on
	// whether the remote calls in between succeeded
	remote := &remoteMock{deleteErr: errors.New("flaky network")}
	w := New(remote)

	w.Add(apiclient.ClothingItem{ID: "10", Description: "Wool Scarf"})
	w.Delete(context.Background(), "1")
	w.Add(apiclient.ClothingItem{ID: "11", Description: "Silk Tie"})
	w.Delete(context.Background(), 10)
	w.Delete(context.Background(), "999")

	ids := []string{}
	for _, item := range w.Items() {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"2", "3", "4", "11"}, ids)
}
