package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vehement/assetdb/internal/asset"
)

// memoryStore is an IndexStore kept in memory for tests.
type memoryStore struct {
	refs    []asset.Reference
	saveErr error
	loadErr error
}

func (s *memoryStore) SaveReferences(ctx context.Context, refs []asset.Reference) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.refs = append([]asset.Reference(nil), refs...)
	return nil
}

func (s *memoryStore) LoadReferences(ctx context.Context) ([]asset.Reference, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.refs, nil
}

func TestRegistry_SaveAndLoadIndex(t *testing.T) {
	store := &memoryStore{}
	r := newTestRegistry(t, WithIndexStore(store))

	a := materialAsset("id-1", "stone", "a.mat")
	a.Metadata.Tags = []string{"env"}
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(materialAsset("id-2", "wood", "b.mat")))

	require.NoError(t, r.SaveIndex(context.Background()))
	require.Len(t, store.refs, 2)

	// A fresh registry restores the bookkeeping without materializing assets.
	fresh := newTestRegistry(t, WithIndexStore(store))
	require.NoError(t, fresh.LoadIndex(context.Background()))

	ref, ok := fresh.Reference("id-1")
	require.True(t, ok)
	assert.Equal(t, "a.mat", ref.Path)
	assert.Equal(t, []string{"env"}, ref.Tags)
	assert.False(t, ref.Loaded, "restored references are not materialized")

	id, ok := fresh.IDForPath("b.mat")
	require.True(t, ok)
	assert.Equal(t, "id-2", id)

	_, ok = fresh.Get("id-1")
	assert.False(t, ok)

	stats := fresh.GetStatistics()
	assert.Equal(t, 2, stats.TotalAssets)
	assert.Equal(t, 0, stats.LoadedAssets)
}

func TestRegistry_LoadIndex_KeepsInMemoryEntries(t *testing.T) {
	store := &memoryStore{refs: []asset.Reference{
		{ID: "id-1", Type: asset.TypeMaterial, Name: "stale", Path: "old.mat"},
	}}
	r := newTestRegistry(t, WithIndexStore(store))

	require.NoError(t, r.Register(materialAsset("id-1", "fresh", "a.mat")))
	require.NoError(t, r.LoadIndex(context.Background()))

	ref, ok := r.Reference("id-1")
	require.True(t, ok)
	assert.Equal(t, "fresh", ref.Name)
	assert.True(t, ref.Loaded)
}

func TestRegistry_LoadIndex_SkipsPathClaimedByLiveAsset(t *testing.T) {
	// A persisted reference from before a re-import can share a path with a
	// live asset under a different identifier. It must not steal the path.
	store := &memoryStore{refs: []asset.Reference{
		{ID: "old-id", Type: asset.TypeMaterial, Name: "stale", Path: "a.mat"},
	}}
	r := newTestRegistry(t, WithIndexStore(store))

	require.NoError(t, r.Register(materialAsset("new-id", "fresh", "a.mat")))
	require.NoError(t, r.LoadIndex(context.Background()))

	id, ok := r.IDForPath("a.mat")
	require.True(t, ok)
	assert.Equal(t, "new-id", id)
	_, ok = r.Reference("old-id")
	assert.False(t, ok, "stale reference must not be restored")
}

func TestRegistry_Index_NoStore(t *testing.T) {
	r := newTestRegistry(t)

	assert.Error(t, r.SaveIndex(context.Background()))
	assert.Error(t, r.LoadIndex(context.Background()))
}

func TestRegistry_Index_StoreErrors(t *testing.T) {
	boom := errors.New("disk full")
	r := newTestRegistry(t, WithIndexStore(&memoryStore{saveErr: boom, loadErr: boom}))

	assert.ErrorIs(t, r.SaveIndex(context.Background()), boom)
	assert.ErrorIs(t, r.LoadIndex(context.Background()), boom)
}
