package vectorstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeFactory func(t *testing.T) Store

func stores() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"bolt": func(t *testing.T) Store {
			s, err := NewBoltStore(filepath.Join(t.TempDir(), "store.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestStore_CollectionLifecycle(t *testing.T) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t)

			_, err := s.CreateCollection(ctx, "notes_math")
			require.NoError(t, err)

			_, err = s.CreateCollection(ctx, "notes_math")
			assert.ErrorIs(t, err, ErrCollectionExists)

			_, err = s.GetOrCreateCollection(ctx, "flashcards_math")
			require.NoError(t, err)

			names, err := s.ListCollections(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"notes_math", "flashcards_math"}, names)

			_, err = s.GetCollection(ctx, "notes_physics")
			assert.ErrorIs(t, err, ErrCollectionNotFound)

			require.NoError(t, s.DeleteCollection(ctx, "notes_math"))
			assert.ErrorIs(t, s.DeleteCollection(ctx, "notes_math"), ErrCollectionNotFound)

			names, err = s.ListCollections(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"flashcards_math"}, names)
		})
	}
}

func TestStore_AddGetDelete(t *testing.T) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t)
			col, err := s.GetOrCreateCollection(ctx, "notes_math")
			require.NoError(t, err)

			require.NoError(t, col.Add(ctx,
				Record{ID: "b", Document: "second", Embedding: []float32{0, 1}, Metadata: map[string]string{"file_name": "b.txt"}},
				Record{ID: "a", Document: "first", Embedding: []float32{1, 0}},
			))

			all, err := col.Get(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "b", all[0].ID, "records come back in insertion order")
			assert.Equal(t, "b.txt", all[0].Metadata["file_name"])

			got, err := col.Get(ctx, "a", "missing")
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "first", got[0].Document)

			assert.Error(t, col.Add(ctx, Record{ID: "a", Document: "dup"}))

			require.NoError(t, col.Delete(ctx, "a", "missing"))
			n, err := col.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

func TestStore_QueryRanksBySimilarity(t *testing.T) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t)
			col, err := s.GetOrCreateCollection(ctx, "notes_math")
			require.NoError(t, err)

			empty, err := col.Query(ctx, []float32{1, 0}, 3)
			require.NoError(t, err)
			assert.Empty(t, empty)

			require.NoError(t, col.Add(ctx,
				Record{ID: "far", Document: "far", Embedding: []float32{0, 1}},
				Record{ID: "near", Document: "near", Embedding: []float32{1, 0.1}},
				Record{ID: "mid", Document: "mid", Embedding: []float32{1, 1}},
			))

			top, err := col.Query(ctx, []float32{1, 0}, 2)
			require.NoError(t, err)
			require.Len(t, top, 2)
			assert.Equal(t, "near", top[0].Document)
			assert.Equal(t, "mid", top[1].Document)

			all, err := col.Query(ctx, []float32{1, 0}, 10)
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}

func TestStore_RecreatedCollectionIsEmpty(t *testing.T) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t)
			col, err := s.GetOrCreateCollection(ctx, "notes_math")
			require.NoError(t, err)
			require.NoError(t, col.Add(ctx, Record{ID: "a", Document: "old"}))
			require.NoError(t, s.DeleteCollection(ctx, "notes_math"))

			again, err := s.GetOrCreateCollection(ctx, "notes_math")
			require.NoError(t, err)
			n, err := again.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}
