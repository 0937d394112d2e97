package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/itish2003/studysense/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSubject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Data Structures", "data_structures"},
		{"  data   structures  ", "data_structures"},
		{"DATA\tSTRUCTURES", "data_structures"},
		{"Math", "math"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeSubject(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeSubject(got), "normalize must be idempotent")
		})
	}
}

func TestSubjectKey_Invalid(t *testing.T) {
	for _, name := range []string{"", "   ", "c++", "math!", "_math", strings.Repeat("a", 60)} {
		_, err := SubjectKey(name)
		assert.ErrorIs(t, err, ErrInvalidSubject, "name %q", name)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Data Structures", DisplayName("data_structures"))
	assert.Equal(t, "Math", DisplayName("math"))
}

func TestSubjectService_CreateListDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	key, err := env.subjects.Create(ctx, "Data Structures")
	require.NoError(t, err)
	assert.Equal(t, "data_structures", key)

	_, err = env.subjects.Create(ctx, "  data   STRUCTURES ")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = env.subjects.Create(ctx, "Math")
	require.NoError(t, err)

	subjects, err := env.subjects.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Data Structures", "Math"}, subjects)

	require.NoError(t, env.subjects.Delete(ctx, "data structures"))
	subjects, err = env.subjects.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Math"}, subjects)
}

func TestSubjectService_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	_, err := env.subjects.Create(ctx, "Math")
	require.NoError(t, err)

	require.NoError(t, env.subjects.Delete(ctx, "History"))
	require.NoError(t, env.subjects.Delete(ctx, "History"))

	subjects, err := env.subjects.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Math"}, subjects)
}

func TestSubjectService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	_, err := env.knowledge.Ingest(ctx, "Biology", []byte("cells divide by mitosis"), "cells.txt")
	require.NoError(t, err)
	_, err = env.flashcards.Save(ctx, "Biology", []models.FlashcardDraft{{Question: "What is mitosis?", Answer: "Cell division."}})
	require.NoError(t, err)

	require.NoError(t, env.subjects.Delete(ctx, "biology"))

	notes, err := env.knowledge.RetrieveAll(ctx, "Biology")
	require.NoError(t, err)
	assert.Empty(t, notes)
	cards, err := env.flashcards.List(ctx, "Biology")
	require.NoError(t, err)
	assert.Empty(t, cards)
	collections, err := env.store.ListCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, collections)
}

func TestSubjectService_ListIncludesFlashcardOnlySubjects(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	_, err := env.flashcards.Save(ctx, "Chemistry", []models.FlashcardDraft{{Question: "H2O?", Answer: "Water."}})
	require.NoError(t, err)

	subjects, err := env.subjects.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chemistry"}, subjects)

	_, err = env.subjects.Create(ctx, "chemistry")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestSubjectService_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.subjects.Create(ctx, "Physics"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrAlreadyExists)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
}

func TestSubjectService_CreateInvalid(t *testing.T) {
	env := newTestEnv()
	_, err := env.subjects.Create(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidSubject)
}
