package services

import (
	"context"
	"testing"

	"github.com/itish2003/studysense/logger"
	"github.com/itish2003/studysense/models"
	"github.com/itish2003/studysense/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var threeDrafts = []models.FlashcardDraft{
	{Question: "What is a stack?", Answer: "A LIFO collection."},
	{Question: "What is a queue?", Answer: "A FIFO collection."},
	{Question: "What is a heap?", Answer: "A tree with the heap property."},
}

func TestFlashcardService_SaveAndList(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	saved, err := env.flashcards.Save(ctx, "Data Structures", threeDrafts)
	require.NoError(t, err)
	require.Len(t, saved, 3)
	assert.NotEqual(t, saved[0].ID, saved[1].ID)
	for i, card := range saved {
		assert.Equal(t, threeDrafts[i].Question, card.Question)
		assert.Equal(t, threeDrafts[i].Answer, card.Answer)
		assert.Equal(t, "Data Structures", card.Subject)
		assert.False(t, card.CreatedAt.IsZero())
	}

	listed, err := env.flashcards.List(ctx, "data structures")
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, saved[2].ID, listed[2].ID)
	assert.Equal(t, "What is a heap?", listed[2].Question)
	assert.True(t, saved[2].CreatedAt.Equal(listed[2].CreatedAt))
}

func TestFlashcardService_SaveRejectsInvalidDrafts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	tests := []struct {
		name   string
		drafts []models.FlashcardDraft
	}{
		{"missing answer", []models.FlashcardDraft{{Question: "Q"}}},
		{"blank question", []models.FlashcardDraft{{Question: "  ", Answer: "A"}}},
		{"failure marker", []models.FlashcardDraft{{Error: flashcardsFailedText}}},
		{"one bad among good", append([]models.FlashcardDraft{threeDrafts[0]}, models.FlashcardDraft{Answer: "A"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.flashcards.Save(ctx, "Math", tt.drafts)
			assert.ErrorIs(t, err, ErrInvalidFlashcard)
		})
	}

	cards, err := env.flashcards.List(ctx, "Math")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestFlashcardService_SaveIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: vectorstore.NewMemoryStore(), okAdds: 2}
	flashcards := NewFlashcardService(store, &wordEmbedder{}, logger.Nop())

	saved, err := flashcards.Save(ctx, "Math", threeDrafts)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Nil(t, saved)

	cards, err := flashcards.List(ctx, "Math")
	require.NoError(t, err)
	assert.Empty(t, cards, "items written before the failure are rolled back")
}

func TestFlashcardService_SaveBestEffortKeepsWrittenItems(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: vectorstore.NewMemoryStore(), okAdds: 2}
	flashcards := NewFlashcardService(store, &wordEmbedder{}, logger.Nop())

	saved, err := flashcards.SaveBestEffort(ctx, "Math", threeDrafts)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Nil(t, saved)

	cards, err := flashcards.List(ctx, "Math")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "What is a stack?", cards[0].Question)
	assert.Equal(t, "What is a queue?", cards[1].Question)
}

func TestFlashcardService_DeleteOne(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	saved, err := env.flashcards.Save(ctx, "Math", threeDrafts[:2])
	require.NoError(t, err)

	deleted, err := env.flashcards.DeleteOne(ctx, "Math", saved[0].ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = env.flashcards.DeleteOne(ctx, "Math", saved[0].ID)
	require.NoError(t, err)
	assert.False(t, deleted, "second delete of the same id reports false")

	deleted, err = env.flashcards.DeleteOne(ctx, "Math", "no-such-id")
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = env.flashcards.DeleteOne(ctx, "History", saved[1].ID)
	require.NoError(t, err)
	assert.False(t, deleted, "ids are scoped to their subject")

	cards, err := env.flashcards.List(ctx, "Math")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, saved[1].ID, cards[0].ID)
}

func TestFlashcardService_DeleteSubject(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	ok, err := env.flashcards.DeleteSubject(ctx, "Never Created")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = env.flashcards.Save(ctx, "Math", threeDrafts[:1])
	require.NoError(t, err)
	_, err = env.flashcards.Save(ctx, "History", threeDrafts[1:2])
	require.NoError(t, err)

	ok, err = env.flashcards.DeleteSubject(ctx, "math")
	require.NoError(t, err)
	assert.True(t, ok)

	cards, err := env.flashcards.List(ctx, "Math")
	require.NoError(t, err)
	assert.Empty(t, cards)
	cards, err = env.flashcards.List(ctx, "History")
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}
