package cmd

import (
	"context"
	"testing"

	"github.com/itish2003/studysense/logger"
	"github.com/itish2003/studysense/services"
	"github.com/itish2003/studysense/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lengthEmbedder struct{}

func (lengthEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, float32(len(text))}, nil
}

type replyGenerator string

func (g replyGenerator) Generate(ctx context.Context, prompt string, options ...services.GenerateOption) string {
	return string(g)
}

func newQuizServices(t *testing.T, reply string) (services.KnowledgeService, services.GenerationService) {
	t.Helper()
	log := logger.Nop()
	store := vectorstore.NewMemoryStore()
	extractor, err := services.NewFileExtractor("")
	require.NoError(t, err)
	knowledge := services.NewKnowledgeService(store, extractor, lengthEmbedder{}, log)
	flashcards := services.NewFlashcardService(store, lengthEmbedder{}, log)
	return knowledge, services.NewGenerationService(knowledge, flashcards, replyGenerator(reply), log)
}

func TestLoadQuestions(t *testing.T) {
	ctx := context.Background()

	t.Run("no notes", func(t *testing.T) {
		knowledge, generation := newQuizServices(t, `[{"question":"unused"}]`)
		questions, problem, err := loadQuestions(ctx, knowledge, generation, "Math", 2)
		require.NoError(t, err)
		assert.Empty(t, questions)
		assert.Contains(t, problem, "No notes found for Math")
	})

	t.Run("empty model list", func(t *testing.T) {
		knowledge, generation := newQuizServices(t, `[]`)
		_, err := knowledge.Ingest(ctx, "Math", []byte("x + 1 = 2"), "algebra.txt")
		require.NoError(t, err)

		questions, problem, err := loadQuestions(ctx, knowledge, generation, "Math", 2)
		require.NoError(t, err)
		assert.Empty(t, questions)
		assert.NotContains(t, problem, "No notes found")
		assert.Contains(t, problem, "no questions")
	})

	t.Run("malformed output", func(t *testing.T) {
		knowledge, generation := newQuizServices(t, "not json")
		_, err := knowledge.Ingest(ctx, "Math", []byte("x + 1 = 2"), "algebra.txt")
		require.NoError(t, err)

		_, problem, err := loadQuestions(ctx, knowledge, generation, "Math", 2)
		require.NoError(t, err)
		assert.Equal(t, "Failed to generate valid questions", problem)
	})

	t.Run("questions", func(t *testing.T) {
		knowledge, generation := newQuizServices(t, `[{"question":"Solve x + 1 = 2."}]`)
		_, err := knowledge.Ingest(ctx, "Math", []byte("x + 1 = 2"), "algebra.txt")
		require.NoError(t, err)

		questions, problem, err := loadQuestions(ctx, knowledge, generation, "Math", 1)
		require.NoError(t, err)
		assert.Empty(t, problem)
		require.Len(t, questions, 1)
		assert.Equal(t, "Solve x + 1 = 2.", questions[0].Question)
	})
}
