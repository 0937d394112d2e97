package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/itish2003/studysense/logger"
	"github.com/itish2003/studysense/models"
)

// topK is how many notes back a single question.
const topK = 3

type sampling struct {
	temperature float64
	maxTokens   int
}

var (
	answerSampling     = sampling{temperature: 0.5, maxTokens: 200}
	evaluationSampling = sampling{temperature: 0.5, maxTokens: 500}
	listSampling       = sampling{temperature: 0.7, maxTokens: 1000}
)

func (s sampling) options() []GenerateOption {
	return []GenerateOption{WithTemperature(s.temperature), WithMaxTokens(s.maxTokens)}
}

// GenerationService builds study material from a subject's notes. When the
// subject has no notes the backend is not called.
type GenerationService interface {
	AnswerQuestion(ctx context.Context, subject, question string) (string, error)
	GeneratePracticeQuestions(ctx context.Context, subject string, n int) ([]models.PracticeQuestion, error)
	EvaluateAnswer(ctx context.Context, subject, question, userAnswer string) (*models.Evaluation, error)
	GenerateFlashcards(ctx context.Context, subject string, n int) ([]models.FlashcardDraft, error)
	// CreateFlashcards generates n cards and stores them. Nothing is stored
	// when generation fails; the response then carries the failure message.
	CreateFlashcards(ctx context.Context, subject string, n int) (*models.GenerateFlashcardsResponse, error)
}

type generationServiceImpl struct {
	knowledge  KnowledgeService
	flashcards FlashcardService
	generator  TextGenerator
	log        logger.Logger
}

func NewGenerationService(knowledge KnowledgeService, flashcards FlashcardService, generator TextGenerator, log logger.Logger) GenerationService {
	return &generationServiceImpl{
		knowledge:  knowledge,
		flashcards: flashcards,
		generator:  generator,
		log:        log,
	}
}

func (g *generationServiceImpl) AnswerQuestion(ctx context.Context, subject, question string) (string, error) {
	notes, err := g.knowledge.RetrieveTopK(ctx, subject, question, topK)
	if err != nil {
		return "", err
	}
	corpus := joinNotes(notes)
	if corpus == "" {
		return noNotesMessage, nil
	}

	prompt, err := renderPrompt(answerPrompt, map[string]any{
		"context":  corpus,
		"question": question,
	})
	if err != nil {
		return "", err
	}
	return g.generator.Generate(ctx, prompt, answerSampling.options()...), nil
}

func (g *generationServiceImpl) GeneratePracticeQuestions(ctx context.Context, subject string, n int) ([]models.PracticeQuestion, error) {
	notes, err := g.knowledge.RetrieveAll(ctx, subject)
	if err != nil {
		return nil, err
	}
	corpus := joinNotes(notes)
	if corpus == "" {
		return []models.PracticeQuestion{}, nil
	}

	prompt, err := renderPrompt(practicePrompt, map[string]any{
		"context": corpus,
		"count":   n,
	})
	if err != nil {
		return nil, err
	}

	result := parsePracticeQuestions(g.generator.Generate(ctx, prompt, listSampling.options()...))
	if !result.OK() {
		g.logMalformed("practice questions", subject, result.Raw)
		return []models.PracticeQuestion{{Error: questionsFailedText}}, nil
	}
	return result.Value, nil
}

func (g *generationServiceImpl) EvaluateAnswer(ctx context.Context, subject, question, userAnswer string) (*models.Evaluation, error) {
	notes, err := g.knowledge.RetrieveTopK(ctx, subject, question, topK)
	if err != nil {
		return nil, err
	}
	corpus := joinNotes(notes)
	if corpus == "" {
		return &models.Evaluation{Score: 0, Feedback: noNotesMessage}, nil
	}

	prompt, err := renderPrompt(evaluationPrompt, map[string]any{
		"context":  corpus,
		"question": question,
		"answer":   userAnswer,
	})
	if err != nil {
		return nil, err
	}

	result := parseEvaluation(g.generator.Generate(ctx, prompt, evaluationSampling.options()...))
	if !result.OK() {
		g.logMalformed("evaluation", subject, result.Raw)
		return &models.Evaluation{Score: 0, Feedback: evaluationFailedText}, nil
	}
	return &result.Value, nil
}

func (g *generationServiceImpl) GenerateFlashcards(ctx context.Context, subject string, n int) ([]models.FlashcardDraft, error) {
	notes, err := g.knowledge.RetrieveAll(ctx, subject)
	if err != nil {
		return nil, err
	}
	corpus := joinNotes(notes)
	if corpus == "" {
		return []models.FlashcardDraft{}, nil
	}

	prompt, err := renderPrompt(flashcardPrompt, map[string]any{
		"context": corpus,
		"count":   n,
	})
	if err != nil {
		return nil, err
	}

	result := parseFlashcards(g.generator.Generate(ctx, prompt, listSampling.options()...))
	if !result.OK() {
		g.logMalformed("flashcards", subject, result.Raw)
		return []models.FlashcardDraft{{Error: flashcardsFailedText}}, nil
	}
	return result.Value, nil
}

func (g *generationServiceImpl) CreateFlashcards(ctx context.Context, subject string, n int) (*models.GenerateFlashcardsResponse, error) {
	drafts, err := g.GenerateFlashcards(ctx, subject, n)
	if err != nil {
		return nil, err
	}
	if models.HasFailure(drafts) {
		return &models.GenerateFlashcardsResponse{
			Flashcards: []models.Flashcard{},
			Error:      drafts[0].Error,
		}, nil
	}

	saved, err := g.flashcards.Save(ctx, subject, drafts)
	if err != nil {
		return nil, err
	}
	return &models.GenerateFlashcardsResponse{Flashcards: saved}, nil
}

func (g *generationServiceImpl) logMalformed(task, subject, raw string) {
	g.log.Warn("GENERATION", "backend output could not be parsed", map[string]interface{}{
		"task":    task,
		"subject": subject,
		"raw":     truncate(raw, 200),
	})
}

func joinNotes(notes []string) string {
	return strings.Join(notes, "\n")
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
