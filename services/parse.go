package services

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/itish2003/studysense/models"
)

const (
	noNotesMessage         = "No relevant notes found for this subject."
	evaluationFailedText   = "Error: Failed to evaluate answer."
	questionsFailedText    = "Failed to generate valid questions"
	flashcardsFailedText   = "Failed to generate valid flashcards"
	longAnswerQuestionType = "long-answer"
)

// Parsed is the outcome of decoding backend output: either a value or the raw
// text that could not be used.
type Parsed[T any] struct {
	Value T
	Raw   string
	ok    bool
}

func (p Parsed[T]) OK() bool { return p.ok }

func parsed[T any](v T) Parsed[T] { return Parsed[T]{Value: v, ok: true} }

func malformed[T any](raw string) Parsed[T] { return Parsed[T]{Raw: raw} }

// The whole trimmed response must be one JSON document. Prose around it, or a
// markdown fence, makes it malformed.
func decodeStrict(raw string, v any) bool {
	return json.Unmarshal([]byte(strings.TrimSpace(raw)), v) == nil
}

func parseEvaluation(raw string) Parsed[models.Evaluation] {
	var out struct {
		Score    *float64 `json:"score"`
		Feedback *string  `json:"feedback"`
	}
	if !decodeStrict(raw, &out) || out.Score == nil || out.Feedback == nil {
		return malformed[models.Evaluation](raw)
	}
	score := *out.Score
	if score != math.Trunc(score) || score < 0 || score > 100 {
		return malformed[models.Evaluation](raw)
	}
	return parsed(models.Evaluation{Score: int(score), Feedback: *out.Feedback})
}

func parsePracticeQuestions(raw string) Parsed[[]models.PracticeQuestion] {
	var items []struct {
		Question *string `json:"question"`
	}
	if !decodeStrict(raw, &items) || items == nil {
		return malformed[[]models.PracticeQuestion](raw)
	}
	questions := make([]models.PracticeQuestion, 0, len(items))
	for _, item := range items {
		if item.Question == nil || strings.TrimSpace(*item.Question) == "" {
			return malformed[[]models.PracticeQuestion](raw)
		}
		questions = append(questions, models.PracticeQuestion{
			Question: *item.Question,
			Type:     longAnswerQuestionType,
		})
	}
	return parsed(questions)
}

func parseFlashcards(raw string) Parsed[[]models.FlashcardDraft] {
	var items []struct {
		Question *string `json:"question"`
		Answer   *string `json:"answer"`
	}
	if !decodeStrict(raw, &items) || items == nil {
		return malformed[[]models.FlashcardDraft](raw)
	}
	cards := make([]models.FlashcardDraft, 0, len(items))
	for _, item := range items {
		if item.Question == nil || item.Answer == nil ||
			strings.TrimSpace(*item.Question) == "" || strings.TrimSpace(*item.Answer) == "" {
			return malformed[[]models.FlashcardDraft](raw)
		}
		cards = append(cards, models.FlashcardDraft{Question: *item.Question, Answer: *item.Answer})
	}
	return parsed(cards)
}
