package services

import (
	"testing"

	"github.com/itish2003/studysense/models"
	"github.com/stretchr/testify/assert"
)

func TestParseEvaluation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *models.Evaluation
	}{
		{"valid", `{"score": 85, "feedback": "Good answer."}`, &models.Evaluation{Score: 85, Feedback: "Good answer."}},
		{"surrounding whitespace", "\n  {\"score\": 0, \"feedback\": \"\"}\n", &models.Evaluation{Score: 0, Feedback: ""}},
		{"integral float", `{"score": 70.0, "feedback": "ok"}`, &models.Evaluation{Score: 70, Feedback: "ok"}},
		{"not json", "Error: Ollama server is not running or unreachable", nil},
		{"fenced", "```json\n{\"score\": 85, \"feedback\": \"x\"}\n```", nil},
		{"prose before", `Here you go: {"score": 85, "feedback": "x"}`, nil},
		{"missing feedback", `{"score": 85}`, nil},
		{"missing score", `{"feedback": "x"}`, nil},
		{"score as string", `{"score": "85", "feedback": "x"}`, nil},
		{"score too high", `{"score": 120, "feedback": "x"}`, nil},
		{"negative score", `{"score": -1, "feedback": "x"}`, nil},
		{"fractional score", `{"score": 85.5, "feedback": "x"}`, nil},
		{"array", `[{"score": 85, "feedback": "x"}]`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseEvaluation(tt.raw)
			if tt.want == nil {
				assert.False(t, got.OK())
				assert.Equal(t, tt.raw, got.Raw)
				return
			}
			assert.True(t, got.OK())
			assert.Equal(t, *tt.want, got.Value)
		})
	}
}

func TestParsePracticeQuestions(t *testing.T) {
	got := parsePracticeQuestions(`[{"question": "Explain recursion.", "type": "long-answer"}, {"question": "Compare BFS and DFS."}]`)
	assert.True(t, got.OK())
	assert.Equal(t, []models.PracticeQuestion{
		{Question: "Explain recursion.", Type: "long-answer"},
		{Question: "Compare BFS and DFS.", Type: "long-answer"},
	}, got.Value)

	empty := parsePracticeQuestions(`[]`)
	assert.True(t, empty.OK())
	assert.Empty(t, empty.Value)

	for _, raw := range []string{
		`not json`,
		`null`,
		`{"question": "single object"}`,
		`[{"question": "ok"}, {"type": "long-answer"}]`,
		`[{"question": ""}]`,
		`[{"question": 42}]`,
	} {
		assert.False(t, parsePracticeQuestions(raw).OK(), raw)
	}
}

func TestParseFlashcards(t *testing.T) {
	got := parseFlashcards(`[{"question":"Q1","answer":"A1"},{"question":"Q2","answer":"A2"}]`)
	assert.True(t, got.OK())
	assert.Equal(t, []models.FlashcardDraft{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "A2"},
	}, got.Value)

	for _, raw := range []string{
		``,
		`[{"question":"Q1"}]`,
		`[{"question":"Q1","answer":""}]`,
		`[{"question":"Q1","answer":"A1"}] trailing`,
		`{"question":"Q1","answer":"A1"}`,
	} {
		assert.False(t, parseFlashcards(raw).OK(), raw)
	}
}
