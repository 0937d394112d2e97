package models

// PracticeQuestion is one generated long-answer question. A question with Error
// set is the failure marker of a practice generation.
type PracticeQuestion struct {
	Question string `json:"question,omitempty"`
	Type     string `json:"type,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Evaluation is the score (0-100) and feedback for a user's answer.
type Evaluation struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// HasFailure reports whether a generated list is a failure marker rather than
// usable items.
func HasFailure[T interface{ failure() string }](items []T) bool {
	for _, item := range items {
		if item.failure() != "" {
			return true
		}
	}
	return false
}

func (q PracticeQuestion) failure() string { return q.Error }

func (d FlashcardDraft) failure() string { return d.Error }
