package models

import "time"

// Flashcard is a persisted question/answer pair for a subject.
type Flashcard struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// FlashcardDraft is a generated or user-supplied card before it is stored.
// A draft with Error set is the failure marker of a flashcard generation and
// carries no question or answer.
type FlashcardDraft struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Error    string `json:"error,omitempty"`
}
