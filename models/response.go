package models

type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type AskResponse struct {
	Subject  string `json:"subject"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ListNotesResponse lists notes. Error is set when an upload stopped part way;
// Notes then holds what was written before the failure.
type ListNotesResponse struct {
	Count int           `json:"count"`
	Notes []NoteSummary `json:"notes"`
	Error string        `json:"error,omitempty"`
}

// GenerateFlashcardsResponse holds the stored cards, or the generation failure
// message when the backend output could not be used.
type GenerateFlashcardsResponse struct {
	Flashcards []Flashcard `json:"flashcards"`
	Error      string      `json:"error,omitempty"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}
