package models

type CreateSubjectRequest struct {
	Name string `json:"name" binding:"required"`
}

type AskRequest struct {
	Subject  string `json:"subject" binding:"required"`
	Question string `json:"question" binding:"required"`
}

type PracticeRequest struct {
	Subject      string `json:"subject" binding:"required"`
	NumQuestions int    `json:"num_questions" binding:"required,min=1,max=20"`
}

type EvaluateRequest struct {
	Subject    string `json:"subject" binding:"required"`
	Question   string `json:"question" binding:"required"`
	UserAnswer string `json:"user_answer"`
}

type GenerateFlashcardsRequest struct {
	Subject       string `json:"subject" binding:"required"`
	NumFlashcards int    `json:"num_flashcards" binding:"required,min=1,max=50"`
}

type SaveFlashcardRequest struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}
