package models

import "time"

// Note is one ingested file's extracted text within a subject.
type Note struct {
	ID             string    `json:"id"`
	Subject        string    `json:"subject"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	SourceFileName string    `json:"source_file_name"`
}

// NoteSummary is the listing view of a note, without its content.
type NoteSummary struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary drops the content for listing responses.
func (n Note) Summary() NoteSummary {
	return NoteSummary{
		ID:        n.ID,
		Subject:   n.Subject,
		FileName:  n.SourceFileName,
		CreatedAt: n.CreatedAt,
	}
}
