package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/itish2003/studysense/models"
)

// ExportService writes a subject's flashcards to a markdown deck inside a
// fixed directory.
type ExportService struct {
	flashcards FlashcardService
	dir        string
}

func NewExportService(flashcards FlashcardService, dir string) (*ExportService, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("could not determine absolute path for %s: %w", dir, err)
	}
	return &ExportService{flashcards: flashcards, dir: absPath}, nil
}

// sanitizeFilename keeps the deck inside the export directory.
func (e *ExportService) sanitizeFilename(filename string) (string, error) {
	if !strings.HasSuffix(filename, ".md") {
		return "", fmt.Errorf("filename must end with .md")
	}
	cleanPath := filepath.Join(e.dir, filepath.Base(filename))
	if !strings.HasPrefix(cleanPath, e.dir) {
		return "", fmt.Errorf("invalid filename, attempts to escape export directory")
	}
	return cleanPath, nil
}

// ExportFlashcards writes <subject key>.md and returns its path. An existing
// deck is only replaced when overwrite is set.
func (e *ExportService) ExportFlashcards(ctx context.Context, subject string, overwrite bool) (string, error) {
	key, err := SubjectKey(subject)
	if err != nil {
		return "", err
	}
	cards, err := e.flashcards.List(ctx, subject)
	if err != nil {
		return "", err
	}

	path, err := e.sanitizeFilename(key + ".md")
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil && !overwrite {
		return "", fmt.Errorf("file %s already exists", path)
	}
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(renderDeck(DisplayName(key), cards)), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func renderDeck(title string, cards []models.Flashcard) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s flashcards\n", title)
	if len(cards) == 0 {
		sb.WriteString("\nNo flashcards yet.\n")
		return sb.String()
	}
	for i, card := range cards {
		fmt.Fprintf(&sb, "\n## %d. %s\n\n%s\n", i+1, card.Question, card.Answer)
	}
	return sb.String()
}
