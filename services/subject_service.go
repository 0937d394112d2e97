package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/itish2003/studysense/logger"
	"github.com/itish2003/studysense/vectorstore"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	notesPrefix      = "notes_"
	flashcardsPrefix = "flashcards_"

	// Chroma caps collection names at 63 characters; "flashcards_" takes 11.
	maxSubjectKeyLength = 52
)

var subjectKeyPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_-]*[a-z0-9])?$`)

// NormalizeSubject lowercases name, trims it and replaces each run of internal
// whitespace with a single underscore.
func NormalizeSubject(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// SubjectKey normalizes name and checks that the key can be used in a
// collection name.
func SubjectKey(name string) (string, error) {
	key := NormalizeSubject(name)
	if key == "" {
		return "", fmt.Errorf("%w: name is empty", ErrInvalidSubject)
	}
	if len(key) > maxSubjectKeyLength {
		return "", fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidSubject, name, maxSubjectKeyLength)
	}
	if !subjectKeyPattern.MatchString(key) {
		return "", fmt.Errorf("%w: %q may only contain letters, digits, spaces, '-' and '_'", ErrInvalidSubject, name)
	}
	return key, nil
}

func notesCollection(key string) string      { return notesPrefix + key }
func flashcardsCollection(key string) string { return flashcardsPrefix + key }

// DisplayName turns a subject key back into a title-cased label.
func DisplayName(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// SubjectService manages the collections that make up a subject.
type SubjectService interface {
	Create(ctx context.Context, name string) (string, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

type subjectServiceImpl struct {
	store      vectorstore.Store
	flashcards FlashcardService
	log        logger.Logger
	// mu serializes the existence check and the create within this process.
	// Another process sharing the store can still race; the store then
	// reports the duplicate and Create returns ErrAlreadyExists.
	mu sync.Mutex
}

func NewSubjectService(store vectorstore.Store, flashcards FlashcardService, log logger.Logger) SubjectService {
	return &subjectServiceImpl{
		store:      store,
		flashcards: flashcards,
		log:        log,
	}
}

// Create makes an empty notes collection for name and returns its key.
func (s *subjectServiceImpl) Create(ctx context.Context, name string) (string, error) {
	key, err := SubjectKey(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.keys(ctx)
	if err != nil {
		return "", err
	}
	if keys[key] {
		return "", fmt.Errorf("%w: %s", ErrAlreadyExists, DisplayName(key))
	}

	if _, err := s.store.CreateCollection(ctx, notesCollection(key)); err != nil {
		if errors.Is(err, vectorstore.ErrCollectionExists) {
			return "", fmt.Errorf("%w: %s", ErrAlreadyExists, DisplayName(key))
		}
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.log.Info("SUBJECTS", "subject created", map[string]interface{}{"subject": key})
	return key, nil
}

// List returns the display names of every subject that has notes or
// flashcards, sorted.
func (s *subjectServiceImpl) List(ctx context.Context) ([]string, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for key := range keys {
		names = append(names, DisplayName(key))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the subject's notes and flashcards. Missing collections are
// not an error.
func (s *subjectServiceImpl) Delete(ctx context.Context, name string) error {
	key, err := SubjectKey(name)
	if err != nil {
		return err
	}

	if err := s.store.DeleteCollection(ctx, notesCollection(key)); err != nil && !errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if _, err := s.flashcards.DeleteSubject(ctx, name); err != nil {
		return err
	}

	s.log.Info("SUBJECTS", "subject deleted", map[string]interface{}{"subject": key})
	return nil
}

// keys collects the distinct subject keys found in either namespace.
func (s *subjectServiceImpl) keys(ctx context.Context) (map[string]bool, error) {
	names, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	keys := make(map[string]bool)
	for _, name := range names {
		switch {
		case strings.HasPrefix(name, notesPrefix):
			keys[strings.TrimPrefix(name, notesPrefix)] = true
		case strings.HasPrefix(name, flashcardsPrefix):
			keys[strings.TrimPrefix(name, flashcardsPrefix)] = true
		}
	}
	return keys, nil
}
