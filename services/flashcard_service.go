package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/itish2003/studysense/logger"
	"github.com/itish2003/studysense/models"
	"github.com/itish2003/studysense/vectorstore"
)

const (
	metaQuestion = "question"
	metaAnswer   = "answer"
)

// FlashcardService stores question/answer cards per subject.
type FlashcardService interface {
	// Save writes every draft or none of them.
	Save(ctx context.Context, subject string, drafts []models.FlashcardDraft) ([]models.Flashcard, error)
	// SaveBestEffort keeps the drafts written before a failure.
	SaveBestEffort(ctx context.Context, subject string, drafts []models.FlashcardDraft) ([]models.Flashcard, error)
	List(ctx context.Context, subject string) ([]models.Flashcard, error)
	DeleteOne(ctx context.Context, subject, id string) (bool, error)
	DeleteSubject(ctx context.Context, subject string) (bool, error)
}

type flashcardServiceImpl struct {
	store    vectorstore.Store
	embedder Embedder
	log      logger.Logger
}

func NewFlashcardService(store vectorstore.Store, embedder Embedder, log logger.Logger) FlashcardService {
	return &flashcardServiceImpl{
		store:    store,
		embedder: embedder,
		log:      log,
	}
}

func (f *flashcardServiceImpl) Save(ctx context.Context, subject string, drafts []models.FlashcardDraft) ([]models.Flashcard, error) {
	return f.save(ctx, subject, drafts, true)
}

func (f *flashcardServiceImpl) SaveBestEffort(ctx context.Context, subject string, drafts []models.FlashcardDraft) ([]models.Flashcard, error) {
	return f.save(ctx, subject, drafts, false)
}

func (f *flashcardServiceImpl) save(ctx context.Context, subject string, drafts []models.FlashcardDraft, atomic bool) ([]models.Flashcard, error) {
	key, err := SubjectKey(subject)
	if err != nil {
		return nil, err
	}
	for i, d := range drafts {
		if d.Error != "" || strings.TrimSpace(d.Question) == "" || strings.TrimSpace(d.Answer) == "" {
			return nil, fmt.Errorf("%w: item %d needs a question and an answer", ErrInvalidFlashcard, i)
		}
	}
	if len(drafts) == 0 {
		return []models.Flashcard{}, nil
	}

	col, err := f.store.GetOrCreateCollection(ctx, flashcardsCollection(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	saved := make([]models.Flashcard, 0, len(drafts))
	for _, d := range drafts {
		card := models.Flashcard{
			ID:        uuid.New().String(),
			Subject:   strings.TrimSpace(subject),
			Question:  d.Question,
			Answer:    d.Answer,
			CreatedAt: time.Now().UTC(),
		}
		if err := f.add(ctx, col, card); err != nil {
			if atomic {
				f.rollback(ctx, col, saved)
			} else if len(saved) > 0 {
				f.log.Warn("FLASHCARDS", "partial flashcard save", map[string]interface{}{
					"subject": key,
					"written": len(saved),
					"total":   len(drafts),
				})
			}
			return nil, err
		}
		saved = append(saved, card)
	}

	f.log.Info("FLASHCARDS", "flashcards saved", map[string]interface{}{"subject": key, "count": len(saved)})
	return saved, nil
}

func (f *flashcardServiceImpl) add(ctx context.Context, col vectorstore.Collection, card models.Flashcard) error {
	embedding, err := f.embedder.Embed(ctx, card.Question)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	err = col.Add(ctx, vectorstore.Record{
		ID:        card.ID,
		Document:  card.Question,
		Embedding: embedding,
		Metadata: map[string]string{
			metaSubject:   card.Subject,
			metaQuestion:  card.Question,
			metaAnswer:    card.Answer,
			metaCreatedAt: card.CreatedAt.Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

func (f *flashcardServiceImpl) rollback(ctx context.Context, col vectorstore.Collection, written []models.Flashcard) {
	if len(written) == 0 {
		return
	}
	ids := make([]string, 0, len(written))
	for _, card := range written {
		ids = append(ids, card.ID)
	}
	if err := col.Delete(ctx, ids...); err != nil {
		f.log.Error("FLASHCARDS", "rollback of partial save failed", map[string]interface{}{
			"collection": col.Name(),
			"ids":        ids,
			"error":      err,
		})
	}
}

func (f *flashcardServiceImpl) List(ctx context.Context, subject string) ([]models.Flashcard, error) {
	col, err := f.collection(ctx, subject)
	if err != nil || col == nil {
		return []models.Flashcard{}, err
	}

	records, err := col.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	cards := make([]models.Flashcard, 0, len(records))
	for _, rec := range records {
		cards = append(cards, models.Flashcard{
			ID:        rec.ID,
			Subject:   rec.Metadata[metaSubject],
			Question:  rec.Metadata[metaQuestion],
			Answer:    rec.Metadata[metaAnswer],
			CreatedAt: parseCreatedAt(rec.Metadata[metaCreatedAt]),
		})
	}
	return cards, nil
}

// DeleteOne removes a single card and reports whether it existed and is now
// gone.
func (f *flashcardServiceImpl) DeleteOne(ctx context.Context, subject, id string) (bool, error) {
	col, err := f.collection(ctx, subject)
	if err != nil || col == nil {
		return false, err
	}

	existing, err := col.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if len(existing) == 0 {
		return false, nil
	}

	if err := col.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	remaining, err := col.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return len(remaining) == 0, nil
}

// DeleteSubject drops the subject's flashcard collection. A subject that never
// had flashcards still reports true.
func (f *flashcardServiceImpl) DeleteSubject(ctx context.Context, subject string) (bool, error) {
	key, err := SubjectKey(subject)
	if err != nil {
		return false, err
	}
	err = f.store.DeleteCollection(ctx, flashcardsCollection(key))
	if err != nil && !errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return true, nil
}

func (f *flashcardServiceImpl) collection(ctx context.Context, subject string) (vectorstore.Collection, error) {
	key, err := SubjectKey(subject)
	if err != nil {
		return nil, err
	}
	col, err := f.store.GetCollection(ctx, flashcardsCollection(key))
	if errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return col, nil
}
