package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
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
	metaSubject   = "subject"
	metaCreatedAt = "created_at"
	metaFileName  = "file_name"
	metaFileHash  = "file_hash"

	unknownFileName = "Unknown"
)

// KnowledgeService ingests notes into a subject and retrieves them as
// generation context.
type KnowledgeService interface {
	Ingest(ctx context.Context, subject string, data []byte, fileName string) (*models.Note, error)
	RetrieveTopK(ctx context.Context, subject, query string, k int) ([]string, error)
	RetrieveAll(ctx context.Context, subject string) ([]string, error)
	ListBySubject(ctx context.Context, subject string) ([]models.Note, error)
	// ContainsFile reports whether a note with the given content hash exists.
	ContainsFile(ctx context.Context, subject, fileHash string) (bool, error)
}

type knowledgeServiceImpl struct {
	store     vectorstore.Store
	extractor TextExtractor
	embedder  Embedder
	log       logger.Logger
}

func NewKnowledgeService(store vectorstore.Store, extractor TextExtractor, embedder Embedder, log logger.Logger) KnowledgeService {
	return &knowledgeServiceImpl{
		store:     store,
		extractor: extractor,
		embedder:  embedder,
		log:       log,
	}
}

// FileHash is the hex SHA-256 of a file's raw bytes, stored with each note.
func FileHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Ingest extracts the text of one file and stores it as a single note,
// creating the subject's notes collection when needed.
func (k *knowledgeServiceImpl) Ingest(ctx context.Context, subject string, data []byte, fileName string) (*models.Note, error) {
	key, err := SubjectKey(subject)
	if err != nil {
		return nil, err
	}

	content, err := k.extractor.Extract(data, fileName)
	if err != nil {
		return nil, err
	}

	// An empty note still needs a vector of the provider's dimension.
	embedText := content
	if embedText == "" {
		embedText = fileName
	}
	embedding, err := k.embedder.Embed(ctx, embedText)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}

	col, err := k.store.GetOrCreateCollection(ctx, notesCollection(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	note := &models.Note{
		ID:             uuid.New().String(),
		Subject:        strings.TrimSpace(subject),
		Content:        content,
		CreatedAt:      time.Now().UTC(),
		SourceFileName: fileName,
	}
	err = col.Add(ctx, vectorstore.Record{
		ID:        note.ID,
		Document:  note.Content,
		Embedding: embedding,
		Metadata: map[string]string{
			metaSubject:   note.Subject,
			metaCreatedAt: note.CreatedAt.Format(time.RFC3339Nano),
			metaFileName:  fileName,
			metaFileHash:  FileHash(data),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	k.log.Info("KNOWLEDGE", "note ingested", map[string]interface{}{
		"subject":   key,
		"file_name": fileName,
		"note_id":   note.ID,
		"chars":     len(content),
	})
	return note, nil
}

// RetrieveTopK returns the contents of at most k notes ranked by similarity
// to query. A subject without notes yields an empty result.
func (k *knowledgeServiceImpl) RetrieveTopK(ctx context.Context, subject, query string, topK int) ([]string, error) {
	col, err := k.notes(ctx, subject)
	if err != nil || col == nil || topK <= 0 {
		return []string{}, err
	}

	embedding, err := k.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}

	records, err := col.Query(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return documents(records), nil
}

// RetrieveAll returns the contents of every note of the subject.
func (k *knowledgeServiceImpl) RetrieveAll(ctx context.Context, subject string) ([]string, error) {
	col, err := k.notes(ctx, subject)
	if err != nil || col == nil {
		return []string{}, err
	}

	records, err := col.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return documents(records), nil
}

func (k *knowledgeServiceImpl) ListBySubject(ctx context.Context, subject string) ([]models.Note, error) {
	col, err := k.notes(ctx, subject)
	if err != nil || col == nil {
		return []models.Note{}, err
	}

	records, err := col.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	notes := make([]models.Note, 0, len(records))
	for _, rec := range records {
		fileName := rec.Metadata[metaFileName]
		if fileName == "" {
			fileName = unknownFileName
		}
		notes = append(notes, models.Note{
			ID:             rec.ID,
			Subject:        rec.Metadata[metaSubject],
			Content:        rec.Document,
			CreatedAt:      parseCreatedAt(rec.Metadata[metaCreatedAt]),
			SourceFileName: fileName,
		})
	}
	return notes, nil
}

func (k *knowledgeServiceImpl) ContainsFile(ctx context.Context, subject, fileHash string) (bool, error) {
	col, err := k.notes(ctx, subject)
	if err != nil || col == nil {
		return false, err
	}

	records, err := col.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	for _, rec := range records {
		if rec.Metadata[metaFileHash] == fileHash {
			return true, nil
		}
	}
	return false, nil
}

// notes returns the subject's notes collection, or nil when it does not exist.
func (k *knowledgeServiceImpl) notes(ctx context.Context, subject string) (vectorstore.Collection, error) {
	key, err := SubjectKey(subject)
	if err != nil {
		return nil, err
	}
	col, err := k.store.GetCollection(ctx, notesCollection(key))
	if errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return col, nil
}

func documents(records []vectorstore.Record) []string {
	docs := make([]string, 0, len(records))
	for _, rec := range records {
		docs = append(docs, rec.Document)
	}
	return docs
}

func parseCreatedAt(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
