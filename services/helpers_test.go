package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"

	"github.com/itish2003/studysense/logger"
	"github.com/itish2003/studysense/vectorstore"
)

const testDims = 64

// wordEmbedder hashes each word into a bucket so texts sharing words end up
// close together.
type wordEmbedder struct {
	mu    sync.Mutex
	calls int
}

func (e *wordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	vec := make([]float32, testDims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%testDims]++
	}
	return vec, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("ollama unreachable")
}

// stubGenerator replays canned completions, repeating the last one.
type stubGenerator struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
	options   []GenerateOptions
}

func newStubGenerator(responses ...string) *stubGenerator {
	return &stubGenerator{responses: responses}
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string, options ...GenerateOption) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	g.options = append(g.options, resolveOptions(options))
	if len(g.responses) == 0 {
		return ""
	}
	i := len(g.prompts) - 1
	if i >= len(g.responses) {
		i = len(g.responses) - 1
	}
	return g.responses[i]
}

func (g *stubGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

// flakyStore fails every Add after the first okAdds records.
type flakyStore struct {
	vectorstore.Store
	mu     sync.Mutex
	okAdds int
}

func (s *flakyStore) GetOrCreateCollection(ctx context.Context, name string) (vectorstore.Collection, error) {
	col, err := s.Store.GetOrCreateCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	return &flakyCollection{Collection: col, store: s}, nil
}

type flakyCollection struct {
	vectorstore.Collection
	store *flakyStore
}

func (c *flakyCollection) Add(ctx context.Context, records ...vectorstore.Record) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if c.store.okAdds <= 0 {
		return errors.New("chroma: connection reset")
	}
	c.store.okAdds--
	return c.Collection.Add(ctx, records...)
}

type testEnv struct {
	store      *vectorstore.MemoryStore
	embedder   *wordEmbedder
	generator  *stubGenerator
	subjects   SubjectService
	knowledge  KnowledgeService
	flashcards FlashcardService
	generation GenerationService
}

func newTestEnv(responses ...string) *testEnv {
	log := logger.Nop()
	store := vectorstore.NewMemoryStore()
	embedder := &wordEmbedder{}
	generator := newStubGenerator(responses...)
	knowledge := NewKnowledgeService(store, &FileExtractor{}, embedder, log)
	flashcards := NewFlashcardService(store, embedder, log)
	return &testEnv{
		store:      store,
		embedder:   embedder,
		generator:  generator,
		subjects:   NewSubjectService(store, flashcards, log),
		knowledge:  knowledge,
		flashcards: flashcards,
		generation: NewGenerationService(knowledge, flashcards, generator, log),
	}
}
