package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

// ChromaStore adapts a Chroma server reached through the v2 HTTP API.
// Embeddings are always supplied by the caller, so the collection's own
// embedding function is never consulted.
type ChromaStore struct {
	client chromago.Client
}

// NewChromaStore connects to the Chroma server at baseURL. An empty baseURL
// uses the client default (http://localhost:8000).
func NewChromaStore(baseURL string) (*ChromaStore, error) {
	var opts []chromago.ClientOption
	if baseURL != "" {
		opts = append(opts, chromago.WithBaseURL(baseURL))
	}
	client, err := chromago.NewHTTPClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}
	return &ChromaStore{client: client}, nil
}

func (s *ChromaStore) Close() error {
	return s.client.Close()
}

func collectionMetadata() chromago.CollectionMetadata {
	return chromago.NewMetadata(
		chromago.NewStringAttribute("created_by", "studysense"),
	)
}

func (s *ChromaStore) CreateCollection(ctx context.Context, name string) (Collection, error) {
	col, err := s.client.CreateCollection(ctx, name, chromago.WithCollectionMetadataCreate(collectionMetadata()))
	if err != nil {
		if s.exists(ctx, name) {
			return nil, fmt.Errorf("%w: %s", ErrCollectionExists, name)
		}
		return nil, fmt.Errorf("failed to create chroma collection %s: %w", name, err)
	}
	return &chromaCollection{col: col}, nil
}

func (s *ChromaStore) GetOrCreateCollection(ctx context.Context, name string) (Collection, error) {
	col, err := s.client.GetOrCreateCollection(ctx, name, chromago.WithCollectionMetadataCreate(collectionMetadata()))
	if err != nil {
		return nil, fmt.Errorf("failed to get or create chroma collection %s: %w", name, err)
	}
	return &chromaCollection{col: col}, nil
}

func (s *ChromaStore) GetCollection(ctx context.Context, name string) (Collection, error) {
	col, err := s.client.GetCollection(ctx, name)
	if err != nil {
		if !s.exists(ctx, name) {
			return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
		}
		return nil, fmt.Errorf("failed to get chroma collection %s: %w", name, err)
	}
	return &chromaCollection{col: col}, nil
}

func (s *ChromaStore) DeleteCollection(ctx context.Context, name string) error {
	if err := s.client.DeleteCollection(ctx, name); err != nil {
		if !s.exists(ctx, name) {
			return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
		}
		return fmt.Errorf("failed to delete chroma collection %s: %w", name, err)
	}
	return nil
}

func (s *ChromaStore) ListCollections(ctx context.Context) ([]string, error) {
	cols, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chroma collections: %w", err)
	}
	names := make([]string, 0, len(cols))
	for _, col := range cols {
		names = append(names, col.Name())
	}
	sort.Strings(names)
	return names, nil
}

// exists is used only to classify errors; Chroma reports missing and duplicate
// collections with free-form messages.
func (s *ChromaStore) exists(ctx context.Context, name string) bool {
	names, err := s.ListCollections(ctx)
	if err != nil {
		return false
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

type chromaCollection struct {
	col chromago.Collection
}

func (c *chromaCollection) Name() string { return c.col.Name() }

func (c *chromaCollection) Add(ctx context.Context, records ...Record) error {
	if len(records) == 0 {
		return nil
	}
	ids := make([]chromago.DocumentID, len(records))
	texts := make([]string, len(records))
	embs := make([]embeddings.Embedding, len(records))
	metas := make([]chromago.DocumentMetadata, len(records))
	for i, rec := range records {
		ids[i] = chromago.DocumentID(rec.ID)
		texts[i] = rec.Document
		embs[i] = embeddings.NewEmbeddingFromFloat32(rec.Embedding)
		metas[i] = toChromaMetadata(rec.Metadata)
	}
	err := c.col.Add(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(embs...),
		chromago.WithMetadatas(metas...),
	)
	if err != nil {
		return fmt.Errorf("failed to add records to chroma collection %s: %w", c.col.Name(), err)
	}
	return nil
}

func (c *chromaCollection) Get(ctx context.Context, ids ...string) ([]Record, error) {
	var opts []chromago.CollectionGetOption
	if len(ids) > 0 {
		opts = append(opts, chromago.WithIDsGet(toDocumentIDs(ids)...))
	}
	results, err := c.col.Get(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents from chroma collection %s: %w", c.col.Name(), err)
	}

	gotIDs := results.GetIDs()
	docs := results.GetDocuments()
	metas := results.GetMetadatas()
	out := make([]Record, 0, len(gotIDs))
	for i, id := range gotIDs {
		rec := Record{ID: string(id)}
		if i < len(docs) {
			rec.Document = docs[i].ContentString()
		}
		if i < len(metas) {
			if rec.Metadata, err = fromChromaMetadata(metas[i]); err != nil {
				return nil, err
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *chromaCollection) Query(ctx context.Context, embedding []float32, k int) ([]Record, error) {
	if k <= 0 {
		return []Record{}, nil
	}
	// Older Chroma servers reject n_results larger than the collection.
	count, err := c.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []Record{}, nil
	}
	if k > count {
		k = count
	}

	results, err := c.col.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(embedding)),
		chromago.WithNResults(k),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chroma collection %s: %w", c.col.Name(), err)
	}

	idGroups := results.GetIDGroups()
	docGroups := results.GetDocumentsGroups()
	metaGroups := results.GetMetadatasGroups()
	if len(idGroups) == 0 {
		return []Record{}, nil
	}
	out := make([]Record, 0, len(idGroups[0]))
	for i, id := range idGroups[0] {
		rec := Record{ID: string(id)}
		if len(docGroups) > 0 && i < len(docGroups[0]) {
			rec.Document = docGroups[0][i].ContentString()
		}
		if len(metaGroups) > 0 && i < len(metaGroups[0]) {
			if rec.Metadata, err = fromChromaMetadata(metaGroups[0][i]); err != nil {
				return nil, err
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *chromaCollection) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.col.Delete(ctx, chromago.WithIDsDelete(toDocumentIDs(ids)...)); err != nil {
		return fmt.Errorf("failed to delete records from chroma collection %s: %w", c.col.Name(), err)
	}
	return nil
}

func (c *chromaCollection) Count(ctx context.Context) (int, error) {
	n, err := c.col.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in chroma collection %s: %w", c.col.Name(), err)
	}
	return int(n), nil
}

func toDocumentIDs(ids []string) []chromago.DocumentID {
	out := make([]chromago.DocumentID, len(ids))
	for i, id := range ids {
		out[i] = chromago.DocumentID(id)
	}
	return out
}

func toChromaMetadata(m map[string]string) chromago.DocumentMetadata {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]*chromago.MetaAttribute, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, chromago.NewStringAttribute(k, m[k]))
	}
	return chromago.NewDocumentMetadata(attrs...)
}

// fromChromaMetadata round-trips through JSON because DocumentMetadata does not
// expose its attribute map.
func fromChromaMetadata(meta chromago.DocumentMetadata) (map[string]string, error) {
	if meta == nil {
		return map[string]string{}, nil
	}
	jsonBytes, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("could not marshal chroma metadata: %w", err)
	}
	return decodeMetadataJSON(jsonBytes)
}

func decodeMetadataJSON(data []byte) (map[string]string, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("could not unmarshal chroma metadata: %w", err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out, nil
}
