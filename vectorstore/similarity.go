package vectorstore

import (
	"math"
	"sort"
)

// CosineSimilarity returns 0 when either vector has zero magnitude or the
// dimensions differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rankRecords orders records by descending cosine similarity to query and keeps
// the first k. Equal scores fall back to ascending id so results are stable.
func rankRecords(records []Record, query []float32, k int) []Record {
	if k <= 0 || len(records) == 0 {
		return []Record{}
	}

	type scored struct {
		rec   Record
		score float64
	}
	ranked := make([]scored, len(records))
	for i, rec := range records {
		ranked[i] = scored{rec: rec, score: CosineSimilarity(query, rec.Embedding)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].rec.ID < ranked[j].rec.ID
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]Record, k)
	for i := 0; i < k; i++ {
		out[i] = ranked[i].rec
	}
	return out
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
