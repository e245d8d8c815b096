package store

import (
	"math"
	"sort"

	"docqa/internal/domain"
)

// rankRecords scores every cached record against the query vector and
// returns the topK best. sort.SliceStable preserves insertion order between
// equal scores.
func rankRecords(records []storedRecord, vector []float32, topK int, metric string) []domain.ScoredChunk {
	if len(records) == 0 {
		return nil
	}

	scored := make([]domain.ScoredChunk, 0, len(records))
	for _, rec := range records {
		var score float64
		switch metric {
		case "dot":
			score = dotProduct(vector, rec.Vector)
		default:
			score = cosineSimilarity(vector, rec.Vector)
		}
		scored = append(scored, domain.ScoredChunk{
			Chunk:    rec.Chunk,
			Score:    score,
			Metadata: rec.Metadata,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK]
}

func dotProduct(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
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
