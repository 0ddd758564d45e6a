package search

import "math"

// CosineSimilarity computes dot(a,b) / (||a|| * ||b||).
// Mismatched dimensions or a zero-norm input return 0 rather than an error:
// a listing with a degenerate embedding simply never ranks.
func CosineSimilarity(a, b []float32) float32 {
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

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
