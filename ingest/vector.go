package ingest

import "math"

// NormalizeVector returns a unit-length copy of v. Zero vectors (and
// empty input) come back as zeros, since they have no direction to keep.
func NormalizeVector(v []float32) []float32 {
	out := make([]float32, len(v))
	if len(v) == 0 {
		return out
	}

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return out
	}

	inv := float32(1 / norm)
	for i, x := range v {
		out[i] = x * inv
	}
	return out
}
