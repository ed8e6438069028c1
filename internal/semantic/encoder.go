// Package semantic turns free text into unit-length embedding vectors and
// provides the similarity primitives the clustering and consensus layers
// build on.
package semantic

import (
	"context"
	"fmt"
	"math"

	"github.com/juliuspor/Harmony/internal/provider"
)

// Encoder embeds texts through a provider.Embedder and normalizes the
// resulting vectors to unit length so dot products equal cosine similarity.
type Encoder struct {
	embedder provider.Embedder
	model    string
}

func NewEncoder(embedder provider.Embedder, model string) *Encoder {
	return &Encoder{embedder: embedder, model: model}
}

// Encode embeds every text in order. The returned slice is index-aligned
// with the input.
func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		vec, err := e.EncodeOne(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

func (e *Encoder) EncodeOne(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.embedder.Embed(ctx, &provider.EmbeddingRequest{Input: text, Model: e.model})
	if err != nil {
		return nil, err
	}
	return Normalize(resp.Vector), nil
}

// Normalize scales v to unit L2 norm. Zero vectors are returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// CosineSimilarity computes the cosine of the angle between a and b.
// Mismatched or empty vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// MeanPairwiseSimilarity averages cosine similarity over all unordered
// pairs of vectors. Fewer than two vectors score 0.
func MeanPairwiseSimilarity(vectors [][]float32) float64 {
	if len(vectors) < 2 {
		return 0
	}
	var sum float64
	var pairs int
	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			sum += CosineSimilarity(vectors[i], vectors[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}
