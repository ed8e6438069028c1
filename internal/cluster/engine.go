// Package cluster groups submission texts by semantic similarity using
// k-means over embeddings, with silhouette analysis picking the cluster
// count automatically.
package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/juliuspor/Harmony/internal/config"
	"github.com/juliuspor/Harmony/internal/semantic"
)

var (
	ErrInsufficientData = errors.New("not enough submissions to cluster")
	ErrTooManyItems     = errors.New("too many submissions to cluster")
)

// Result holds a completed clustering run. Clusters preserves the relative
// input order of texts within each group.
type Result struct {
	Clusters   [][]string
	NumGroups  int
	Silhouette float64
}

type Engine struct {
	encoder *semantic.Encoder
	cfg     config.ClusteringConfig
}

func NewEngine(encoder *semantic.Encoder, cfg config.ClusteringConfig) *Engine {
	return &Engine{encoder: encoder, cfg: cfg}
}

// Cluster embeds texts and partitions them. It fails before embedding when
// the submission count falls outside the configured bounds.
func (e *Engine) Cluster(ctx context.Context, texts []string) (*Result, error) {
	if err := e.checkBounds(len(texts)); err != nil {
		return nil, err
	}
	embeddings, err := e.encoder.Encode(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed submissions: %w", err)
	}
	return e.ClusterEmbedded(texts, embeddings)
}

// ClusterEmbedded partitions texts using pre-computed embeddings, picking k
// by silhouette score and then re-clustering at the winning k.
func (e *Engine) ClusterEmbedded(texts []string, embeddings [][]float32) (*Result, error) {
	if err := e.checkBounds(len(texts)); err != nil {
		return nil, err
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count %d does not match text count %d", len(embeddings), len(texts))
	}

	k, silhouette := e.selectOptimalK(embeddings)
	labels := kMeans(embeddings, k, e.cfg.Restarts, e.cfg.Seed)

	clusters := make([][]string, k)
	for i := range clusters {
		clusters[i] = []string{}
	}
	for i, text := range texts {
		clusters[labels[i]] = append(clusters[labels[i]], text)
	}

	return &Result{Clusters: clusters, NumGroups: k, Silhouette: silhouette}, nil
}

func (e *Engine) checkBounds(n int) error {
	if n < e.cfg.MinSubmissions {
		return fmt.Errorf("%w: need at least %d, got %d", ErrInsufficientData, e.cfg.MinSubmissions, n)
	}
	if n > e.cfg.MaxSubmissions {
		return fmt.Errorf("%w: maximum %d, got %d", ErrTooManyItems, e.cfg.MaxSubmissions, n)
	}
	return nil
}

// selectOptimalK evaluates each candidate k with fewer members than points
// and keeps the first k achieving the strictly best silhouette score. When
// no candidate fits, it falls back to min(2, n) with a zero score.
func (e *Engine) selectOptimalK(embeddings [][]float32) (int, float64) {
	n := len(embeddings)
	var validKs []int
	for _, k := range e.cfg.KRange {
		if k < n {
			validKs = append(validKs, k)
		}
	}
	if len(validKs) == 0 {
		k := 2
		if n < k {
			k = n
		}
		return k, 0
	}

	dist := cosineDistanceMatrix(embeddings)
	bestK, bestScore := validKs[0], -1.0
	for _, k := range validKs {
		labels := kMeans(embeddings, k, e.cfg.Restarts, e.cfg.Seed)
		if score := silhouetteScore(dist, labels, k); score > bestScore {
			bestScore = score
			bestK = k
		}
	}
	return bestK, bestScore
}
