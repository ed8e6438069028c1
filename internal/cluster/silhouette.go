package cluster

import "github.com/juliuspor/Harmony/internal/semantic"

// cosineDistanceMatrix precomputes pairwise cosine distances (1 - cosine
// similarity) so silhouette scoring does not recompute them per k.
func cosineDistanceMatrix(points [][]float32) [][]float64 {
	n := len(points)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := 1 - semantic.CosineSimilarity(points[i], points[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}

// silhouetteScore computes the mean silhouette coefficient over all points
// given a precomputed distance matrix. Points in singleton clusters score 0.
func silhouetteScore(dist [][]float64, labels []int, k int) float64 {
	n := len(labels)
	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}

	var total float64
	for i := 0; i < n; i++ {
		own := labels[i]
		if counts[own] == 1 {
			continue
		}

		// Mean distance to every cluster, grouped in one pass.
		sums := make([]float64, k)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			sums[labels[j]] += dist[i][j]
		}

		a := sums[own] / float64(counts[own]-1)
		b := -1.0
		for c := 0; c < k; c++ {
			if c == own || counts[c] == 0 {
				continue
			}
			if mean := sums[c] / float64(counts[c]); b < 0 || mean < b {
				b = mean
			}
		}
		if b < 0 {
			continue
		}

		max := a
		if b > max {
			max = b
		}
		if max > 0 {
			total += (b - a) / max
		}
	}
	return total / float64(n)
}
