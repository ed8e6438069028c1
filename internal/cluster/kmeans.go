package cluster

import (
	"math"
	"math/rand"
)

const maxKMeansIterations = 100

// kMeans partitions points into k clusters using Lloyd's algorithm with
// multiple random restarts. The restart with the lowest inertia wins.
// Determinism comes from seeding a single rng for all restarts.
func kMeans(points [][]float32, k, restarts int, seed int64) []int {
	rng := rand.New(rand.NewSource(seed))

	bestLabels := make([]int, len(points))
	bestInertia := math.Inf(1)
	for r := 0; r < restarts; r++ {
		labels, inertia := kMeansOnce(points, k, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			copy(bestLabels, labels)
		}
	}
	return bestLabels
}

func kMeansOnce(points [][]float32, k int, rng *rand.Rand) ([]int, float64) {
	dim := len(points[0])
	centroids := initialCentroids(points, k, rng)
	labels := make([]int, len(points))

	for iter := 0; iter < maxKMeansIterations; iter++ {
		changed := false
		for i, p := range points {
			best := nearestCentroid(p, centroids)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		counts := make([]int, k)
		next := make([][]float64, k)
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for i, p := range points {
			c := labels[i]
			counts[c]++
			for d, x := range p {
				next[c][d] += float64(x)
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// Reseed an empty cluster with the point farthest
				// from its current centroid.
				centroids[c] = points[farthestPoint(points, labels, centroids)]
				continue
			}
			centroid := make([]float32, dim)
			for d := range centroid {
				centroid[d] = float32(next[c][d] / float64(counts[c]))
			}
			centroids[c] = centroid
		}
	}

	var inertia float64
	for i, p := range points {
		inertia += squaredDistance(p, centroids[labels[i]])
	}
	return labels, inertia
}

func initialCentroids(points [][]float32, k int, rng *rand.Rand) [][]float32 {
	idx := rng.Perm(len(points))[:k]
	centroids := make([][]float32, k)
	for i, j := range idx {
		centroid := make([]float32, len(points[j]))
		copy(centroid, points[j])
		centroids[i] = centroid
	}
	return centroids
}

func nearestCentroid(p []float32, centroids [][]float32) int {
	best := 0
	bestDist := math.Inf(1)
	for c, centroid := range centroids {
		if d := squaredDistance(p, centroid); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func farthestPoint(points [][]float32, labels []int, centroids [][]float32) int {
	best := 0
	bestDist := -1.0
	for i, p := range points {
		if d := squaredDistance(p, centroids[labels[i]]); d > bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func squaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
