package analysis

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

const (
	kmeansMaxIter  = 300
	kmeansTol      = 1e-4
	kmeansRestarts = 10
)

// KMeansResult is the best clustering found over all restarts
type KMeansResult struct {
	Labels    []int
	Centroids [][]float64
	Inertia   float64
	Sizes     []int
}

// KMeans clusters rows into k groups with k-means++ seeding. The generator is seeded
// with seed so identical input always produces identical labels. Labels are numbered
// in order of first appearance.
func KMeans(rows [][]float64, k int, seed int64) (*KMeansResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if len(rows) < k {
		return nil, fmt.Errorf("need at least %d rows for %d clusters, have %d", k, k, len(rows))
	}

	rng := rand.New(rand.NewSource(seed))
	var best *KMeansResult
	for run := 0; run < kmeansRestarts; run++ {
		res := lloyd(rows, seedCentroids(rows, k, rng))
		if best == nil || res.Inertia < best.Inertia {
			best = res
		}
	}
	relabel(best, k)
	return best, nil
}

// seedCentroids picks k initial centres with the k-means++ rule
func seedCentroids(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(rows[rng.Intn(len(rows))]))

	dist := make([]float64, len(rows))
	for len(centroids) < k {
		total := 0.0
		for i, row := range rows {
			dist[i] = nearestDistance(row, centroids)
			total += dist[i]
		}
		if total == 0 {
			// every point coincides with a centre
			centroids = append(centroids, clone(rows[rng.Intn(len(rows))]))
			continue
		}
		target := rng.Float64() * total
		chosen := len(rows) - 1
		for i, d := range dist {
			target -= d
			if target <= 0 {
				chosen = i
				break
			}
		}
		centroids = append(centroids, clone(rows[chosen]))
	}
	return centroids
}

func lloyd(rows [][]float64, centroids [][]float64) *KMeansResult {
	k := len(centroids)
	d := len(rows[0])
	labels := make([]int, len(rows))

	for iter := 0; iter < kmeansMaxIter; iter++ {
		for i, row := range rows {
			labels[i] = nearest(row, centroids)
		}

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, d)
		}
		for i, row := range rows {
			floats.Add(next[labels[i]], row)
			counts[labels[i]]++
		}

		shift := 0.0
		for c := range next {
			if counts[c] == 0 {
				// empty cluster keeps its previous centre
				copy(next[c], centroids[c])
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
			shift += floats.Distance(next[c], centroids[c], 2)
		}
		centroids = next
		if shift < kmeansTol {
			break
		}
	}

	res := &KMeansResult{Labels: labels, Centroids: centroids, Sizes: make([]int, k)}
	for i, row := range rows {
		labels[i] = nearest(row, centroids)
		res.Sizes[labels[i]]++
		res.Inertia += squaredDistance(row, centroids[labels[i]])
	}
	return res
}

// relabel renumbers clusters in order of first appearance in the input
func relabel(res *KMeansResult, k int) {
	mapping := make([]int, k)
	for i := range mapping {
		mapping[i] = -1
	}
	next := 0
	for _, l := range res.Labels {
		if mapping[l] < 0 {
			mapping[l] = next
			next++
		}
	}
	for i := range mapping {
		if mapping[i] < 0 {
			mapping[i] = next
			next++
		}
	}

	centroids := make([][]float64, k)
	sizes := make([]int, k)
	for old, nw := range mapping {
		centroids[nw] = res.Centroids[old]
		sizes[nw] = res.Sizes[old]
	}
	for i, l := range res.Labels {
		res.Labels[i] = mapping[l]
	}
	res.Centroids = centroids
	res.Sizes = sizes
}

func nearest(row []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centre := range centroids {
		if d := squaredDistance(row, centre); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func nearestDistance(row []float64, centroids [][]float64) float64 {
	return squaredDistance(row, centroids[nearest(row, centroids)])
}

func squaredDistance(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
