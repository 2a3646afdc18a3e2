package analyze

import "math"

// kmeansMaxIter bounds Lloyd iterations. The handful of chunks per
// document converges long before this.
const kmeansMaxIter = 50

// kmeans clusters vectors into k groups with Lloyd's algorithm.
// Initial centroids are evenly spaced input vectors, so the result is
// deterministic for a given input order. Returns per-vector cluster
// assignments and the final centroids.
func kmeans(vectors [][]float64, k, maxIter int) ([]int, [][]float64) {
	n := len(vectors)
	if n == 0 || k <= 0 {
		return nil, nil
	}
	if k > n {
		k = n
	}

	dim := len(vectors[0])
	centroids := make([][]float64, k)
	for c := 0; c < k; c++ {
		centroids[c] = append([]float64(nil), vectors[c*n/k]...)
	}

	assignments := make([]int, n)
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, v := range vectors {
			best := 0
			bestDist := math.Inf(1)
			for c, centroid := range centroids {
				if d := squaredDistance(v, centroid); d < bestDist {
					bestDist = d
					best = c
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sums := make([][]float64, k)
		sizes := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, v := range vectors {
			c := assignments[i]
			sizes[c]++
			for j, x := range v {
				sums[c][j] += x
			}
		}
		for c := range centroids {
			if sizes[c] == 0 {
				// An emptied cluster keeps its previous centroid.
				continue
			}
			for j := range centroids[c] {
				centroids[c][j] = sums[c][j] / float64(sizes[c])
			}
		}
	}
	return assignments, centroids
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func cosine64(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
