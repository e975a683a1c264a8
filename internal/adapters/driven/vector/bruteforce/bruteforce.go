// Package bruteforce ranks stored vectors against a query by scanning them all.
//
// It backs the local vector indexes (memory and SQLite). Documents prepared
// by docqa hold at most a few thousand chunks, so an exhaustive scan answers
// a query in well under a millisecond.
package bruteforce

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Score returns the similarity of a and b under metric; higher is closer.
// Euclidean distance d is reported as 1/(1+d).
func Score(metric domain.DistanceMetric, a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("bruteforce: dimension mismatch: %d vs %d", len(a), len(b))
	}
	switch metric {
	case domain.MetricEuclidean:
		return 1 / (1 + l2Distance(a, b)), nil
	case domain.MetricCosine:
		ma, mb := magnitude(a), magnitude(b)
		if ma == 0 || mb == 0 {
			return 0, nil
		}
		return dot(a, b) / (ma * mb), nil
	case domain.MetricDotProduct:
		return dot(a, b), nil
	default:
		return 0, fmt.Errorf("%w: unknown distance metric %q", domain.ErrInvalidConfiguration, metric)
	}
}

// Rank scores every vector against query and returns the best k in
// descending score order. Ties keep insertion order.
func Rank(metric domain.DistanceMetric, query []float32, ids []string, vectors [][]float32, k int) ([]domain.Match, error) {
	if len(ids) != len(vectors) {
		return nil, fmt.Errorf("bruteforce: ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	matches := make([]domain.Match, 0, len(ids))
	for i := range vectors {
		s, err := Score(metric, query, vectors[i])
		if err != nil {
			return nil, err
		}
		if math.IsNaN(s) {
			continue
		}
		matches = append(matches, domain.Match{ID: ids[i], Score: s, Vector: vectors[i]})
	}
	sort.SliceStable(matches, func(a, b int) bool { return matches[a].Score > matches[b].Score })
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func magnitude(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
