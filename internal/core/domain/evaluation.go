package domain

import "sort"

// Evaluation metric names.
const (
	// MetricBLEU is sentence-level BLEU-4 with smoothing.
	MetricBLEU = "bleu"

	// MetricROUGE expands to rouge1, rouge2 and rougeL.
	MetricROUGE = "rouge"

	// MetricROUGE1 is unigram ROUGE F-measure.
	MetricROUGE1 = "rouge1"

	// MetricROUGE2 is bigram ROUGE F-measure.
	MetricROUGE2 = "rouge2"

	// MetricROUGEL is longest-common-subsequence ROUGE F-measure.
	MetricROUGEL = "rougeL"
)

// EvaluationResult maps a metric name to its score in [0,1].
type EvaluationResult map[string]float64

// Names returns the metric names in sorted order.
func (r EvaluationResult) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsKnownMetric reports whether name is an accepted evaluation metric.
func IsKnownMetric(name string) bool {
	switch name {
	case MetricBLEU, MetricROUGE, MetricROUGE1, MetricROUGE2, MetricROUGEL:
		return true
	default:
		return false
	}
}

// DefaultMetrics returns the metrics computed when none are requested.
func DefaultMetrics() []string {
	return []string{MetricBLEU, MetricROUGE}
}
