package services

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/kljensen/snowball/english"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure Evaluator implements the interface.
var _ driving.Evaluator = (*Evaluator)(nil)

// bleuMaxOrder is the highest n-gram order BLEU considers, each order
// weighted equally.
const bleuMaxOrder = 4

// bleuEpsilon replaces a zero n-gram match count before dividing.
const bleuEpsilon = 0.1

var (
	bleuTokenPattern  = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+(?:['’][\p{L}\p{M}\p{N}_]+)*|[^\p{L}\p{M}\p{N}_\s]`)
	rougeTokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

// Evaluator scores a generated answer against a reference answer.
// It keeps a default metric set, used when a call names no metrics.
type Evaluator struct {
	mu       sync.RWMutex
	defaults []string
}

// NewEvaluator creates an evaluator with the given default metrics.
// No metrics means domain.DefaultMetrics.
func NewEvaluator(metrics ...string) (*Evaluator, error) {
	if len(metrics) == 0 {
		metrics = domain.DefaultMetrics()
	}
	for _, m := range metrics {
		if !domain.IsKnownMetric(m) {
			return nil, unsupportedMetric(m)
		}
	}
	return &Evaluator{defaults: dedupe(metrics)}, nil
}

// Metrics returns the default metric set.
func (e *Evaluator) Metrics() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.defaults)
}

// AddMetric adds name to the default metric set.
func (e *Evaluator) AddMetric(name string) error {
	if !domain.IsKnownMetric(name) {
		return unsupportedMetric(name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !slices.Contains(e.defaults, name) {
		e.defaults = append(e.defaults, name)
	}
	return nil
}

// RemoveMetric removes name from the default metric set.
// Removing a metric that is not present is a no-op.
func (e *Evaluator) RemoveMetric(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaults = slices.DeleteFunc(e.defaults, func(m string) bool { return m == name })
}

// Evaluate computes the requested metrics for candidate against reference.
// "rouge" expands to rouge1, rouge2 and rougeL. An unknown metric name
// fails with domain.ErrInvalidConfiguration before anything is computed.
func (e *Evaluator) Evaluate(candidate, reference string, metrics []string) (domain.EvaluationResult, error) {
	if len(metrics) == 0 {
		metrics = e.Metrics()
	}
	for _, m := range metrics {
		if !domain.IsKnownMetric(m) {
			return nil, unsupportedMetric(m)
		}
	}

	result := make(domain.EvaluationResult, 4)
	var (
		candTokens, refTokens []string
		tokenised             bool
	)
	rougeTokens := func() ([]string, []string) {
		if !tokenised {
			candTokens, refTokens = rougeTokenize(candidate), rougeTokenize(reference)
			tokenised = true
		}
		return candTokens, refTokens
	}

	for _, m := range metrics {
		switch m {
		case domain.MetricBLEU:
			result[domain.MetricBLEU] = SentenceBLEU(bleuTokenize(candidate), bleuTokenize(reference))
		case domain.MetricROUGE:
			c, r := rougeTokens()
			result[domain.MetricROUGE1] = RougeN(c, r, 1)
			result[domain.MetricROUGE2] = RougeN(c, r, 2)
			result[domain.MetricROUGEL] = RougeL(c, r)
		case domain.MetricROUGE1:
			c, r := rougeTokens()
			result[domain.MetricROUGE1] = RougeN(c, r, 1)
		case domain.MetricROUGE2:
			c, r := rougeTokens()
			result[domain.MetricROUGE2] = RougeN(c, r, 2)
		case domain.MetricROUGEL:
			c, r := rougeTokens()
			result[domain.MetricROUGEL] = RougeL(c, r)
		}
	}
	return result, nil
}

// SentenceBLEU returns the BLEU score of candidate against a single
// reference, using uniform weights over 1- to 4-grams. Orders with no
// matches are smoothed by adding bleuEpsilon to the numerator, so short
// texts still score above zero once any unigram matches.
func SentenceBLEU(candidate, reference []string) float64 {
	var logSum float64
	for n := 1; n <= bleuMaxOrder; n++ {
		matches, total := clippedMatches(candidate, reference, n)
		if n == 1 && matches == 0 {
			return 0
		}
		denom := float64(max(1, total))
		num := float64(matches)
		if matches == 0 {
			num = bleuEpsilon
		}
		logSum += math.Log(num/denom) / bleuMaxOrder
	}
	return brevityPenalty(len(candidate), len(reference)) * math.Exp(logSum)
}

func brevityPenalty(c, r int) float64 {
	if c > r {
		return 1
	}
	if c == 0 {
		return 0
	}
	return math.Exp(1 - float64(r)/float64(c))
}

// clippedMatches counts candidate n-grams that also occur in the
// reference, each clipped to its reference count, and the total number
// of candidate n-grams.
func clippedMatches(candidate, reference []string, n int) (matches, total int) {
	cand := ngramCounts(candidate, n)
	ref := ngramCounts(reference, n)
	for gram, count := range cand {
		matches += min(count, ref[gram])
		total += count
	}
	return matches, total
}

// RougeN returns the ROUGE-N F-measure for pre-tokenised texts.
func RougeN(candidate, reference []string, n int) float64 {
	cand := ngramCounts(candidate, n)
	ref := ngramCounts(reference, n)

	var overlap, candTotal, refTotal int
	for gram, count := range cand {
		overlap += min(count, ref[gram])
		candTotal += count
	}
	for _, count := range ref {
		refTotal += count
	}
	return fMeasure(overlap, candTotal, refTotal)
}

// RougeL returns the ROUGE-L F-measure, based on the longest common
// subsequence of the two token lists.
func RougeL(candidate, reference []string) float64 {
	return fMeasure(lcsLength(candidate, reference), len(candidate), len(reference))
}

func fMeasure(overlap, candTotal, refTotal int) float64 {
	if overlap == 0 || candTotal == 0 || refTotal == 0 {
		return 0
	}
	p := float64(overlap) / float64(candTotal)
	r := float64(overlap) / float64(refTotal)
	return 2 * p * r / (p + r)
}

func lcsLength(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func ngramCounts(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], "\x00")]++
	}
	return counts
}

// bleuTokenize splits text into words and punctuation marks, keeping case.
func bleuTokenize(text string) []string {
	return bleuTokenPattern.FindAllString(text, -1)
}

// rougeTokenize lower-cases text, keeps runs of letters and digits, and
// stems tokens longer than three characters.
func rougeTokenize(text string) []string {
	tokens := rougeTokenPattern.FindAllString(strings.ToLower(text), -1)
	for i, tok := range tokens {
		if len([]rune(tok)) > 3 {
			tokens[i] = english.Stem(tok, true)
		}
	}
	return tokens
}

func unsupportedMetric(name string) error {
	return fmt.Errorf("%w: unsupported metric %q", domain.ErrInvalidConfiguration, name)
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !slices.Contains(out, it) {
			out = append(out, it)
		}
	}
	return out
}
