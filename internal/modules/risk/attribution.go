package risk

import (
	"math"
	"sort"

	"github.com/aristath/stresswatch/internal/domain"
)

// maxAttributions caps the explanation at the strongest signals.
const maxAttributions = 3

// Explainer computes per-feature contributions for a trained model using
// decision-path attribution: at every split on the prediction's path, the
// change in the subtree's expected output is credited to the split feature.
// Contributions are in margin (log-odds) space and sum to the deviation of
// the prediction's margin from Baseline().
type Explainer struct {
	model *Model
}

// NewExplainer wraps a trained model. A nil model yields a nil explainer,
// which degrades Explain to an empty result rather than an error.
func NewExplainer(m *Model) *Explainer {
	if m == nil {
		return nil
	}
	return &Explainer{model: m}
}

// Baseline is the expected ensemble margin over the training subsample.
func (e *Explainer) Baseline() float64 {
	if e == nil || e.model == nil {
		return 0
	}
	base := e.model.baseScore
	for _, t := range e.model.trees {
		base += e.model.lr * t.rootMean()
	}
	return base
}

// Contributions returns the full signed contribution vector in canonical
// feature order.
func (e *Explainer) Contributions(v domain.FeatureVector) []float64 {
	contrib := make([]float64, domain.NumFeatures)
	if e == nil || e.model == nil {
		return contrib
	}
	x := v.Values()
	for _, t := range e.model.trees {
		t.pathContributions(x, contrib)
	}
	for i := range contrib {
		contrib[i] *= e.model.lr
	}
	return contrib
}

// Explain returns the strongest contributions ranked by absolute impact,
// at most maxAttributions of them. Ties keep canonical feature order. A nil
// explainer returns an empty set - degraded, never an error.
func (e *Explainer) Explain(v domain.FeatureVector) []domain.Attribution {
	if e == nil || e.model == nil {
		return []domain.Attribution{}
	}

	contrib := e.Contributions(v)

	order := make([]int, len(contrib))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(contrib[order[a]]) > math.Abs(contrib[order[b]])
	})

	n := maxAttributions
	if len(order) < n {
		n = len(order)
	}

	names := domain.FeatureNames()
	out := make([]domain.Attribution, 0, n)
	for _, k := range order[:n] {
		out = append(out, domain.Attribution{Feature: names[k], Impact: contrib[k]})
	}
	return out
}
