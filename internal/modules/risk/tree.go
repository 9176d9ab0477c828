package risk

import "sort"

// Regression trees used as the boosting base learner. Trees are grown
// greedily on the gradient residuals with least-squares splits and
// Newton-step leaf values (sum of gradients over sum of hessians, with L2
// regularization on the leaf weight).

type treeNode struct {
	feature   int
	threshold float64
	left      int
	right     int
	leaf      bool
	value     float64 // leaf output
	mean      float64 // sample-weighted expected output of the subtree
}

type regressionTree struct {
	nodes []treeNode
	root  int
}

// predict walks the tree for a single input row.
func (t *regressionTree) predict(x []float64) float64 {
	i := t.root
	for {
		n := t.nodes[i]
		if n.leaf {
			return n.value
		}
		if x[n.feature] < n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// rootMean is the expected output of the whole tree over its training
// sample. Used as the per-tree attribution baseline.
func (t *regressionTree) rootMean() float64 {
	return t.nodes[t.root].mean
}

// pathContributions walks the decision path for x and attributes the change
// in expected output at every split to the split feature. Contributions are
// accumulated into contrib, which must have one slot per feature. The sum of
// the added contributions equals predict(x) - rootMean().
func (t *regressionTree) pathContributions(x []float64, contrib []float64) {
	i := t.root
	for {
		n := t.nodes[i]
		if n.leaf {
			return
		}
		next := n.right
		if x[n.feature] < n.threshold {
			next = n.left
		}
		contrib[n.feature] += t.nodes[next].mean - n.mean
		i = next
	}
}

type treeBuilder struct {
	xs       [][]float64
	grad     []float64
	hess     []float64
	maxDepth int
	minLeaf  int
	lambda   float64
	nodes    []treeNode
}

// fitRegressionTree grows a depth-bounded regression tree on the given
// gradient/hessian statistics.
func fitRegressionTree(xs [][]float64, grad, hess []float64, maxDepth, minLeaf int, lambda float64) *regressionTree {
	b := &treeBuilder{
		xs:       xs,
		grad:     grad,
		hess:     hess,
		maxDepth: maxDepth,
		minLeaf:  minLeaf,
		lambda:   lambda,
	}

	indices := make([]int, len(xs))
	for i := range indices {
		indices[i] = i
	}

	root, _ := b.build(indices, 0)
	return &regressionTree{nodes: b.nodes, root: root}
}

// build grows the subtree for the given sample indices and returns the node
// index together with the subtree's expected output.
func (b *treeBuilder) build(indices []int, depth int) (int, float64) {
	if depth >= b.maxDepth || len(indices) < 2*b.minLeaf {
		return b.addLeaf(indices)
	}

	feature, threshold, ok := b.bestSplit(indices)
	if !ok {
		return b.addLeaf(indices)
	}

	var leftIdx, rightIdx []int
	for _, i := range indices {
		if b.xs[i][feature] < threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		return b.addLeaf(indices)
	}

	left, leftMean := b.build(leftIdx, depth+1)
	right, rightMean := b.build(rightIdx, depth+1)

	n := len(indices)
	mean := (float64(len(leftIdx))*leftMean + float64(len(rightIdx))*rightMean) / float64(n)

	b.nodes = append(b.nodes, treeNode{
		feature:   feature,
		threshold: threshold,
		left:      left,
		right:     right,
		mean:      mean,
	})
	return len(b.nodes) - 1, mean
}

func (b *treeBuilder) addLeaf(indices []int) (int, float64) {
	value := b.leafValue(indices)
	b.nodes = append(b.nodes, treeNode{leaf: true, value: value, mean: value})
	return len(b.nodes) - 1, value
}

// leafValue is the Newton step for a log-loss leaf: sum(grad)/(sum(hess)+λ).
func (b *treeBuilder) leafValue(indices []int) float64 {
	var g, h float64
	for _, i := range indices {
		g += b.grad[i]
		h += b.hess[i]
	}
	return g / (h + b.lambda)
}

// bestSplit scans every feature for the least-squares split with the
// greatest gain. Returns ok=false when no split separates the sample.
func (b *treeBuilder) bestSplit(indices []int) (int, float64, bool) {
	if len(indices) < 2 {
		return 0, 0, false
	}

	numFeatures := len(b.xs[indices[0]])

	var totalG float64
	for _, i := range indices {
		totalG += b.grad[i]
	}
	n := float64(len(indices))
	baseScore := totalG * totalG / n

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	order := make([]int, len(indices))
	for f := 0; f < numFeatures; f++ {
		copy(order, indices)
		sortByFeature(order, b.xs, f)

		var leftG float64
		for k := 0; k < len(order)-1; k++ {
			leftG += b.grad[order[k]]

			// Only split between distinct values
			cur := b.xs[order[k]][f]
			next := b.xs[order[k+1]][f]
			if cur == next {
				continue
			}

			nLeft := float64(k + 1)
			nRight := n - nLeft
			if int(nLeft) < b.minLeaf || int(nRight) < b.minLeaf {
				continue
			}

			rightG := totalG - leftG
			gain := leftG*leftG/nLeft + rightG*rightG/nRight - baseScore
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (cur + next) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

// sortByFeature sorts sample indices by the given feature value. The sort is
// stable so equal values retain input order, keeping training fully
// deterministic.
func sortByFeature(indices []int, xs [][]float64, f int) {
	sort.SliceStable(indices, func(a, b int) bool {
		return xs[indices[a]][f] < xs[indices[b]][f]
	})
}
