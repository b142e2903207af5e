package model

import (
	"fmt"
	"strings"
)

const (
	// AggregateMean averages tree outputs (random forest, extra trees).
	AggregateMean = "mean"
	// AggregateSum adds learning-rate scaled tree outputs to Init (gradient boosting).
	AggregateSum = "sum"
)

const leaf = -1

// Tree is a fitted regression tree in flat array form. Node 0 is the root;
// a node is a leaf when ChildrenLeft is -1. Samples go left when
// x[Feature] <= Threshold.
type Tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

func (t *Tree) validate(nFeatures int) error {
	n := len(t.Value)
	if n == 0 {
		return fmt.Errorf("%w: empty tree", ErrInvalidBundle)
	}
	if len(t.ChildrenLeft) != n || len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n {
		return fmt.Errorf("%w: tree arrays have mismatched lengths", ErrInvalidBundle)
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == leaf {
			if r != leaf {
				return fmt.Errorf("%w: node %d has a right child but no left child", ErrInvalidBundle, i)
			}
			continue
		}
		// Children always follow their parent, which rules out cycles.
		if l <= i || r <= i || l >= n || r >= n {
			return fmt.Errorf("%w: node %d has invalid children %d/%d", ErrInvalidBundle, i, l, r)
		}
		if f := t.Feature[i]; f < 0 || f >= nFeatures {
			return fmt.Errorf("%w: node %d splits on feature %d of %d", ErrInvalidBundle, i, f, nFeatures)
		}
	}
	return nil
}

func (t *Tree) predict(x []float64) float64 {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// TreeEnsemble covers bagged forests and gradient boosting.
type TreeEnsemble struct {
	NFeatures    int     `json:"n_features"`
	Aggregation  string  `json:"aggregation"`
	LearningRate float64 `json:"learning_rate,omitempty"`
	Init         float64 `json:"init,omitempty"`
	Trees        []Tree  `json:"trees"`
}

func (m *TreeEnsemble) Kind() string          { return KindTreeEnsemble }
func (m *TreeEnsemble) NumFeatures() int      { return m.NFeatures }
func (m *TreeEnsemble) RequiresScaling() bool { return false }

func (m *TreeEnsemble) validate() error {
	if m.NFeatures <= 0 {
		return fmt.Errorf("%w: tree ensemble n_features must be positive", ErrInvalidBundle)
	}
	if len(m.Trees) == 0 {
		return fmt.Errorf("%w: tree ensemble has no trees", ErrInvalidBundle)
	}
	m.Aggregation = strings.ToLower(strings.TrimSpace(m.Aggregation))
	switch m.Aggregation {
	case "":
		m.Aggregation = AggregateMean
	case AggregateMean:
	case AggregateSum:
		if m.LearningRate <= 0 {
			return fmt.Errorf("%w: boosted ensemble needs a positive learning_rate", ErrInvalidBundle)
		}
	default:
		return fmt.Errorf("%w: unknown aggregation %q", ErrInvalidBundle, m.Aggregation)
	}
	for i := range m.Trees {
		if err := m.Trees[i].validate(m.NFeatures); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (m *TreeEnsemble) Predict(x []float64) (float64, error) {
	if err := checkWidth(KindTreeEnsemble, m.NFeatures, x); err != nil {
		return 0, err
	}
	sum := 0.0
	for i := range m.Trees {
		sum += m.Trees[i].predict(x)
	}
	if m.Aggregation == AggregateSum {
		return finite(KindTreeEnsemble, m.Init+m.LearningRate*sum)
	}
	return finite(KindTreeEnsemble, sum/float64(len(m.Trees)))
}
