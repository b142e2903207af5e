package model

import (
	"fmt"
	"math"
	"strings"
)

const (
	KernelRBF    = "rbf"
	KernelLinear = "linear"
	KernelPoly   = "poly"
)

// SVR is a fitted epsilon support vector regressor:
// f(x) = sum_i DualCoef[i] * K(SupportVectors[i], x) + Intercept.
type SVR struct {
	Kernel         string      `json:"kernel"`
	Gamma          float64     `json:"gamma"`
	Coef0          float64     `json:"coef0,omitempty"`
	Degree         int         `json:"degree,omitempty"`
	SupportVectors [][]float64 `json:"support_vectors"`
	DualCoef       []float64   `json:"dual_coef"`
	Intercept      float64     `json:"intercept"`
}

func (m *SVR) Kind() string          { return KindSVR }
func (m *SVR) RequiresScaling() bool { return true }

func (m *SVR) NumFeatures() int {
	if len(m.SupportVectors) == 0 {
		return 0
	}
	return len(m.SupportVectors[0])
}

func (m *SVR) validate() error {
	m.Kernel = strings.ToLower(strings.TrimSpace(m.Kernel))
	if m.Kernel == "" {
		m.Kernel = KernelRBF
	}
	switch m.Kernel {
	case KernelRBF, KernelLinear:
	case KernelPoly:
		if m.Degree <= 0 {
			m.Degree = 3
		}
	default:
		return fmt.Errorf("%w: unsupported svr kernel %q", ErrInvalidBundle, m.Kernel)
	}
	if len(m.SupportVectors) == 0 {
		return fmt.Errorf("%w: svr has no support vectors", ErrInvalidBundle)
	}
	if len(m.SupportVectors) != len(m.DualCoef) {
		return fmt.Errorf("%w: svr has %d support vectors and %d dual coefficients", ErrInvalidBundle, len(m.SupportVectors), len(m.DualCoef))
	}
	n := len(m.SupportVectors[0])
	for i, sv := range m.SupportVectors {
		if len(sv) != n {
			return fmt.Errorf("%w: support vector %d has %d features, want %d", ErrInvalidBundle, i, len(sv), n)
		}
	}
	if m.Kernel != KernelLinear && m.Gamma <= 0 {
		return fmt.Errorf("%w: svr gamma must be positive", ErrInvalidBundle)
	}
	return nil
}

func (m *SVR) kernel(a, b []float64) float64 {
	switch m.Kernel {
	case KernelLinear:
		return dot(a, b)
	case KernelPoly:
		return math.Pow(m.Gamma*dot(a, b)+m.Coef0, float64(m.Degree))
	default:
		d := 0.0
		for i := range a {
			diff := a[i] - b[i]
			d += diff * diff
		}
		return math.Exp(-m.Gamma * d)
	}
}

func (m *SVR) Predict(x []float64) (float64, error) {
	if err := checkWidth(KindSVR, m.NumFeatures(), x); err != nil {
		return 0, err
	}
	sum := m.Intercept
	for i, sv := range m.SupportVectors {
		sum += m.DualCoef[i] * m.kernel(sv, x)
	}
	return finite(KindSVR, sum)
}
