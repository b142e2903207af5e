package model

import "fmt"

// Linear is y = coef·x + intercept.
type Linear struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
	// Scaled marks models fitted on scaled inputs.
	Scaled bool `json:"scaled,omitempty"`
}

func (m *Linear) Kind() string          { return KindLinear }
func (m *Linear) NumFeatures() int      { return len(m.Coef) }
func (m *Linear) RequiresScaling() bool { return m.Scaled }

func (m *Linear) validate() error {
	if len(m.Coef) == 0 {
		return fmt.Errorf("%w: linear estimator has no coefficients", ErrInvalidBundle)
	}
	return nil
}

func (m *Linear) Predict(x []float64) (float64, error) {
	if err := checkWidth(KindLinear, len(m.Coef), x); err != nil {
		return 0, err
	}
	return finite(KindLinear, dot(m.Coef, x)+m.Intercept)
}
