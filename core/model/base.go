// Package model provides the shared estimator plumbing used by every
// learning component in pkgraph.
package model

// EstimatorState tracks whether a model has been fitted.
type EstimatorState int

const (
	// NotFitted is the state of a model before Fit has been called.
	NotFitted EstimatorState = iota
	// Fitted is the state of a model after a successful Fit.
	Fitted
)

// BaseEstimator is embedded by every fittable model to track its state.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether the model has been fitted.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the model as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the model to the not-fitted state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
