package model

import "gonum.org/v1/gonum/mat"

// Fitter is a model that can be trained on a feature matrix and target.
type Fitter interface {
	// Fit trains the model on X (n_samples × n_features) and y (n_samples × 1).
	Fit(X, y mat.Matrix) error
}

// Predictor is a model that can produce predictions for new inputs.
type Predictor interface {
	// Predict returns predictions for X as an n_samples × 1 matrix.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Transformer is a stateful feature transformation fitted on training data.
type Transformer interface {
	// Fit learns the transformation parameters from X.
	Fit(X mat.Matrix) error
	// Transform applies the fitted transformation to X.
	Transform(X mat.Matrix) (mat.Matrix, error)
}

// Regressor combines fitting and prediction for regression models.
type Regressor interface {
	Fitter
	Predictor
}
