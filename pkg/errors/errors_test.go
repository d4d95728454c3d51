package errors

import (
	"strings"
	"testing"
)

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("GraphRegressor", "Predict")
	if err == nil {
		t.Fatal("NewNotFittedError() returned nil")
	}
	if !strings.Contains(err.Error(), "GraphRegressor") {
		t.Errorf("Error() = %q, want model name included", err.Error())
	}

	var notFitted *NotFittedError
	if !As(err, &notFitted) {
		t.Error("As() failed to unwrap NotFittedError")
	}
	if notFitted.Method != "Predict" {
		t.Errorf("Method = %q, want Predict", notFitted.Method)
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("CP", "required column is missing from the input frame")
	if !strings.Contains(err.Error(), "CP") {
		t.Errorf("Error() = %q, want field name included", err.Error())
	}

	var configErr *ConfigError
	if !As(err, &configErr) {
		t.Error("As() failed to unwrap ConfigError")
	}
}

func TestDimensionError(t *testing.T) {
	err := NewDimensionError("Fit", 10, 5, 1)
	msg := err.Error()
	if !strings.Contains(msg, "10") || !strings.Contains(msg, "5") {
		t.Errorf("Error() = %q, want expected and got values included", msg)
	}
	if !strings.Contains(msg, "features") {
		t.Errorf("Error() = %q, want axis name for axis 1", msg)
	}
}

func TestWrapPreservesType(t *testing.T) {
	inner := NewValueError("KFold.Split", "n_splits must be >= 2")
	wrapped := Wrap(inner, "run aborted")

	var valueErr *ValueError
	if !As(wrapped, &valueErr) {
		t.Error("As() failed through wrapped error chain")
	}
}
