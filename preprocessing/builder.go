package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pkgraph/dataset"
	"github.com/YuminosukeSato/pkgraph/pkg/errors"
	"github.com/YuminosukeSato/pkgraph/pkg/log"
)

// BuilderConfig names the frame columns consumed by the feature builder.
type BuilderConfig struct {
	// SubjectColumn identifies the subject each row belongs to.
	SubjectColumn string
	// Continuous columns are standardized to zero mean and unit variance.
	Continuous []string
	// Categorical columns are one-hot expanded.
	Categorical []string
	// Target is the regression target column.
	Target string
}

// DefaultBuilderConfig returns the column layout of the pharmacokinetic
// dataset this pipeline was built for.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		SubjectColumn: "ID",
		Continuous:    []string{"AGE", "WT", "HT", "AMT", "RATE", "TIME"},
		Categorical:   []string{"M1F2", "A1V2"},
		Target:        "CP",
	}
}

// Features is the model-ready view of a dataset: the assembled feature
// matrix, the target column vector and the row-to-subject mapping. It is
// built once and shared read-only across all cross-validation folds.
type Features struct {
	// X is n_samples × (n_continuous + n_onehot): scaled continuous columns
	// followed by the one-hot block. The column layout is fixed by the
	// scaler and encoder fitted on the full dataset.
	X *mat.Dense
	// Y is the target as a column vector of length n_samples.
	Y *mat.VecDense
	// Subjects maps each row to its subject identifier.
	Subjects []string
	// NumContinuous is the width of the continuous block inside X.
	NumContinuous int
}

// NumRows returns the number of observation rows.
func (f *Features) NumRows() int {
	r, _ := f.X.Dims()
	return r
}

// FeatureBuilder assembles Features from a raw frame. The fitted scaler and
// encoder are retained so the exact same feature space serves both the
// neighbor-graph distances and the model inputs.
type FeatureBuilder struct {
	Config BuilderConfig

	Scaler  *StandardScaler
	Encoder *OneHotEncoder
}

// NewFeatureBuilder creates a FeatureBuilder for the given column layout.
func NewFeatureBuilder(config BuilderConfig) *FeatureBuilder {
	return &FeatureBuilder{
		Config:  config,
		Scaler:  NewStandardScaler(),
		Encoder: NewOneHotEncoder(),
	}
}

// Build fits the scaler and encoder on the full frame and assembles the
// feature matrix and target vector. A missing configured column is a fatal
// configuration error. Build is deterministic: the same frame and config
// produce bit-identical output.
func (b *FeatureBuilder) Build(frame *dataset.Frame) (*Features, error) {
	logger := log.GetLoggerWithName("preprocessing")

	if frame.NumRows() == 0 {
		return nil, errors.NewValueError("FeatureBuilder.Build", "empty frame")
	}

	subjects, err := frame.Column(b.Config.SubjectColumn)
	if err != nil {
		return nil, err
	}

	n := frame.NumRows()

	// Continuous block, standardized with statistics fitted on the full
	// dataset (reused across folds, never refit).
	raw := mat.NewDense(n, len(b.Config.Continuous), nil)
	for j, name := range b.Config.Continuous {
		col, err := frame.Floats(name)
		if err != nil {
			return nil, err
		}
		for i, v := range col {
			raw.Set(i, j, v)
		}
	}
	scaled, err := b.Scaler.FitTransform(raw)
	if err != nil {
		return nil, err
	}

	// One-hot block.
	catColumns := make([][]string, len(b.Config.Categorical))
	for j, name := range b.Config.Categorical {
		col, err := frame.Column(name)
		if err != nil {
			return nil, err
		}
		catColumns[j] = col
	}
	encoded, err := b.Encoder.FitTransform(catColumns)
	if err != nil {
		return nil, err
	}

	numCont := len(b.Config.Continuous)
	numCat := b.Encoder.NumOutputColumns()
	X := mat.NewDense(n, numCont+numCat, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < numCont; j++ {
			X.Set(i, j, scaled.At(i, j))
		}
		for j := 0; j < numCat; j++ {
			X.Set(i, numCont+j, encoded.At(i, j))
		}
	}

	target, err := frame.Floats(b.Config.Target)
	if err != nil {
		return nil, err
	}
	Y := mat.NewVecDense(n, target)

	logger.Info("features assembled",
		log.SamplesKey, n,
		log.FeaturesKey, numCont+numCat,
		"continuous", numCont,
		"one_hot", numCat,
	)

	return &Features{
		X:             X,
		Y:             Y,
		Subjects:      subjects,
		NumContinuous: numCont,
	}, nil
}
