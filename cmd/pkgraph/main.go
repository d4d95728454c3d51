// Command pkgraph trains and evaluates the two-stage concentration model:
// per-subject kNN graph construction, a graph neural encoder, and a
// gradient-boosted tree ensemble scored by k-fold cross-validation.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/pkgraph/boosting"
	"github.com/YuminosukeSato/pkgraph/crossval"
	"github.com/YuminosukeSato/pkgraph/dataset"
	"github.com/YuminosukeSato/pkgraph/gnn"
	"github.com/YuminosukeSato/pkgraph/graph"
	"github.com/YuminosukeSato/pkgraph/pkg/log"
	"github.com/YuminosukeSato/pkgraph/preprocessing"
	"github.com/YuminosukeSato/pkgraph/report"
)

func main() {
	var (
		csvPath  = flag.String("data", "data.csv", "path to the input CSV dataset")
		outDir   = flag.String("out", "output", "directory for diagnostic charts")
		logLevel = flag.String("log-level", "info", "log level: debug, info, warn, error")
		seed     = flag.Int("seed", 42, "random seed for fold shuffling and weight init")

		kNeighbors = flag.Int("k-neighbors", 5, "nearest neighbors per node within a subject")
		catWeight  = flag.Float64("categorical-weight", 1.0, "distance weight of the one-hot block")

		nSplits = flag.Int("n-splits", 5, "number of cross-validation folds")

		epochs       = flag.Int("epochs", 400, "encoder training epochs")
		learningRate = flag.Float64("learning-rate", 0.001, "encoder AdamW learning rate")
		weightDecay  = flag.Float64("weight-decay", 0.01, "encoder AdamW weight decay")
		hidden       = flag.Int("hidden-channels", 512, "encoder hidden width")
		numLayers    = flag.Int("num-layers", 5, "encoder aggregation layers")
		dropout      = flag.Float64("dropout", 0.4, "encoder dropout rate")

		boostIters = flag.Int("boost-iterations", 500, "boosting rounds")
		boostLR    = flag.Float64("boost-learning-rate", 0.1, "boosting learning rate")
		boostDepth = flag.Int("boost-depth", 6, "boosting max tree depth")
	)
	flag.Parse()

	log.SetLevel(*logLevel)
	logger := log.GetLoggerWithName("pkgraph")

	frame, err := dataset.LoadCSV(*csvPath)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	builder := preprocessing.NewFeatureBuilder(preprocessing.DefaultBuilderConfig())
	features, err := builder.Build(frame)
	if err != nil {
		logger.Error("feature building failed", "error", err)
		os.Exit(1)
	}

	g, err := graph.BuildSubjectGraph(features.X, features.Subjects, graph.Options{
		KNeighbors:        *kNeighbors,
		NumContinuous:     features.NumContinuous,
		CategoricalWeight: *catWeight,
	})
	if err != nil {
		logger.Error("graph construction failed", "error", err)
		os.Exit(1)
	}

	ctx, err := crossval.NewRunContext(features.X, features.Y, g)
	if err != nil {
		logger.Error("invalid run context", "error", err)
		os.Exit(1)
	}

	evaluator := crossval.NewEvaluator(crossval.Config{
		NSplits: *nSplits,
		Seed:    *seed,
		Encoder: gnn.Config{
			HiddenChannels: *hidden,
			NumLayers:      *numLayers,
			Dropout:        *dropout,
			Epochs:         *epochs,
			LearningRate:   *learningRate,
			WeightDecay:    *weightDecay,
			Seed:           uint64(*seed),
		},
		Boosting: boosting.Params{
			Iterations:   *boostIters,
			LearningRate: *boostLR,
			MaxDepth:     *boostDepth,
		},
	})

	result, err := evaluator.Run(ctx)
	if err != nil {
		logger.Error("evaluation failed", "error", err)
		os.Exit(1)
	}

	if err := report.WriteSummary(os.Stdout, result); err != nil {
		logger.Error("failed to write summary", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	lossPath := filepath.Join(*outDir, "loss_curves.png")
	if err := report.PlotLossCurves(result, lossPath); err != nil {
		logger.Error("failed to plot loss curves", "error", err)
		os.Exit(1)
	}
	barPath := filepath.Join(*outDir, "metrics.png")
	if err := report.PlotMetricsBar(result, barPath); err != nil {
		logger.Error("failed to plot metrics", "error", err)
		os.Exit(1)
	}

	logger.Info("diagnostic charts written", "loss_curves", lossPath, "metrics", barPath)
}
