package log

// Standard attribute keys used across pkgraph logging. Keys follow a
// hierarchical naming convention ("data.samples", "cv.fold") to keep log
// filtering consistent between components.
const (
	// ComponentKey identifies the package or component emitting the log.
	ComponentKey = "component"

	// OperationKey names the operation in progress ("fit", "predict",
	// "build_graph", "evaluate").
	OperationKey = "ml.operation"

	// SamplesKey is the number of observation rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"

	// SubjectsKey is the number of distinct subjects in the dataset.
	SubjectsKey = "data.subjects"

	// EdgesKey is the number of directed edges in the neighbor graph.
	EdgesKey = "graph.edges"

	// FoldKey is the current cross-validation fold (1-based).
	FoldKey = "cv.fold"

	// EpochKey is the current training epoch.
	EpochKey = "train.epoch"

	// LossKey is the current training loss value.
	LossKey = "train.loss"

	// ValLossKey is the current validation loss value.
	ValLossKey = "train.val_loss"
)
