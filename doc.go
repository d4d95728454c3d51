// Package pkgraph predicts a clinical concentration outcome (CP) from
// pharmacokinetic subject data with a two-stage model: a graph neural
// encoder over a subject-scoped k-nearest-neighbor graph, feeding a
// gradient-boosted regression-tree ensemble, evaluated by k-fold
// cross-validation.
//
// # Pipeline
//
// The pipeline flows through the packages in dependency order:
//
//   - dataset loads the raw tabular frame.
//   - preprocessing standardizes continuous features, one-hot encodes
//     categorical features and assembles the feature matrix and target.
//   - graph builds a kNN connectivity graph independently within each
//     subject's rows and unions the edge sets over global row indices.
//   - gnn trains a message-passing encoder end-to-end with a scalar
//     regression head; its evaluation-mode output is the node embedding.
//   - boosting fits a gradient-boosted tree ensemble on the embeddings.
//   - crossval drives the per-fold train/score loop and averages the
//     MSE, RMSE, MAE and R² metrics.
//   - report prints the summary and renders the diagnostic charts.
//
// # Quick start
//
//	frame, err := dataset.LoadCSV("study.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	builder := preprocessing.NewFeatureBuilder(preprocessing.DefaultBuilderConfig())
//	features, err := builder.Build(frame)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	g, err := graph.BuildSubjectGraph(features.X, features.Subjects, graph.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctx, err := crossval.NewRunContext(features.X, features.Y, g)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := crossval.NewEvaluator(crossval.DefaultConfig()).Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.AsMap())
package pkgraph
