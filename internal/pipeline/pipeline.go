// Package pipeline runs the attribution and verification flows end to end:
// aggregate, select, vectorize, partition, train, evaluate.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"authorid/internal/classifier"
	"authorid/internal/config"
	"authorid/internal/corpus"
	"authorid/internal/dataset"
	"authorid/internal/evaluate"
	"authorid/internal/sample"
	"authorid/internal/vectorizer"
)

// AttributionResult summarizes one attribution run.
type AttributionResult struct {
	RankedAuthors []string
	SampleCount   int
	TrainSize     int
	TestSize      int
	Dims          int
	BlockDims     map[string]int
	Accuracy      float64
	Report        *evaluate.ClassReport
	DocPrediction string
	Duration      time.Duration
}

// VerificationResult summarizes one verification run.
type VerificationResult struct {
	AuthorCount int
	PairCount   int
	TrainSize   int
	TestSize    int
	Dims        int
	BlockDims   map[string]int
	Accuracy    float64
	Report      *evaluate.ClassReport
	Duration    time.Duration
}

// Attribution trains a closed-set author classifier over recs and evaluates
// it on a held-out fraction. When doc is non-empty the trained model also
// attributes that one document.
func Attribution(ctx context.Context, cfg config.Config, recs []corpus.Record, doc string, logger *slog.Logger) (*AttributionResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	logger.Info("aggregating corpus", "records", len(recs))
	corpora, err := corpus.Aggregate(recs, func(done int) {
		logger.Info("aggregation progress", "records", done)
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	samples, ranked, err := corpus.SelectTopAuthors(corpora, recs, cfg.Attribution.TopKAuthors, cfg.Attribution.RecordsPerAuthorCap)
	if err != nil {
		return nil, fmt.Errorf("select authors: %w", err)
	}
	logger.Info("selected authors", "authors", len(ranked), "samples", len(samples))

	texts := make([]string, len(samples))
	labels := make([]string, len(samples))
	for i, s := range samples {
		texts[i] = s.Text
		labels[i] = s.Author
	}

	space, vecs, err := vectorize(cfg, texts, logger)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	train, test, err := dataset.Split(len(vecs), 1-cfg.Eval.TrainFraction, cfg.Eval.RandomSeed)
	if err != nil {
		return nil, fmt.Errorf("partition: %w", err)
	}
	logger.Info("partitioned dataset", "train", len(train), "test", len(test))

	model := classifier.New(classifier.Config{
		Lambda: cfg.Classifier.Lambda,
		Epochs: cfg.Classifier.Epochs,
		Seed:   cfg.Classifier.Seed,
	})
	if err := model.Fit(dataset.Take(vecs, train), dataset.Take(labels, train)); err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pred, err := model.Predict(dataset.Take(vecs, test))
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	yTest := dataset.Take(labels, test)
	report, err := evaluate.Report(yTest, pred)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	res := &AttributionResult{
		RankedAuthors: ranked,
		SampleCount:   len(samples),
		TrainSize:     len(train),
		TestSize:      len(test),
		Dims:          space.Dim(),
		BlockDims:     space.BlockDims(),
		Accuracy:      evaluate.Accuracy(yTest, pred),
		Report:        report,
	}

	if doc != "" {
		docVecs, err := space.Transform([]string{doc})
		if err != nil {
			return nil, fmt.Errorf("transform document: %w", err)
		}
		docPred, err := model.Predict(docVecs)
		if err != nil {
			return nil, fmt.Errorf("attribute document: %w", err)
		}
		res.DocPrediction = docPred[0]
		logger.Info("attributed document", "author", res.DocPrediction)
	}

	res.Duration = time.Since(start)
	logger.Info("attribution finished", "accuracy", res.Accuracy, "duration", res.Duration)
	return res, nil
}

// Verification trains a same-author/different-author classifier over
// fragment pairs and evaluates it on a held-out fraction.
func Verification(ctx context.Context, cfg config.Config, recs []corpus.Record, logger *slog.Logger) (*VerificationResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	logger.Info("aggregating corpus", "records", len(recs))
	corpora, err := corpus.Aggregate(recs, func(done int) {
		logger.Info("aggregation progress", "records", done)
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := cfg.Verification
	qualified := corpus.FilterByLength(corpora, v.MinTotalChars)
	logger.Info("filtered authors", "qualifying", qualified.Len(), "total", corpora.Len())

	frags := make([]sample.Fragments, 0, qualified.Len())
	for _, id := range qualified.Authors {
		known, unknown, err := sample.SplitKnownUnknown(qualified.ByID[id].Text, v.KnownLength, v.SplitGap, v.UnknownLength)
		if err != nil {
			return nil, fmt.Errorf("split author %s: %w", id, err)
		}
		frags = append(frags, sample.Fragments{Author: id, Known: known, Unknown: unknown})
	}

	pairs, err := sample.BuildPairs(frags)
	if err != nil {
		return nil, fmt.Errorf("build pairs: %w", err)
	}
	labels := sample.Labels(pairs)
	logger.Info("built pairs", "pairs", len(pairs))

	// Knowns and unknowns share one fitted space so their difference is
	// meaningful coordinate by coordinate.
	texts := make([]string, 0, 2*len(pairs))
	for _, p := range pairs {
		texts = append(texts, p.Known)
	}
	for _, p := range pairs {
		texts = append(texts, p.Unknown)
	}
	space, all, err := vectorize(cfg, texts, logger)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	features := make([]vectorizer.Vector, len(pairs))
	for i := range pairs {
		features[i], err = vectorizer.AbsDiff(all[i], all[len(pairs)+i])
		if err != nil {
			return nil, fmt.Errorf("pair feature %d: %w", i, err)
		}
	}

	train, test, err := dataset.Split(len(features), 1-cfg.Eval.TrainFraction, cfg.Eval.RandomSeed)
	if err != nil {
		return nil, fmt.Errorf("partition: %w", err)
	}
	logger.Info("partitioned dataset", "train", len(train), "test", len(test))

	model := classifier.New(classifier.Config{
		Lambda: cfg.Classifier.Lambda,
		Epochs: cfg.Classifier.Epochs,
		Seed:   cfg.Classifier.Seed,
	})
	if err := model.Fit(dataset.Take(features, train), dataset.Take(labels, train)); err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	pred, err := model.Predict(dataset.Take(features, test))
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	yTest := dataset.Take(labels, test)
	report, err := evaluate.Report(yTest, pred)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	res := &VerificationResult{
		AuthorCount: qualified.Len(),
		PairCount:   len(pairs),
		TrainSize:   len(train),
		TestSize:    len(test),
		Dims:        space.Dim(),
		BlockDims:   space.BlockDims(),
		Accuracy:    evaluate.Accuracy(yTest, pred),
		Report:      report,
		Duration:    time.Since(start),
	}
	logger.Info("verification finished", "accuracy", res.Accuracy, "duration", res.Duration)
	return res, nil
}

// vectorize fits the shared space once over all texts and transforms them.
func vectorize(cfg config.Config, texts []string, logger *slog.Logger) (*vectorizer.VectorSpace, []vectorizer.Vector, error) {
	vcfg := vectorizer.Config{
		MinDF:   cfg.Vectorizer.MinDF,
		Workers: cfg.Workers,
	}
	if w := cfg.Vectorizer.Word; w.Min > 0 {
		vcfg.Word = vectorizer.NgramRange{Lo: w.Min, Hi: w.Max, Lowercase: w.Lowercase}
	}
	if c := cfg.Vectorizer.Char; c.Min > 0 {
		vcfg.Char = vectorizer.NgramRange{Lo: c.Min, Hi: c.Max, Lowercase: c.Lowercase}
	}

	space, err := vectorizer.Fit(vcfg, texts)
	if err != nil {
		return nil, nil, fmt.Errorf("fit vector space: %w", err)
	}
	logger.Info("fitted vector space", "dims", space.Dim(), "documents", len(texts))

	vecs, err := space.Transform(texts)
	if err != nil {
		return nil, nil, fmt.Errorf("transform: %w", err)
	}
	return space, vecs, nil
}
