package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"authorid/internal/classifier"
	"authorid/internal/config"
	"authorid/internal/corpus"
	"authorid/internal/dataset"
	"authorid/internal/evaluate"
	"authorid/internal/sample"
	"authorid/internal/vectorizer"
)

// attributionFixture builds 3 authors with 4 reviews each; every author
// leans on one unmistakable marker word.
func attributionFixture() []corpus.Record {
	markers := map[string]string{
		"ann": "excellent",
		"bob": "terrible",
		"cid": "mediocre",
	}
	fillers := []string{
		"the pasta was %s and the wine too",
		"%s service and a %s view of the street",
		"an %s evening with truly %s food",
		"everything felt %s from start to finish",
	}

	var recs []corpus.Record
	for _, author := range []string{"ann", "bob", "cid"} {
		m := markers[author]
		for _, f := range fillers {
			n := strings.Count(f, "%s")
			args := make([]any, n)
			for i := range args {
				args[i] = m
			}
			recs = append(recs, corpus.Record{UserID: author, Text: fmt.Sprintf(f, args...)})
		}
	}
	return recs
}

func TestAttributionEndToEnd(t *testing.T) {
	recs := attributionFixture()
	corpora, err := corpus.Aggregate(recs, nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	samples, _, err := corpus.SelectTopAuthors(corpora, recs, 3, 10)
	if err != nil {
		t.Fatalf("select: %v", err)
	}

	texts := make([]string, len(samples))
	labels := make([]string, len(samples))
	for i, s := range samples {
		texts[i] = s.Text
		labels[i] = s.Author
	}

	space, err := vectorizer.Fit(vectorizer.Config{
		Word:  vectorizer.NgramRange{Lo: 1, Hi: 1, Lowercase: true},
		MinDF: 1,
	}, texts)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	vecs, err := space.Transform(texts)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	train, test, err := dataset.SplitN(len(vecs), 2, 1337)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(test) != 2 {
		t.Fatalf("expected 2 held-out texts, got %d", len(test))
	}

	model := classifier.New(classifier.Config{Lambda: 1e-4, Epochs: 200, Seed: 7})
	if err := model.Fit(dataset.Take(vecs, train), dataset.Take(labels, train)); err != nil {
		t.Fatalf("train: %v", err)
	}
	pred, err := model.Predict(dataset.Take(vecs, test))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}

	if acc := evaluate.Accuracy(dataset.Take(labels, test), pred); acc != 1.0 {
		t.Fatalf("expected accuracy 1.0 on marker-word fixture, got %v (pred %v)", acc, pred)
	}
}

func TestVerificationPairMagnitude(t *testing.T) {
	// 4 authors writing from disjoint letter inventories: same-author
	// fragments share a vocabulary, cross-author fragments share nothing.
	alphabets := [][2]string{
		{"aaaaabbbbbaaaaabbbbb", "bbbbbaaaaabbbbbaaaaa"},
		{"cccccdddddcccccddddd", "dddddcccccdddddccccc"},
		{"eeeeefffffeeeeefffff", "fffffeeeeefffffeeeee"},
		{"ggggghhhhhggggghhhhh", "hhhhhggggghhhhhggggg"},
	}

	frags := make([]sample.Fragments, len(alphabets))
	for i, a := range alphabets {
		frags[i] = sample.Fragments{Author: fmt.Sprintf("a%d", i), Known: a[0], Unknown: a[1]}
	}
	pairs, err := sample.BuildPairs(frags)
	if err != nil {
		t.Fatalf("build pairs: %v", err)
	}

	var texts []string
	for _, p := range pairs {
		texts = append(texts, p.Known)
	}
	for _, p := range pairs {
		texts = append(texts, p.Unknown)
	}
	space, err := vectorizer.Fit(vectorizer.Config{
		Char:  vectorizer.NgramRange{Lo: 2, Hi: 2},
		MinDF: 1,
	}, texts)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	vecs, err := space.Transform(texts)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	var maxSame, minDiff float64
	minDiff = -1
	for i, p := range pairs {
		d, err := vectorizer.AbsDiff(vecs[i], vecs[len(pairs)+i])
		if err != nil {
			t.Fatalf("abs diff: %v", err)
		}
		mag := d.L1Norm()
		if p.Label == sample.Same {
			if mag > maxSame {
				maxSame = mag
			}
		} else if minDiff < 0 || mag < minDiff {
			minDiff = mag
		}
	}

	if maxSame >= minDiff {
		t.Fatalf("same-author pairs must have smaller difference magnitude: max same %v, min different %v", maxSame, minDiff)
	}
}

func verificationRecords(authors, textLen int) []corpus.Record {
	letters := "abcdefghijklmnopqrstuvwxyz"
	recs := make([]corpus.Record, 0, authors)
	for i := 0; i < authors; i++ {
		a := string(letters[i%len(letters)])
		b := string(letters[(i+7)%len(letters)])
		unit := strings.Repeat(a, 3) + strings.Repeat(b, 2) + " "
		text := strings.Repeat(unit, textLen/len(unit)+1)
		recs = append(recs, corpus.Record{UserID: fmt.Sprintf("author-%d", i), Text: text})
	}
	return recs
}

func pipelineConfig() config.Config {
	cfg := config.Default()
	cfg.Attribution.TopKAuthors = 3
	cfg.Attribution.RecordsPerAuthorCap = 10
	cfg.Verification = config.VerificationConfig{
		MinTotalChars: 60,
		KnownLength:   20,
		UnknownLength: 20,
		SplitGap:      5,
	}
	cfg.Vectorizer = config.VectorizerConfig{
		Word:  config.NgramConfig{Min: 1, Max: 1, Lowercase: true},
		Char:  config.NgramConfig{Min: 2, Max: 2},
		MinDF: 1,
	}
	cfg.Classifier.Epochs = 100
	return cfg
}

func TestAttributionPipeline(t *testing.T) {
	cfg := pipelineConfig()
	res, err := Attribution(context.Background(), cfg, attributionFixture(), "", nil)
	if err != nil {
		t.Fatalf("attribution pipeline: %v", err)
	}
	if len(res.RankedAuthors) != 3 {
		t.Fatalf("expected 3 ranked authors, got %v", res.RankedAuthors)
	}
	if res.TrainSize+res.TestSize != res.SampleCount {
		t.Fatalf("partition does not cover samples: %d+%d != %d", res.TrainSize, res.TestSize, res.SampleCount)
	}
	if res.Dims == 0 {
		t.Fatal("expected a non-empty feature space")
	}
	if res.Report == nil {
		t.Fatal("expected an evaluation report")
	}
}

func TestAttributionPipelineWithDocument(t *testing.T) {
	cfg := pipelineConfig()
	res, err := Attribution(context.Background(), cfg, attributionFixture(), "an excellent excellent meal", nil)
	if err != nil {
		t.Fatalf("attribution pipeline: %v", err)
	}
	if res.DocPrediction == "" {
		t.Fatal("expected a document prediction")
	}
}

func TestVerificationPipeline(t *testing.T) {
	cfg := pipelineConfig()
	res, err := Verification(context.Background(), cfg, verificationRecords(8, 120), nil)
	if err != nil {
		t.Fatalf("verification pipeline: %v", err)
	}
	if res.AuthorCount != 8 {
		t.Fatalf("expected 8 qualifying authors, got %d", res.AuthorCount)
	}
	if res.PairCount != 8 {
		t.Fatalf("expected 8 pairs, got %d", res.PairCount)
	}
	if res.TrainSize+res.TestSize != res.PairCount {
		t.Fatalf("partition does not cover pairs: %d+%d != %d", res.TrainSize, res.TestSize, res.PairCount)
	}
}

func TestVerificationPipelineTooFewAuthors(t *testing.T) {
	cfg := pipelineConfig()
	_, err := Verification(context.Background(), cfg, verificationRecords(2, 120), nil)
	if err == nil {
		t.Fatal("expected pair construction to reject two authors")
	}
}
