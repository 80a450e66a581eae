// Command aid runs authorship attribution and verification over NDJSON
// review dumps.
//
//	aid attribute -input reviews.ndjson [-config cfg.yaml] [-doc letter.txt]
//	aid verify    -input reviews.ndjson [-config cfg.yaml]
//	aid inspect   -input reviews.ndjson [-top 10]
//	aid runs      [-limit 10]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"authorid/internal/config"
	"authorid/internal/corpus"
	"authorid/internal/evaluate"
	"authorid/internal/ingest"
	"authorid/internal/logging"
	"authorid/internal/pipeline"
	"authorid/internal/store"
	"authorid/internal/textstat"
	"authorid/internal/workspace"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "attribute":
		err = runAttribute(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	case "runs":
		err = runRuns(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "aid %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: aid <attribute|verify|inspect|runs> [flags]")
}

type runFlags struct {
	input         string
	configPath    string
	dbPath        string
	reportPath    string
	skipMalformed bool
	stripHTML     bool
	noSave        bool
}

func bindRunFlags(fs *flag.FlagSet) *runFlags {
	f := &runFlags{}
	fs.StringVar(&f.input, "input", "", "NDJSON review dump (required)")
	fs.StringVar(&f.configPath, "config", "", "YAML config path (default: workspace config)")
	fs.StringVar(&f.dbPath, "db", "", "results database path (default: workspace data/runs.db)")
	fs.StringVar(&f.reportPath, "report", "", "report JSON path (default: workspace reports/)")
	fs.BoolVar(&f.skipMalformed, "skip-malformed", false, "skip undecodable records instead of aborting")
	fs.BoolVar(&f.stripHTML, "strip-html", false, "strip HTML markup from review text")
	fs.BoolVar(&f.noSave, "no-save", false, "do not persist the run")
	return f
}

func (f *runFlags) prepare(mode string) (config.Config, []corpus.Record, string, error) {
	if f.input == "" {
		return config.Config{}, nil, "", fmt.Errorf("-input is required")
	}

	root, err := workspace.EnsureDefault()
	if err != nil {
		return config.Config{}, nil, "", err
	}
	if f.configPath == "" {
		f.configPath = workspace.ConfigPath(root)
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, nil, "", err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if f.dbPath == "" {
		f.dbPath = workspace.DBPath(root)
	}
	if f.reportPath == "" {
		stamp := time.Now().UTC().Format("20060102-150405")
		f.reportPath = filepath.Join(root, "reports", fmt.Sprintf("%s-%s.json", mode, stamp))
	}

	recs, err := ingest.ReadRecordsFile(f.input, ingest.Options{
		SkipMalformed: f.skipMalformed,
		StripHTML:     f.stripHTML,
		Logger:        logging.WithComponent("ingest"),
	})
	if err != nil {
		return config.Config{}, nil, "", err
	}
	return cfg, recs, root, nil
}

func (f *runFlags) persist(mode string, cfg config.Config, report workspace.Report, started time.Time) error {
	if f.noSave {
		return nil
	}

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	metrics := make([]store.ClassMetric, len(report.Classes))
	for i, c := range report.Classes {
		metrics[i] = store.ClassMetric{
			Label:     c.Label,
			Precision: c.Precision,
			Recall:    c.Recall,
			F1:        c.F1,
			Support:   c.Support,
		}
	}

	runID, err := store.SaveRun(f.dbPath, store.Run{
		Mode:       mode,
		Input:      f.input,
		ConfigJSON: string(cfgJSON),
		Accuracy:   report.Accuracy,
		TrainSize:  report.TrainSize,
		TestSize:   report.TestSize,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}, metrics)
	if err != nil {
		return err
	}

	if err := workspace.SaveReport(f.reportPath, report); err != nil {
		return err
	}
	fmt.Printf("saved run %s (report: %s)\n", runID, f.reportPath)
	return nil
}

func classRows(rep *evaluate.ClassReport) []workspace.ClassRow {
	rows := make([]workspace.ClassRow, len(rep.Classes))
	for i, m := range rep.Classes {
		rows[i] = workspace.ClassRow{
			Label:     m.Label,
			Precision: m.Precision,
			Recall:    m.Recall,
			F1:        m.F1,
			Support:   m.Support,
		}
	}
	return rows
}

func runAttribute(args []string) error {
	fs := flag.NewFlagSet("attribute", flag.ExitOnError)
	f := bindRunFlags(fs)
	docPath := fs.String("doc", "", "attribute this document after training")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, recs, _, err := f.prepare("attribution")
	if err != nil {
		return err
	}

	doc := ""
	if *docPath != "" {
		doc, err = ingest.ReadDocument(*docPath)
		if err != nil {
			return err
		}
	}

	started := time.Now()
	res, err := pipeline.Attribution(context.Background(), cfg, recs, doc, logging.WithComponent("pipeline"))
	if err != nil {
		return err
	}

	fmt.Printf("attribution over %d authors, %d samples (train %d / test %d, %d features)\n",
		len(res.RankedAuthors), res.SampleCount, res.TrainSize, res.TestSize, res.Dims)
	fmt.Printf("accuracy: %.4f\n\n%s", res.Accuracy, res.Report.String())
	if res.DocPrediction != "" {
		fmt.Printf("\ndocument attributed to: %s\n", res.DocPrediction)
	}

	return f.persist("attribution", cfg, workspace.Report{
		Mode:          "attribution",
		Input:         f.input,
		Config:        cfg,
		Accuracy:      res.Accuracy,
		TrainSize:     res.TrainSize,
		TestSize:      res.TestSize,
		Dims:          res.Dims,
		BlockDims:     res.BlockDims,
		Classes:       classRows(res.Report),
		DocPrediction: res.DocPrediction,
		StartedAt:     started,
		DurationMs:    res.Duration.Milliseconds(),
	}, started)
}

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	f := bindRunFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, recs, _, err := f.prepare("verification")
	if err != nil {
		return err
	}

	started := time.Now()
	res, err := pipeline.Verification(context.Background(), cfg, recs, logging.WithComponent("pipeline"))
	if err != nil {
		return err
	}

	fmt.Printf("verification over %d qualifying authors, %d pairs (train %d / test %d, %d features)\n",
		res.AuthorCount, res.PairCount, res.TrainSize, res.TestSize, res.Dims)
	fmt.Printf("accuracy: %.4f\n\n%s", res.Accuracy, res.Report.String())

	return f.persist("verification", cfg, workspace.Report{
		Mode:       "verification",
		Input:      f.input,
		Config:     cfg,
		Accuracy:   res.Accuracy,
		TrainSize:  res.TrainSize,
		TestSize:   res.TestSize,
		Dims:       res.Dims,
		BlockDims:  res.BlockDims,
		Classes:    classRows(res.Report),
		StartedAt:  started,
		DurationMs: res.Duration.Milliseconds(),
	}, started)
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	input := fs.String("input", "", "NDJSON review dump (required)")
	configPath := fs.String("config", "", "YAML config path")
	top := fs.Int("top", 10, "show per-author stats for the top N authors")
	skipMalformed := fs.Bool("skip-malformed", false, "skip undecodable records instead of aborting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("-input is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	recs, err := ingest.ReadRecordsFile(*input, ingest.Options{
		SkipMalformed: *skipMalformed,
		Logger:        logging.WithComponent("ingest"),
	})
	if err != nil {
		return err
	}

	corpora, err := corpus.Aggregate(recs, nil)
	if err != nil {
		return err
	}
	qualifying := corpus.FilterByLength(corpora, cfg.Verification.MinTotalChars)

	fmt.Printf("records: %d\nauthors: %d\n", len(recs), corpora.Len())
	fmt.Printf("authors over %d chars (verification): %d\n", cfg.Verification.MinTotalChars, qualifying.Len())
	fmt.Printf("attribution targets %d authors capped at %d records each\n\n",
		cfg.Attribution.TopKAuthors, cfg.Attribution.RecordsPerAuthorCap)

	k := *top
	if k > corpora.Len() {
		k = corpora.Len()
	}
	_, ranked, err := corpus.SelectTopAuthors(corpora, recs, k, 1<<30)
	if err != nil {
		return err
	}

	fmt.Printf("%-24s %8s %10s %8s %8s %6s\n", "author", "records", "chars", "words", "sents", "ttr")
	for _, id := range ranked {
		a := corpora.ByID[id]
		st := textstat.Analyze(a.Text)
		fmt.Printf("%-24s %8d %10d %8d %8d %6.3f\n",
			id, a.RecordCount, st.CharCount, st.Words, st.Sentences, st.TypeTokenRatio)
	}
	return nil
}

func runRuns(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dbPath := fs.String("db", "", "results database path (default: workspace data/runs.db)")
	limit := fs.Int("limit", 10, "number of runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *dbPath == "" {
		root, err := workspace.EnsureDefault()
		if err != nil {
			return err
		}
		*dbPath = workspace.DBPath(root)
	}

	runs, err := store.RecentRuns(*dbPath, *limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	fmt.Printf("%-36s %-13s %-9s %8s %8s  %s\n", "id", "mode", "accuracy", "train", "test", "input")
	for _, r := range runs {
		fmt.Printf("%-36s %-13s %9.4f %8d %8d  %s\n", r.ID, r.Mode, r.Accuracy, r.TrainSize, r.TestSize, r.Input)
	}
	return nil
}
