// Package config loads pipeline configuration from YAML with AID_* env
// overrides and validates it before a run starts.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level run configuration.
type Config struct {
	Attribution  AttributionConfig  `yaml:"attribution"`
	Verification VerificationConfig `yaml:"verification"`
	Vectorizer   VectorizerConfig   `yaml:"vectorizer"`
	Classifier   ClassifierConfig   `yaml:"classifier"`
	Eval         EvalConfig         `yaml:"eval"`
	Logging      LoggingConfig      `yaml:"logging"`
	Workers      int                `yaml:"workers"`
}

// AttributionConfig selects the closed author set.
type AttributionConfig struct {
	TopKAuthors         int `yaml:"top_k_authors"`
	RecordsPerAuthorCap int `yaml:"records_per_author_cap"`
}

// VerificationConfig controls the known/unknown fragment split.
type VerificationConfig struct {
	MinTotalChars int `yaml:"min_total_chars"`
	KnownLength   int `yaml:"known_length"`
	UnknownLength int `yaml:"unknown_length"`
	SplitGap      int `yaml:"split_gap"`
}

// NgramConfig bounds one tokenization block; a zero range disables it.
type NgramConfig struct {
	Min       int  `yaml:"min"`
	Max       int  `yaml:"max"`
	Lowercase bool `yaml:"lowercase"`
}

func (n NgramConfig) enabled() bool { return n.Min > 0 && n.Max >= n.Min }

// VectorizerConfig controls the tf-idf feature space.
type VectorizerConfig struct {
	Word  NgramConfig `yaml:"word"`
	Char  NgramConfig `yaml:"char"`
	MinDF float64     `yaml:"min_df"`
}

// ClassifierConfig controls the linear solver.
type ClassifierConfig struct {
	Lambda float64 `yaml:"lambda"`
	Epochs int     `yaml:"epochs"`
	Seed   int64   `yaml:"seed"`
}

// EvalConfig controls partitioning.
type EvalConfig struct {
	TrainFraction float64 `yaml:"train_fraction"`
	RandomSeed    int64   `yaml:"random_seed"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Attribution: AttributionConfig{
			TopKAuthors:         50,
			RecordsPerAuthorCap: 1000,
		},
		Verification: VerificationConfig{
			MinTotalChars: 30000,
			KnownLength:   10000,
			UnknownLength: 10000,
			SplitGap:      10,
		},
		Vectorizer: VectorizerConfig{
			Word:  NgramConfig{Min: 1, Max: 2, Lowercase: true},
			Char:  NgramConfig{Min: 2, Max: 4},
			MinDF: 2,
		},
		Classifier: ClassifierConfig{
			Lambda: 1e-4,
			Epochs: 50,
			Seed:   7,
		},
		Eval: EvalConfig{
			TrainFraction: 0.75,
			RandomSeed:    1337,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads YAML from path, falling back to defaults when path is empty or
// absent, then applies env overrides and validates.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setInt64 := func(key string, dst *int64) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				*dst = n
			}
		}
	}
	setFloat := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setInt("AID_TOP_K_AUTHORS", &cfg.Attribution.TopKAuthors)
	setInt("AID_RECORDS_PER_AUTHOR_CAP", &cfg.Attribution.RecordsPerAuthorCap)
	setInt("AID_MIN_TOTAL_CHARS", &cfg.Verification.MinTotalChars)
	setInt("AID_KNOWN_LENGTH", &cfg.Verification.KnownLength)
	setInt("AID_UNKNOWN_LENGTH", &cfg.Verification.UnknownLength)
	setInt("AID_SPLIT_GAP", &cfg.Verification.SplitGap)
	setFloat("AID_MIN_DF", &cfg.Vectorizer.MinDF)
	setFloat("AID_TRAIN_FRACTION", &cfg.Eval.TrainFraction)
	setInt64("AID_RANDOM_SEED", &cfg.Eval.RandomSeed)
	setInt("AID_WORKERS", &cfg.Workers)
	setString("AID_LOG_LEVEL", &cfg.Logging.Level)
	setString("AID_LOG_FORMAT", &cfg.Logging.Format)
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Attribution.TopKAuthors < 2 {
		return fmt.Errorf("top_k_authors must be at least 2, got %d", c.Attribution.TopKAuthors)
	}
	if c.Attribution.RecordsPerAuthorCap < 1 {
		return fmt.Errorf("records_per_author_cap must be positive, got %d", c.Attribution.RecordsPerAuthorCap)
	}

	v := c.Verification
	if v.KnownLength < 1 || v.UnknownLength < 1 {
		return fmt.Errorf("known_length and unknown_length must be positive, got %d/%d", v.KnownLength, v.UnknownLength)
	}
	if v.SplitGap < 0 {
		return fmt.Errorf("split_gap must not be negative, got %d", v.SplitGap)
	}
	if v.MinTotalChars < v.KnownLength+v.SplitGap+v.UnknownLength {
		return fmt.Errorf("min_total_chars %d cannot cover known %d + gap %d + unknown %d",
			v.MinTotalChars, v.KnownLength, v.SplitGap, v.UnknownLength)
	}

	if !c.Vectorizer.Word.enabled() && !c.Vectorizer.Char.enabled() {
		return fmt.Errorf("at least one n-gram block must be enabled")
	}
	for name, n := range map[string]NgramConfig{"word": c.Vectorizer.Word, "char": c.Vectorizer.Char} {
		if n.Min < 0 || n.Max < 0 || (n.Min > 0 && n.Max < n.Min) {
			return fmt.Errorf("%s n-gram range [%d,%d] is invalid", name, n.Min, n.Max)
		}
	}
	if c.Vectorizer.MinDF < 0 {
		return fmt.Errorf("min_df must not be negative, got %v", c.Vectorizer.MinDF)
	}

	if c.Eval.TrainFraction <= 0 || c.Eval.TrainFraction >= 1 {
		return fmt.Errorf("train_fraction must be in (0,1), got %v", c.Eval.TrainFraction)
	}
	return nil
}
