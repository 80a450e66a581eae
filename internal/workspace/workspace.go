// Package workspace manages the on-disk layout for runs: report artifacts,
// the results database, and a commented starter configuration.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

const BaseDirName = "AuthorID"

const defaultConfigYAML = `# Authorship pipeline configuration.
# Values omitted here keep their built-in defaults; AID_* environment
# variables override both.

attribution:
  top_k_authors: 50
  records_per_author_cap: 1000

verification:
  min_total_chars: 30000
  known_length: 10000
  unknown_length: 10000
  split_gap: 10

vectorizer:
  word:
    min: 1
    max: 2
    lowercase: true
  char:
    min: 2
    max: 4
  min_df: 2

classifier:
  lambda: 0.0001
  epochs: 50
  seed: 7

eval:
  train_fraction: 0.75
  random_seed: 1337

logging:
  level: info
  format: text
`

// EnsureDefault prepares the workspace under the user's home directory.
func EnsureDefault() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return EnsureAt(filepath.Join(home, BaseDirName))
}

// EnsureAt creates the workspace directories under base and seeds a default
// config.yaml when none exists yet.
func EnsureAt(base string) (string, error) {
	for _, p := range []string{
		filepath.Join(base, "reports"),
		filepath.Join(base, "data"),
	} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", p, err)
		}
	}

	configPath := filepath.Join(base, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if writeErr := os.WriteFile(configPath, []byte(defaultConfigYAML), 0o644); writeErr != nil {
			return "", fmt.Errorf("write default config: %w", writeErr)
		}
	}

	return base, nil
}

// ConfigPath returns the workspace's config file location.
func ConfigPath(base string) string {
	return filepath.Join(base, "config.yaml")
}

// DBPath returns the workspace's results database location.
func DBPath(base string) string {
	return filepath.Join(base, "data", "runs.db")
}
