// Package ingest decodes raw review dumps and ad-hoc documents into the
// plain records and texts the core pipeline consumes.
package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/net/html"

	"authorid/internal/corpus"
)

// maxLineBytes bounds a single NDJSON line; review texts are short but
// concatenated dumps occasionally carry multi-megabyte outliers.
const maxLineBytes = 8 * 1024 * 1024

// Options controls record ingestion.
type Options struct {
	// SkipMalformed drops undecodable or incomplete lines instead of
	// aborting, logging each skip. Off by default: silent drops would
	// shrink author samples without notice.
	SkipMalformed bool
	// StripHTML removes markup and resolves entities in review text;
	// public review dumps carry <br /> tags and &amp; escapes.
	StripHTML bool
	Logger    *slog.Logger
}

type rawRecord struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// ReadRecordsFile reads an NDJSON review dump from disk.
func ReadRecordsFile(path string, opts Options) ([]corpus.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	defer f.Close()
	return ReadRecords(f, opts)
}

// ReadRecords decodes one JSON object per line, requiring user_id and text;
// extra fields are ignored. Blank lines are skipped. A malformed line
// aborts with its line number unless opts.SkipMalformed.
func ReadRecords(r io.Reader, opts Options) ([]corpus.Record, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var recs []corpus.Record
	skipped := 0
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var rec rawRecord
		err := json.Unmarshal([]byte(raw), &rec)
		if err == nil && (rec.UserID == "" || rec.Text == "") {
			err = fmt.Errorf("missing user_id or text")
		}
		if err != nil {
			if opts.SkipMalformed {
				skipped++
				logger.Warn("skipping malformed record", "line", line, "error", err)
				continue
			}
			return nil, fmt.Errorf("line %d: %v: %w", line, err, corpus.ErrMalformedRecord)
		}

		text := rec.Text
		if opts.StripHTML {
			text = StripTags(text)
			if text == "" {
				if opts.SkipMalformed {
					skipped++
					logger.Warn("skipping record empty after markup removal", "line", line)
					continue
				}
				return nil, fmt.Errorf("line %d: text empty after markup removal: %w", line, corpus.ErrMalformedRecord)
			}
		}
		recs = append(recs, corpus.Record{UserID: rec.UserID, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}

	if skipped > 0 {
		logger.Info("ingestion complete with skips", "records", len(recs), "skipped", skipped)
	}
	return recs, nil
}

// StripTags drops HTML markup and resolves entities, keeping only text
// content. Block-ish breaks collapse into single spaces.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	node, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return strings.Join(strings.Fields(b.String()), " ")
}
