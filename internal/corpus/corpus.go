package corpus

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrMalformedRecord marks a record missing its author id or text.
var ErrMalformedRecord = errors.New("malformed record")

// ProgressEvery is how many records pass between progress callbacks.
const ProgressEvery = 50000

// Record is one raw review as delivered by the ingestion layer.
type Record struct {
	UserID string
	Text   string
}

// Author holds one author's concatenated text and derived counts.
type Author struct {
	ID          string
	Text        string
	TotalLen    int
	RecordCount int
}

// Corpora maps author ids to their aggregated text. Authors keeps
// first-encounter order so downstream iteration is deterministic.
type Corpora struct {
	Authors []string
	ByID    map[string]*Author
}

// Aggregate groups records by author, joining each author's texts with a
// single newline in arrival order. A malformed record aborts aggregation;
// callers wanting skip semantics filter upstream in ingest.
func Aggregate(recs []Record, onProgress func(done int)) (*Corpora, error) {
	texts := make(map[string]*strings.Builder, len(recs)/4+1)
	c := &Corpora{ByID: make(map[string]*Author, len(recs)/4+1)}

	for i, r := range recs {
		if r.UserID == "" || r.Text == "" {
			return nil, fmt.Errorf("record %d: %w", i, ErrMalformedRecord)
		}
		b, ok := texts[r.UserID]
		if !ok {
			b = &strings.Builder{}
			texts[r.UserID] = b
			c.Authors = append(c.Authors, r.UserID)
			c.ByID[r.UserID] = &Author{ID: r.UserID}
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(r.Text)
		c.ByID[r.UserID].RecordCount++

		if onProgress != nil && (i+1)%ProgressEvery == 0 {
			onProgress(i + 1)
		}
	}

	for id, b := range texts {
		a := c.ByID[id]
		a.Text = b.String()
		a.TotalLen = utf8.RuneCountInString(a.Text)
	}
	return c, nil
}

// Len returns the number of aggregated authors.
func (c *Corpora) Len() int { return len(c.Authors) }

// TotalRecords sums record counts across all authors.
func (c *Corpora) TotalRecords() int {
	total := 0
	for _, id := range c.Authors {
		total += c.ByID[id].RecordCount
	}
	return total
}
