package corpus

import (
	"fmt"
	"sort"
)

// LabeledText pairs one review text with its author so instance and label
// can never drift apart under reordering.
type LabeledText struct {
	Author string
	Text   string
}

// SelectTopAuthors ranks authors by record count (descending, author id
// ascending on ties), keeps the top k, then re-scans recs in original order
// keeping at most cap records per selected author. Returns the kept samples
// and the ranked author list.
func SelectTopAuthors(c *Corpora, recs []Record, k, cap int) ([]LabeledText, []string, error) {
	if k <= 0 {
		return nil, nil, fmt.Errorf("top author count must be positive, got %d", k)
	}
	if cap <= 0 {
		return nil, nil, fmt.Errorf("per-author record cap must be positive, got %d", cap)
	}
	if c.Len() < k {
		return nil, nil, fmt.Errorf("corpus has %d authors, need %d", c.Len(), k)
	}

	ranked := make([]string, len(c.Authors))
	copy(ranked, c.Authors)
	sort.Slice(ranked, func(i, j int) bool {
		ci, cj := c.ByID[ranked[i]].RecordCount, c.ByID[ranked[j]].RecordCount
		if ci != cj {
			return ci > cj
		}
		return ranked[i] < ranked[j]
	})
	ranked = ranked[:k]

	selected := make(map[string]int, k)
	for _, id := range ranked {
		selected[id] = 0
	}

	samples := make([]LabeledText, 0, k*cap)
	for _, r := range recs {
		n, ok := selected[r.UserID]
		if !ok || n >= cap {
			continue
		}
		selected[r.UserID] = n + 1
		samples = append(samples, LabeledText{Author: r.UserID, Text: r.Text})
	}
	return samples, ranked, nil
}

// FilterByLength keeps authors whose total rune count strictly exceeds
// minChars, preserving first-encounter order.
func FilterByLength(c *Corpora, minChars int) *Corpora {
	out := &Corpora{ByID: make(map[string]*Author)}
	for _, id := range c.Authors {
		a := c.ByID[id]
		if a.TotalLen > minChars {
			out.Authors = append(out.Authors, id)
			out.ByID[id] = a
		}
	}
	return out
}
