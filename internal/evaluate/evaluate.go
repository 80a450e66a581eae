// Package evaluate scores held-out predictions: accuracy plus a per-class
// precision/recall/F1 table covering both the multi-class attribution case
// and binary verification.
package evaluate

import (
	"fmt"
	"sort"
	"strings"
)

// ClassMetrics holds one row of the report table.
type ClassMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// ClassReport is the per-class breakdown plus macro averages.
type ClassReport struct {
	Classes        []ClassMetrics
	MacroPrecision float64
	MacroRecall    float64
	MacroF1        float64
	Total          int
}

// Accuracy is the fraction of exact label matches.
func Accuracy(yTrue, yPred []string) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0
	}
	hits := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue))
}

// Report computes per-class metrics over the union of true and predicted
// labels, sorted. Zero denominators yield zero, not NaN.
func Report(yTrue, yPred []string) (*ClassReport, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("report needs matching lengths, got %d/%d", len(yTrue), len(yPred))
	}

	labels := map[string]struct{}{}
	for _, l := range yTrue {
		labels[l] = struct{}{}
	}
	for _, l := range yPred {
		labels[l] = struct{}{}
	}
	ordered := make([]string, 0, len(labels))
	for l := range labels {
		ordered = append(ordered, l)
	}
	sort.Strings(ordered)

	rep := &ClassReport{Total: len(yTrue)}
	for _, label := range ordered {
		tp, fp, fn := 0, 0, 0
		for i := range yTrue {
			switch {
			case yPred[i] == label && yTrue[i] == label:
				tp++
			case yPred[i] == label:
				fp++
			case yTrue[i] == label:
				fn++
			}
		}

		m := ClassMetrics{Label: label, Support: tp + fn}
		if tp+fp > 0 {
			m.Precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			m.Recall = float64(tp) / float64(tp+fn)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		rep.Classes = append(rep.Classes, m)

		rep.MacroPrecision += m.Precision
		rep.MacroRecall += m.Recall
		rep.MacroF1 += m.F1
	}

	n := float64(len(rep.Classes))
	if n > 0 {
		rep.MacroPrecision /= n
		rep.MacroRecall /= n
		rep.MacroF1 /= n
	}
	return rep, nil
}

// String renders the report as a fixed-width table.
func (r *ClassReport) String() string {
	width := len("macro avg")
	for _, m := range r.Classes {
		if len(m.Label) > width {
			width = len(m.Label)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %9s  %9s  %9s  %9s\n", width, "", "precision", "recall", "f1", "support")
	for _, m := range r.Classes {
		fmt.Fprintf(&b, "%-*s  %9.3f  %9.3f  %9.3f  %9d\n", width, m.Label, m.Precision, m.Recall, m.F1, m.Support)
	}
	fmt.Fprintf(&b, "%-*s  %9.3f  %9.3f  %9.3f  %9d\n", width, "macro avg", r.MacroPrecision, r.MacroRecall, r.MacroF1, r.Total)
	return b.String()
}
