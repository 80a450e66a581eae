package sample

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientLength means an author corpus is too short for the
	// known/unknown split. The length filter upstream should make this
	// unreachable; hitting it is an invariant violation.
	ErrInsufficientLength = errors.New("corpus too short for known/unknown split")

	// ErrTooFewAuthors means pair construction was asked to run with a
	// half size of one or less, where the cyclic shift degenerates.
	ErrTooFewAuthors = errors.New("too few authors for pair construction")
)

// Label tells whether a pair's fragments share an author.
type Label string

const (
	Same      Label = "same"
	Different Label = "different"
)

// Fragments holds one author's disjoint known and unknown texts.
type Fragments struct {
	Author  string
	Known   string
	Unknown string
}

// Pair is a classification instance for verification.
type Pair struct {
	Known   string
	Unknown string
	Label   Label
}

// SplitKnownUnknown slices text into a known fragment of knownLen runes, a
// gap of skipped runes, and an unknown fragment of unknownLen runes. The gap
// keeps the two fragments from sharing a boundary substring.
func SplitKnownUnknown(text string, knownLen, gap, unknownLen int) (known, unknown string, err error) {
	if knownLen <= 0 || unknownLen <= 0 || gap < 0 {
		return "", "", fmt.Errorf("invalid split lengths known=%d gap=%d unknown=%d", knownLen, gap, unknownLen)
	}
	runes := []rune(text)
	need := knownLen + gap + unknownLen
	if len(runes) < need {
		return "", "", fmt.Errorf("have %d runes, need %d: %w", len(runes), need, ErrInsufficientLength)
	}
	known = string(runes[:knownLen])
	unknown = string(runes[knownLen+gap : knownLen+gap+unknownLen])
	return known, unknown, nil
}

// BuildPairs turns per-author fragments into a balanced pair set: the first
// half of the authors contribute same-author pairs, the second half
// different-author pairs whose unknown fragment comes from the next author
// in the half (wrapping). An odd trailing author is dropped.
func BuildPairs(frags []Fragments) ([]Pair, error) {
	n := len(frags)
	if n%2 != 0 {
		n--
	}
	half := n / 2
	if half <= 1 {
		return nil, fmt.Errorf("need more than 2 qualifying authors, have %d: %w", len(frags), ErrTooFewAuthors)
	}

	pairs := make([]Pair, 0, n)
	for i := 0; i < half; i++ {
		pairs = append(pairs, Pair{
			Known:   frags[i].Known,
			Unknown: frags[i].Unknown,
			Label:   Same,
		})
	}
	for j := half; j < n; j++ {
		shifted := j + 1
		if shifted == n {
			shifted = half
		}
		pairs = append(pairs, Pair{
			Known:   frags[j].Known,
			Unknown: frags[shifted].Unknown,
			Label:   Different,
		})
	}
	return pairs, nil
}

// Labels extracts the label column in pair order.
func Labels(pairs []Pair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = string(p.Label)
	}
	return out
}
