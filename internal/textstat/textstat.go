// Package textstat computes descriptive surface statistics for a text,
// backing the `aid inspect` overview.
package textstat

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

var sentenceEnd = regexp.MustCompile(`[.!?]+`)
var wordPattern = regexp.MustCompile(`\p{L}+(?:'\p{L}+)*`)

type Stats struct {
	CharCount       int
	Words           int
	Sentences       int
	MeanSentenceLen float64
	SentenceLenSD   float64
	TypeTokenRatio  float64
}

func Analyze(text string) Stats {
	words := tokenize(text)
	sd, mean, sentences := sentenceLengthStats(text)

	types := make(map[string]struct{}, len(words))
	for _, w := range words {
		types[w] = struct{}{}
	}
	ttr := 0.0
	if len(words) > 0 {
		ttr = float64(len(types)) / float64(len(words))
	}

	return Stats{
		CharCount:       utf8.RuneCountInString(text),
		Words:           len(words),
		Sentences:       sentences,
		MeanSentenceLen: mean,
		SentenceLenSD:   sd,
		TypeTokenRatio:  ttr,
	}
}

func sentenceLengthStats(text string) (sd, mean float64, count int) {
	sentences := sentenceEnd.Split(text, -1)
	lengths := make([]float64, 0, len(sentences))
	for _, s := range sentences {
		if n := float64(len(tokenize(s))); n > 0 {
			lengths = append(lengths, n)
		}
	}
	if len(lengths) == 0 {
		return 0, 0, 0
	}

	total := 0.0
	for _, l := range lengths {
		total += l
	}
	mean = total / float64(len(lengths))
	if len(lengths) == 1 {
		return 0, mean, 1
	}

	var variance float64
	for _, l := range lengths {
		d := l - mean
		variance += d * d
	}
	variance /= float64(len(lengths))
	return math.Sqrt(variance), mean, len(lengths)
}

func tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}
