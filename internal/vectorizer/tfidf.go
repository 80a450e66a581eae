package vectorizer

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyVocabulary means fitting produced zero features for an enabled
// block, usually a min_df too strict for the corpus size.
var ErrEmptyVocabulary = errors.New("empty vocabulary after fit")

// NgramRange bounds one tokenization scheme. A zero range disables the block.
type NgramRange struct {
	Lo, Hi    int
	Lowercase bool
}

func (r NgramRange) enabled() bool { return r.Lo > 0 && r.Hi >= r.Lo }

// Config controls fitting. MinDF ≥ 1 is an absolute document count; a value
// in (0,1) is a fraction of the fit corpus.
type Config struct {
	Word    NgramRange
	Char    NgramRange
	MinDF   float64
	Workers int
}

// block is one fitted feature block: its analyzer, vocabulary, idf weights
// and the offset of its features in the concatenated space.
type block struct {
	name   string
	an     analyzer
	vocab  map[string]int
	idf    []float64
	offset int
}

// VectorSpace is a fitted vocabulary. It is immutable after Fit; Transform
// never writes to it, so one space may serve concurrent transforms.
type VectorSpace struct {
	blocks  []block
	dim     int
	workers int
}

// Dim returns the total feature count across all blocks.
func (s *VectorSpace) Dim() int { return s.dim }

// BlockDims reports per-block vocabulary sizes keyed by block name.
func (s *VectorSpace) BlockDims() map[string]int {
	out := make(map[string]int, len(s.blocks))
	for _, b := range s.blocks {
		out[b.name] = len(b.idf)
	}
	return out
}

// Fit builds the vocabulary and idf weights over texts. Word features come
// first, char features after, offsets fixed here and reused by every
// Transform. Fit exactly once per run on the full set of texts to be
// transformed so train and test share one feature space.
func Fit(cfg Config, texts []string) (*VectorSpace, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("fit on empty corpus: %w", ErrEmptyVocabulary)
	}
	if !cfg.Word.enabled() && !cfg.Char.enabled() {
		return nil, fmt.Errorf("no tokenization block enabled")
	}

	space := &VectorSpace{workers: cfg.Workers}
	if cfg.Word.enabled() {
		an := wordAnalyzer{lo: cfg.Word.Lo, hi: cfg.Word.Hi, lowercase: cfg.Word.Lowercase}
		b, err := fitBlock("word", an, texts, cfg.MinDF, space.dim)
		if err != nil {
			return nil, err
		}
		space.blocks = append(space.blocks, b)
		space.dim += len(b.idf)
	}
	if cfg.Char.enabled() {
		an := charAnalyzer{lo: cfg.Char.Lo, hi: cfg.Char.Hi, lowercase: cfg.Char.Lowercase}
		b, err := fitBlock("char", an, texts, cfg.MinDF, space.dim)
		if err != nil {
			return nil, err
		}
		space.blocks = append(space.blocks, b)
		space.dim += len(b.idf)
	}
	return space, nil
}

func fitBlock(name string, an analyzer, texts []string, minDF float64, offset int) (block, error) {
	df := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, term := range an.terms(text) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	threshold := minDF
	if threshold > 0 && threshold < 1 {
		threshold = minDF * float64(len(texts))
	}

	terms := make([]string, 0, len(df))
	for term, count := range df {
		if float64(count) >= threshold {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return block{}, fmt.Errorf("%s block: %w", name, ErrEmptyVocabulary)
	}
	sort.Strings(terms)

	b := block{
		name:   name,
		an:     an,
		vocab:  make(map[string]int, len(terms)),
		idf:    make([]float64, len(terms)),
		offset: offset,
	}
	n := float64(len(texts))
	for i, term := range terms {
		b.vocab[term] = i
		b.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return b, nil
}

// Transform maps texts into the fitted space. Out-of-vocabulary terms
// contribute nothing; a text with no known terms yields an all-zero vector.
// Documents are transformed in parallel since each one only reads the space.
func (s *VectorSpace) Transform(texts []string) ([]Vector, error) {
	if s.dim == 0 {
		return nil, fmt.Errorf("transform before fit: %w", ErrEmptyVocabulary)
	}

	workers := s.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([]Vector, len(texts))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			out[i] = s.transformOne(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *VectorSpace) transformOne(text string) Vector {
	weights := make(map[int]float64)
	for _, b := range s.blocks {
		counts := make(map[int]int)
		total := 0
		for _, term := range b.an.terms(text) {
			if idx, ok := b.vocab[term]; ok {
				counts[idx]++
				total++
			}
		}
		if total == 0 {
			continue
		}
		for idx, count := range counts {
			tf := float64(count) / float64(total)
			weights[b.offset+idx] = tf * b.idf[idx]
		}
	}

	v := fromMap(weights, s.dim)
	if norm := v.L2Norm(); norm > 0 {
		v.scale(1 / norm)
	}
	return v
}
