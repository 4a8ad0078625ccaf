package vectorspace

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/civicdex/internal/domain"
)

// Space is a fitted TF-IDF basis. It is immutable after Fit.
type Space struct {
	vocab map[string]int32
	terms []string
	idf   []float64
}

// Fit learns the vocabulary and smoothed IDF weights from analyzed documents.
// When more than maxFeatures distinct terms occur, the terms with the highest
// total corpus frequency are kept, ties broken by term order. maxFeatures <= 0
// keeps every term.
func Fit(docs [][]string, maxFeatures int) (*Space, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("fit over 0 documents: %w", domain.ErrEmptyCorpus)
	}

	docFreq := make(map[string]int)
	corpusFreq := make(map[string]int)
	for _, terms := range docs {
		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			corpusFreq[t]++
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			docFreq[t]++
		}
	}
	if len(docFreq) == 0 {
		return nil, fmt.Errorf("no terms in %d documents: %w", len(docs), domain.ErrEmptyCorpus)
	}

	kept := make([]string, 0, len(docFreq))
	for t := range docFreq {
		kept = append(kept, t)
	}
	if maxFeatures > 0 && len(kept) > maxFeatures {
		sort.Slice(kept, func(i, j int) bool {
			fi, fj := corpusFreq[kept[i]], corpusFreq[kept[j]]
			if fi != fj {
				return fi > fj
			}
			return kept[i] < kept[j]
		})
		kept = kept[:maxFeatures]
	}
	sort.Strings(kept)

	n := float64(len(docs))
	s := &Space{
		vocab: make(map[string]int32, len(kept)),
		terms: kept,
		idf:   make([]float64, len(kept)),
	}
	for i, t := range kept {
		s.vocab[t] = int32(i) //nolint:gosec // vocabulary is capped far below MaxInt32
		s.idf[i] = math.Log((1+n)/(1+float64(docFreq[t]))) + 1
	}
	return s, nil
}

// Transform projects analyzed terms into the space. Terms outside the
// vocabulary are ignored. The result is L2-normalized (or zero).
func (s *Space) Transform(terms []string) Vector {
	counts := make(map[int32]int, len(terms))
	for _, t := range terms {
		if i, ok := s.vocab[t]; ok {
			counts[i]++
		}
	}
	if len(counts) == 0 {
		return Vector{}
	}

	idx := make([]int32, 0, len(counts))
	for i := range counts {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool { return idx[a] < idx[b] })

	val := make([]float64, len(idx))
	var sum float64
	for k, i := range idx {
		w := float64(counts[i]) * s.idf[i]
		val[k] = w
		sum += w * w
	}
	norm := math.Sqrt(sum)
	for k := range val {
		val[k] /= norm
	}
	return Vector{idx: idx, val: val}
}

// Size returns the vocabulary size (number of dimensions).
func (s *Space) Size() int { return len(s.terms) }

// Term returns the term behind dimension i.
func (s *Space) Term(i int32) string { return s.terms[i] }

// IDF returns the weight of a term and whether it is in the vocabulary.
func (s *Space) IDF(term string) (float64, bool) {
	i, ok := s.vocab[term]
	if !ok {
		return 0, false
	}
	return s.idf[i], true
}
