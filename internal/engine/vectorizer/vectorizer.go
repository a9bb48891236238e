// Package vectorizer turns banner text into bag-of-words count vectors.
package vectorizer

import "errors"

// DefaultMaxFeatures caps the vocabulary for the web classification path.
const DefaultMaxFeatures = 100

// ErrNotFitted is returned by Transform before Fit has been called.
var ErrNotFitted = errors.New("vectorizer: not fitted")

// Vectorizer builds a bounded vocabulary from a corpus and maps texts to
// fixed-width count vectors over it. The vocabulary is rebuilt on every Fit,
// so feature indices are only meaningful within one fit. Not safe for
// concurrent use.
type Vectorizer struct {
	maxFeatures int
	tok         *tokenizer
	vocab       *vocab
}

// New creates a Vectorizer keeping at most maxFeatures tokens.
// maxFeatures <= 0 means unbounded.
func New(maxFeatures int) *Vectorizer {
	return &Vectorizer{maxFeatures: maxFeatures, tok: newTokenizer()}
}

// Fit builds the vocabulary from texts.
func (v *Vectorizer) Fit(texts []string) {
	docs := make([][]string, len(texts))
	for i, text := range texts {
		docs[i] = v.tok.tokenize(text)
	}
	v.vocab = buildVocab(docs, v.maxFeatures)
}

// Transform maps each text to a count vector of width Features().
func (v *Vectorizer) Transform(texts []string) ([][]float64, error) {
	if v.vocab == nil {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		row := make([]float64, v.vocab.size())
		for _, tok := range v.tok.tokenize(text) {
			if id, ok := v.vocab.lookup(tok); ok {
				row[id]++
			}
		}
		out[i] = row
	}
	return out, nil
}

// FitTransform is Fit followed by Transform on the same texts.
func (v *Vectorizer) FitTransform(texts []string) ([][]float64, error) {
	v.Fit(texts)
	return v.Transform(texts)
}

// Features returns the vocabulary in feature-index order.
func (v *Vectorizer) Features() []string {
	if v.vocab == nil {
		return nil
	}
	return append([]string(nil), v.vocab.idToToken...)
}
