package vectorizer

import "sort"

// vocab maps tokens to feature indices. Indices follow alphabetical token
// order.
type vocab struct {
	tokenToID map[string]int
	idToToken []string
}

// buildVocab keeps the maxFeatures most frequent tokens across the corpus.
// Ties are broken alphabetically. maxFeatures <= 0 keeps every token.
func buildVocab(docs [][]string, maxFeatures int) *vocab {
	freq := make(map[string]int)
	for _, doc := range docs {
		for _, tok := range doc {
			freq[tok]++
		}
	}

	tokens := make([]string, 0, len(freq))
	for tok := range freq {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	if maxFeatures > 0 && len(tokens) > maxFeatures {
		sort.SliceStable(tokens, func(i, j int) bool {
			return freq[tokens[i]] > freq[tokens[j]]
		})
		tokens = tokens[:maxFeatures]
		sort.Strings(tokens)
	}

	v := &vocab{
		tokenToID: make(map[string]int, len(tokens)),
		idToToken: tokens,
	}
	for i, tok := range tokens {
		v.tokenToID[tok] = i
	}
	return v
}

// lookup returns the feature index for token and whether it is in the vocabulary.
func (v *vocab) lookup(token string) (int, bool) {
	id, ok := v.tokenToID[token]
	return id, ok
}

func (v *vocab) size() int {
	return len(v.idToToken)
}

