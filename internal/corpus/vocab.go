package corpus

import "sort"

// Vocab maps tokens to positive indices. Index 0 is reserved for padding and
// is never assigned to a token. The mapping is stable: tokens are sorted
// lexicographically and numbered 1..N, so rebuilding over the same splits
// always reproduces the same indices (embedding tables depend on that across
// save/load).
type Vocab struct {
	index map[string]int
	words []string
}

// BuildVocab collects every story, question and answer token across the
// supplied splits. Train and test must be passed together so both splits
// share one index space.
func BuildVocab(splits ...[]Story) *Vocab {
	set := make(map[string]struct{})
	for _, stories := range splits {
		for _, s := range stories {
			for _, tok := range s.Tokens {
				set[tok] = struct{}{}
			}
			for _, tok := range s.Question {
				set[tok] = struct{}{}
			}
			set[s.Answer] = struct{}{}
		}
	}
	words := make([]string, 0, len(set))
	for tok := range set {
		words = append(words, tok)
	}
	sort.Strings(words)

	index := make(map[string]int, len(words))
	for i, tok := range words {
		index[tok] = i + 1
	}
	return &Vocab{index: index, words: words}
}

// Index returns the token's index, or false if the token is unknown.
func (v *Vocab) Index(tok string) (int, bool) {
	i, ok := v.index[tok]
	return i, ok
}

// Word is the inverse of Index. Index 0 and out-of-range indices return false.
func (v *Vocab) Word(i int) (string, bool) {
	if i < 1 || i > len(v.words) {
		return "", false
	}
	return v.words[i-1], true
}

// Len is the number of distinct tokens.
func (v *Vocab) Len() int { return len(v.words) }

// Size is the one-hot width: distinct tokens plus the padding slot.
func (v *Vocab) Size() int { return len(v.words) + 1 }
