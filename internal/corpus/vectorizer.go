package corpus

import "fmt"

// Batch holds the vectorized tensors for one split: story indices X, question
// indices XQ (both left-padded with 0) and one-hot answers Y. Batches are
// built once and shared read-only across trials.
type Batch struct {
	X  [][]int
	XQ [][]int
	Y  [][]float64
}

func (b Batch) Len() int { return len(b.X) }

// MaxLens computes the story and question maximum lengths over all supplied
// splits. Vectorize padding must use lengths computed over train and test
// combined, not per split.
func MaxLens(splits ...[]Story) (storyMaxLen, queryMaxLen int) {
	for _, stories := range splits {
		for _, s := range stories {
			if len(s.Tokens) > storyMaxLen {
				storyMaxLen = len(s.Tokens)
			}
			if len(s.Question) > queryMaxLen {
				queryMaxLen = len(s.Question)
			}
		}
	}
	return storyMaxLen, queryMaxLen
}

// Vectorize maps every story to padded index rows and a one-hot answer row.
// Row order matches story order. Tokens missing from the vocabulary mean the
// vocabulary was built over different splits; that is a programming error and
// fails hard.
func Vectorize(stories []Story, vocab *Vocab, storyMaxLen, queryMaxLen int) (Batch, error) {
	b := Batch{
		X:  make([][]int, 0, len(stories)),
		XQ: make([][]int, 0, len(stories)),
		Y:  make([][]float64, 0, len(stories)),
	}
	for i, s := range stories {
		x, err := indexTokens(s.Tokens, vocab, storyMaxLen)
		if err != nil {
			return Batch{}, fmt.Errorf("story %d: %w", i, err)
		}
		xq, err := indexTokens(s.Question, vocab, queryMaxLen)
		if err != nil {
			return Batch{}, fmt.Errorf("story %d question: %w", i, err)
		}
		ai, ok := vocab.Index(s.Answer)
		if !ok {
			return Batch{}, fmt.Errorf("story %d answer %q: %w", i, s.Answer, ErrUnknownToken)
		}
		y := make([]float64, vocab.Size())
		y[ai] = 1
		b.X = append(b.X, x)
		b.XQ = append(b.XQ, xq)
		b.Y = append(b.Y, y)
	}
	return b, nil
}

func indexTokens(tokens []string, vocab *Vocab, maxLen int) ([]int, error) {
	if len(tokens) > maxLen {
		return nil, fmt.Errorf("sequence length %d exceeds max %d: %w", len(tokens), maxLen, ErrParse)
	}
	row := make([]int, maxLen)
	pad := maxLen - len(tokens)
	for i, tok := range tokens {
		idx, ok := vocab.Index(tok)
		if !ok {
			return nil, fmt.Errorf("token %q: %w", tok, ErrUnknownToken)
		}
		row[pad+i] = idx
	}
	return row, nil
}
