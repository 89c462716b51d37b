package corpus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVectorizeRoundTrip(t *testing.T) {
	train := loadSplit(t, trainText)
	test := loadSplit(t, testText)
	v := BuildVocab(train, test)
	storyMaxLen, queryMaxLen := MaxLens(train, test)

	b, err := Vectorize(train, v, storyMaxLen, queryMaxLen)
	require.NoError(t, err)
	require.Equal(t, len(train), b.Len())

	for i, s := range train {
		require.Len(t, b.X[i], storyMaxLen)
		require.Len(t, b.XQ[i], queryMaxLen)

		// Decoding the non-zero suffix must reproduce the tokens.
		var decoded []string
		for _, idx := range b.X[i] {
			if idx == 0 {
				continue
			}
			w, ok := v.Word(idx)
			require.True(t, ok)
			decoded = append(decoded, w)
		}
		require.Equal(t, s.Tokens, decoded)

		// One-hot answer row: exactly one column set, at the answer index.
		ones := 0
		argmax := 0
		for j, y := range b.Y[i] {
			if y == 1 {
				ones++
				argmax = j
			} else {
				require.Zero(t, y)
			}
		}
		require.Equal(t, 1, ones)
		w, ok := v.Word(argmax)
		require.True(t, ok)
		require.Equal(t, s.Answer, w)
	}
}

func TestVectorizeLeftPadding(t *testing.T) {
	train := loadSplit(t, trainText)
	v := BuildVocab(train)
	storyMaxLen, queryMaxLen := MaxLens(train)

	b, err := Vectorize(train, v, storyMaxLen+3, queryMaxLen+2)
	require.NoError(t, err)
	for i, s := range train {
		row := b.X[i]
		pad := len(row) - len(s.Tokens)
		for _, idx := range row[:pad] {
			require.Zero(t, idx)
		}
		for _, idx := range row[pad:] {
			require.NotZero(t, idx)
		}
	}
}

func TestVectorizeUnknownToken(t *testing.T) {
	train := loadSplit(t, trainText)
	other := loadSplit(t, "1 Daniel journeyed to the office.\n2 Where is Daniel?\toffice\t1\n")
	v := BuildVocab(train)
	storyMaxLen, queryMaxLen := MaxLens(train, other)

	_, err := Vectorize(other, v, storyMaxLen, queryMaxLen)
	require.ErrorIs(t, err, ErrUnknownToken)
}

func TestVectorizeSequenceTooLong(t *testing.T) {
	train := loadSplit(t, trainText)
	v := BuildVocab(train)
	_, err := Vectorize(train, v, 2, 2)
	require.Error(t, err)
}
