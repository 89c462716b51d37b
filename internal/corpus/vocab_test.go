package corpus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func loadSplit(t *testing.T, text string) []Story {
	t.Helper()
	stories, err := Load(strings.NewReader(text), LoadOptions{})
	require.NoError(t, err)
	return stories
}

const trainText = "1 John is in the kitchen.\n" +
	"2 Where is John?\tkitchen\t1\n" +
	"1 Mary went to the garden.\n" +
	"2 Where is Mary?\tgarden\t1\n"

const testText = "1 Sandra is in the kitchen.\n" +
	"2 Where is Sandra?\tkitchen\t1\n"

func TestBuildVocabNeverAssignsZero(t *testing.T) {
	train := loadSplit(t, trainText)
	test := loadSplit(t, testText)
	v := BuildVocab(train, test)

	for i := 1; i <= v.Len(); i++ {
		tok, ok := v.Word(i)
		require.True(t, ok)
		idx, ok := v.Index(tok)
		require.True(t, ok)
		require.Equal(t, i, idx)
		require.NotZero(t, idx)
	}
	_, ok := v.Word(0)
	require.False(t, ok)
	require.Equal(t, v.Len()+1, v.Size())
}

func TestBuildVocabDeterministic(t *testing.T) {
	train := loadSplit(t, trainText)
	test := loadSplit(t, testText)

	a := BuildVocab(train, test)
	b := BuildVocab(train, test)
	require.Equal(t, a.Len(), b.Len())
	for i := 1; i <= a.Len(); i++ {
		wa, _ := a.Word(i)
		wb, _ := b.Word(i)
		require.Equal(t, wa, wb)
	}
}

func TestBuildVocabCoversAnswers(t *testing.T) {
	// Answers must be in the vocabulary even when they never appear in a
	// story or question of the same split.
	train := loadSplit(t, "1 John grabbed the ball.\n2 What did John grab?\tball\t1\n")
	v := BuildVocab(train)
	_, ok := v.Index("ball")
	require.True(t, ok)
}

func TestBuildVocabSortedOrder(t *testing.T) {
	train := loadSplit(t, trainText)
	v := BuildVocab(train)
	prev := ""
	for i := 1; i <= v.Len(); i++ {
		w, _ := v.Word(i)
		require.Greater(t, w, prev)
		prev = w
	}
}
