package corpus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var miniStory = []string{
	"1 John is in the kitchen.",
	"2 Where is John?\tkitchen\t1",
	"3 Mary went to the garden.",
	"4 Where is Mary?\tgarden\t3",
	"1 Sandra took the milk.",
	"2 Who has the milk?\tSandra\t1",
}

func TestParseStories(t *testing.T) {
	records, err := ParseStories(miniStory[:2], false)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	require.Equal(t, [][]string{{"John", "is", "in", "the", "kitchen", "."}}, rec.Sentences)
	require.Equal(t, []string{"Where", "is", "John", "?"}, rec.Question)
	require.Equal(t, "kitchen", rec.Answer)
	require.Equal(t, []int{1}, rec.Supporting)
}

func TestParseStoriesIDRestart(t *testing.T) {
	records, err := ParseStories(miniStory, false)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// The second story must not see the first story's sentences.
	last := records[2]
	require.Equal(t, [][]string{{"Sandra", "took", "the", "milk", "."}}, last.Sentences)
	require.Equal(t, "Sandra", last.Answer)
}

func TestParseStoriesOnlySupporting(t *testing.T) {
	lines := []string{
		"1 John is in the kitchen.",
		"2 Mary went to the garden.",
		"3 Where is Mary?\tgarden\t2",
	}
	records, err := ParseStories(lines, true)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, [][]string{{"Mary", "went", "to", "the", "garden", "."}}, records[0].Sentences)
}

func TestParseStoriesQuestionSlotAlignment(t *testing.T) {
	// A question occupies an id slot, so supporting ids after a question
	// line still resolve to the right sentence.
	lines := []string{
		"1 John is in the kitchen.",
		"2 Where is John?\tkitchen\t1",
		"3 Mary went to the garden.",
		"4 Where is Mary?\tgarden\t3",
	}
	records, err := ParseStories(lines, true)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, [][]string{{"Mary", "went", "to", "the", "garden", "."}}, records[1].Sentences)
}

func TestParseStoriesUnterminatedStoryDiscarded(t *testing.T) {
	lines := []string{
		"1 John is in the kitchen.",
		"1 Sandra took the milk.",
		"2 Who has the milk?\tSandra\t1",
	}
	records, err := ParseStories(lines, false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Sandra", records[0].Answer)
}

func TestParseStoriesErrors(t *testing.T) {
	cases := map[string][]string{
		"missing separator":       {"hello"},
		"non-integer id":          {"one John is in the kitchen."},
		"question missing fields": {"1 Where is John?\tkitchen"},
		"supporting out of range": {"1 John is in the kitchen.", "2 Where is John?\tkitchen\t7"},
		"non-integer supporting":  {"1 John is in the kitchen.", "2 Where is John?\tkitchen\tx"},
		"supporting id below one": {"1 John is in the kitchen.", "2 Where is John?\tkitchen\t0"},
	}
	// Supporting ids are validated in both modes, so the whole table runs
	// with onlySupporting off.
	for name, lines := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseStories(lines, false)
			require.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestParseStoriesOnlySupportingZeroMatches(t *testing.T) {
	lines := []string{"1 What color is the sky?\tblue\t"}
	records, err := ParseStories(lines, true)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Empty(t, records[0].Sentences)
}
