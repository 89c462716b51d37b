package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFlattensInOrder(t *testing.T) {
	text := "1 John went to the kitchen.\n" +
		"2 Mary went to the garden.\n" +
		"3 Where is Mary?\tgarden\t2\n"
	stories := loadSplit(t, text)
	require.Len(t, stories, 1)
	require.Equal(t, []string{
		"John", "went", "to", "the", "kitchen", ".",
		"Mary", "went", "to", "the", "garden", ".",
	}, stories[0].Tokens)
}

func TestLoadMaxLengthFilter(t *testing.T) {
	text := "1 John went to the kitchen.\n" +
		"2 Mary went to the garden.\n" +
		"3 Where is Mary?\tgarden\t2\n" +
		"1 Sandra ran.\n" +
		"2 Who ran?\tSandra\t1\n"
	stories, err := Load(strings.NewReader(text), LoadOptions{MaxLength: 8})
	require.NoError(t, err)
	require.Len(t, stories, 1)
	require.Equal(t, "Sandra", stories[0].Answer)
}

func TestLoadAbortsOnMalformedLine(t *testing.T) {
	text := "1 John went to the kitchen.\nbroken\n"
	_, err := Load(strings.NewReader(text), LoadOptions{})
	require.ErrorIs(t, err, ErrParse)
}

func writeTaskFiles(t *testing.T, dir, size, task, trainBody, testBody string) {
	t.Helper()
	base := filepath.Join(dir, size)
	require.NoError(t, os.MkdirAll(base, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, task+"_train.txt"), []byte(trainBody), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, task+"_test.txt"), []byte(testBody), 0o644))
}

func TestBuildTaskContext(t *testing.T) {
	dir := t.TempDir()
	task := "qa1_single-supporting-fact"
	writeTaskFiles(t, dir, "en", task, trainText, testText)

	tc, err := BuildTaskContext(dir, "en", task, LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, task, tc.Task)
	require.Equal(t, 2, tc.Train.Len())
	require.Equal(t, 1, tc.Test.Len())
	require.Len(t, tc.Train.X[0], tc.StoryMaxLen)
	require.Len(t, tc.Train.Y[0], tc.Vocab.Size())
	require.NotEmpty(t, tc.Fingerprint)

	// Distinct token count drives the one-hot width.
	distinct := map[string]struct{}{}
	for _, text := range []string{trainText, testText} {
		stories := loadSplit(t, text)
		for _, s := range stories {
			for _, tok := range s.Tokens {
				distinct[tok] = struct{}{}
			}
			for _, tok := range s.Question {
				distinct[tok] = struct{}{}
			}
			distinct[s.Answer] = struct{}{}
		}
	}
	require.Equal(t, len(distinct)+1, tc.Vocab.Size())
}

func TestBuildTaskContextUnknownTask(t *testing.T) {
	_, err := BuildTaskContext(t.TempDir(), "en", "qa99_nope", LoadOptions{})
	require.ErrorIs(t, err, ErrUnknownTask)
}
