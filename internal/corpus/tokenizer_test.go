package corpus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("Bob dropped the apple. Where is the apple?")
	want := []string{"Bob", "dropped", "the", "apple", ".", "Where", "is", "the", "apple", "?"}
	require.Equal(t, want, got)
}

func TestTokenizeIdempotent(t *testing.T) {
	first := Tokenize("Mary moved to the bathroom.")
	second := Tokenize(strings.Join(first, " "))
	require.Equal(t, first, second)
}

func TestTokenizeEmptyAndWhitespace(t *testing.T) {
	require.Empty(t, Tokenize(""))
	require.Empty(t, Tokenize("   \t  "))
}

func TestTokenizePunctuationRuns(t *testing.T) {
	// Adjacent punctuation is one run, and whitespace inside a run does not
	// split it; only the run's edges are trimmed.
	require.Equal(t, []string{"true", "?!"}, Tokenize("true?!"))
	require.Equal(t, []string{"Is", "it", "true", "?  !"}, Tokenize("Is it true?  !"))
}
