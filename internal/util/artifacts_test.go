package util

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// No writer may leave its temp file behind, success or not.
func requireNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), "tmp-"), "leftover temp file %s", e.Name())
	}
}

func TestWriteTextAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "best.txt")

	require.NoError(t, WriteTextAtomic(path, "2032764"))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "2032764", string(b))

	// Overwrites replace the file whole.
	require.NoError(t, WriteTextAtomic(path, "516123"))
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "516123", string(b))

	requireNoTempFiles(t, filepath.Dir(path))
}

func TestWriteJSONAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "best.json")

	in := map[string]any{"task": "qa1_single-supporting-fact", "score": 0.75}
	require.NoError(t, WriteJSONAtomic(path, in))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, "qa1_single-supporting-fact", out["task"])
	require.Equal(t, 0.75, out["score"])

	requireNoTempFiles(t, dir)
}

func TestWriteJSONLinesAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs", "trials.jsonl")

	rows := []any{
		map[string]any{"score": 0.1},
		map[string]any{"score": 0.2},
		map[string]any{"score": 0.3},
	}
	require.NoError(t, WriteJSONLinesAtomic(path, rows))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		var row map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &row))
	}

	requireNoTempFiles(t, filepath.Dir(path))
}
