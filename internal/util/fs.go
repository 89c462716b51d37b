package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// SHA256HexOfFiles fingerprints a set of files in the order given. Used to tie
// search artifacts to the exact corpus files they were produced from.
func SHA256HexOfFiles(paths ...string) (string, error) {
	h := sha256.New()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return "", fmt.Errorf("open %s for hash: %w", p, err)
		}
		if _, err := io.Copy(h, f); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("hash %s: %w", p, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", p, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func SafeJoin(root, name string) string {
	return filepath.Join(root, filepath.Base(name))
}
