package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Story is a loaded record with its substory flattened into one token
// sequence, sentence order preserved.
type Story struct {
	Tokens     []string
	Question   []string
	Answer     string
	Supporting []int
}

type LoadOptions struct {
	OnlySupporting bool
	// MaxLength drops stories whose flattened length is >= MaxLength.
	// Zero disables the filter.
	MaxLength int
}

// Load reads one split (train or test) from r and returns its stories.
func Load(r io.Reader, opts LoadOptions) ([]Story, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	records, err := ParseStories(lines, opts.OnlySupporting)
	if err != nil {
		return nil, err
	}

	stories := make([]Story, 0, len(records))
	for _, rec := range records {
		n := 0
		for _, sentence := range rec.Sentences {
			n += len(sentence)
		}
		if opts.MaxLength > 0 && n >= opts.MaxLength {
			continue
		}
		tokens := make([]string, 0, n)
		for _, sentence := range rec.Sentences {
			tokens = append(tokens, sentence...)
		}
		stories = append(stories, Story{
			Tokens:     tokens,
			Question:   rec.Question,
			Answer:     rec.Answer,
			Supporting: rec.Supporting,
		})
	}
	return stories, nil
}

func LoadFile(path string, opts LoadOptions) ([]Story, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file: %w", err)
	}
	defer f.Close()
	stories, err := Load(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return stories, nil
}
