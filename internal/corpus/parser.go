package corpus

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one question emitted by the parser: the sentences making up the
// substory, the tokenized question, the answer token and the 1-based ids of
// the supporting sentences.
type Record struct {
	Sentences  [][]string
	Question   []string
	Answer     string
	Supporting []int
}

// ParseStories consumes the numbered-line bAbI format. A line whose id is 1
// starts a new story; a line containing a tab is a question line and emits a
// record. With onlySupporting set, substories keep only the sentences named
// by the question's supporting ids.
func ParseStories(lines []string, onlySupporting bool) ([]Record, error) {
	var story [][]string
	var records []Record
	for n, raw := range lines {
		line := strings.TrimRight(raw, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		idText, rest, found := strings.Cut(line, " ")
		if !found {
			return nil, fmt.Errorf("line %d: missing id separator: %w", n+1, ErrParse)
		}
		id, err := strconv.Atoi(idText)
		if err != nil {
			return nil, fmt.Errorf("line %d: non-integer id %q: %w", n+1, idText, ErrParse)
		}
		if id == 1 {
			story = nil
		}
		if !strings.Contains(rest, "\t") {
			story = append(story, Tokenize(rest))
			continue
		}

		parts := strings.SplitN(rest, "\t", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("line %d: question line has %d fields, want 3: %w", n+1, len(parts), ErrParse)
		}
		question, answer, supText := parts[0], parts[1], parts[2]
		supporting, err := parseSupporting(supText)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}

		for _, sid := range supporting {
			if sid < 1 || sid > len(story) {
				return nil, fmt.Errorf("line %d: supporting id %d outside story of %d sentences: %w", n+1, sid, len(story), ErrParse)
			}
		}

		var substory [][]string
		if onlySupporting {
			for _, sid := range supporting {
				substory = append(substory, story[sid-1])
			}
		} else {
			for _, sentence := range story {
				if len(sentence) > 0 {
					substory = append(substory, sentence)
				}
			}
		}
		records = append(records, Record{
			Sentences:  substory,
			Question:   Tokenize(question),
			Answer:     strings.TrimSpace(answer),
			Supporting: supporting,
		})
		// Question lines occupy an id slot; keep positions aligned for
		// later supporting-id lookups within the same story.
		story = append(story, nil)
	}
	return records, nil
}

func parseSupporting(text string) ([]int, error) {
	fields := strings.Fields(text)
	ids := make([]int, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("non-integer supporting id %q: %w", f, ErrParse)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
