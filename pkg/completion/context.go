package completion

import (
	"strings"

	"github.com/walteh/gitlab-ls/pkg/candidate"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrLineOutOfRange      = errors.Base("line out of range")
	ErrCharacterOutOfRange = errors.Base("character out of range")
)

// Source supplies the candidates for a kind.
type Source interface {
	Get(kind candidate.Kind) candidate.Set
}

// Context is the result of resolving a cursor position: which kind of
// reference is being typed and the span of the word that will be replaced.
type Context struct {
	Kind       candidate.Kind
	Candidates candidate.Set
	Detail     string

	// Line is the zero based line of the cursor. Start and End are offsets
	// on that line, End exclusive, counted in runes by Resolve and in the
	// requested encoding by ResolvePosition.
	Line  int
	Start int
	End   int
}

// Word is the span of the word around a lookup index on a single line.
type Word struct {
	Start   int
	End     int
	Trigger rune
	// HasTrigger is false when the word is empty at the end of the line.
	HasTrigger bool
}

func isBoundary(r rune) bool {
	return r == ' ' || r == '\t'
}

// LineAt returns the zero based line of content, without its line ending.
func LineAt(content string, line int) (string, error) {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return "", errors.Errorf("line %d of %d: %w", line, len(lines), ErrLineOutOfRange)
	}
	return strings.TrimSuffix(lines[line], "\r"), nil
}

// LookupIndex is where the trigger character is expected: one position
// behind the cursor, floored at the start of the line.
func LookupIndex(character int) int {
	if character < 1 {
		return 0
	}
	return character - 1
}

// FindWord locates the space/tab delimited word that contains index.
func FindWord(line string, index int) (Word, error) {
	runes := []rune(line)
	if index > len(runes) {
		return Word{}, errors.Errorf("index %d on line of length %d: %w", index, len(runes), ErrCharacterOutOfRange)
	}

	before, after := runes[:index], runes[index:]

	start := 0
	for i := len(before) - 1; i >= 0; i-- {
		if isBoundary(before[i]) {
			start = i + 1
			break
		}
	}

	end := len(after)
	for i, r := range after {
		if isBoundary(r) {
			end = i
			break
		}
	}

	word := Word{Start: start, End: index + end}
	if start < len(runes) {
		word.Trigger = runes[start]
		word.HasTrigger = true
	}
	return word, nil
}

// Resolve works out what should be completed at (line, character) of
// content. ok is false when the word under the cursor does not start with a
// trigger character.
func Resolve(content string, line, character int, src Source) (ctx *Context, ok bool, err error) {
	text, err := LineAt(content, line)
	if err != nil {
		return nil, false, err
	}

	word, err := FindWord(text, LookupIndex(character))
	if err != nil {
		return nil, false, err
	}

	if !word.HasTrigger {
		return nil, false, nil
	}

	kind, ok := candidate.KindForTrigger(word.Trigger)
	if !ok {
		return nil, false, nil
	}

	return &Context{
		Kind:       kind,
		Candidates: src.Get(kind),
		Detail:     kind.Detail(),
		Line:       line,
		Start:      word.Start,
		End:        word.End,
	}, true, nil
}
