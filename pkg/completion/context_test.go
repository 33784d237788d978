package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/gitlab-ls/pkg/candidate"
	"gitlab.com/tozd/go/errors"
	"pgregory.net/rapid"
)

type staticSource map[candidate.Kind]candidate.Set

func (s staticSource) Get(kind candidate.Kind) candidate.Set {
	if kind == candidate.QuickAction {
		return candidate.QuickActions()
	}
	if set, ok := s[kind]; ok {
		return set
	}
	return candidate.NewSet()
}

var testSource = staticSource{
	candidate.Label:     candidate.NewSet(candidate.Candidate{Completion: "~bug "}),
	candidate.Member:    candidate.NewSet(candidate.Candidate{Completion: "@bar ", Description: "Bar"}),
	candidate.Milestone: candidate.NewSet(candidate.Candidate{Completion: "%v1 "}),
}

func TestFindWord(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		index       int
		wantStart   int
		wantEnd     int
		wantTrigger rune
		wantHas     bool
	}{
		{
			name:        "middle of word",
			line:        "foo @bar baz",
			index:       5,
			wantStart:   4,
			wantEnd:     8,
			wantTrigger: '@',
			wantHas:     true,
		},
		{
			name:        "on the trigger",
			line:        "foo @bar baz",
			index:       4,
			wantStart:   4,
			wantEnd:     8,
			wantTrigger: '@',
			wantHas:     true,
		},
		{
			name:        "no boundaries spans whole line",
			line:        "~label",
			index:       3,
			wantStart:   0,
			wantEnd:     6,
			wantTrigger: '~',
			wantHas:     true,
		},
		{
			name:        "tab boundary",
			line:        "a\t%mile\tb",
			index:       3,
			wantStart:   2,
			wantEnd:     7,
			wantTrigger: '%',
			wantHas:     true,
		},
		{
			name:        "index at end of line",
			line:        "foo @",
			index:       5,
			wantStart:   4,
			wantEnd:     5,
			wantTrigger: '@',
			wantHas:     true,
		},
		{
			name:        "index at end after space",
			line:        "foo ",
			index:       4,
			wantStart:   4,
			wantEnd:     4,
			wantHas:     false,
		},
		{
			name:        "empty line",
			line:        "",
			index:       0,
			wantStart:   0,
			wantEnd:     0,
			wantHas:     false,
		},
		{
			name:        "multibyte runes are counted once",
			line:        "ünï @bar",
			index:       5,
			wantStart:   4,
			wantEnd:     8,
			wantTrigger: '@',
			wantHas:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindWord(tt.line, tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, got.Start, "start")
			assert.Equal(t, tt.wantEnd, got.End, "end")
			assert.Equal(t, tt.wantHas, got.HasTrigger, "has trigger")
			if tt.wantHas {
				assert.Equal(t, string(tt.wantTrigger), string(got.Trigger), "trigger")
			}
		})
	}
}

func TestFindWordIndexPastEnd(t *testing.T) {
	_, err := FindWord("abc", 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCharacterOutOfRange))
}

func TestLookupIndex(t *testing.T) {
	assert.Equal(t, 0, LookupIndex(0))
	assert.Equal(t, 0, LookupIndex(1))
	assert.Equal(t, 5, LookupIndex(6))
}

func TestLineAt(t *testing.T) {
	content := "first\r\nsecond\nthird"

	got, err := LineAt(content, 0)
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	got, err = LineAt(content, 2)
	require.NoError(t, err)
	assert.Equal(t, "third", got)

	_, err = LineAt(content, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLineOutOfRange))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		line      int
		character int
		wantOk    bool
		wantKind  candidate.Kind
		wantStart int
		wantEnd   int
		wantLen   int
	}{
		{
			name:      "member after @b",
			content:   "foo @bar baz",
			line:      0,
			character: 6,
			wantOk:    true,
			wantKind:  candidate.Member,
			wantStart: 4,
			wantEnd:   8,
			wantLen:   1,
		},
		{
			name:      "label just typed on second line",
			content:   "title\nsome ~",
			line:      1,
			character: 6,
			wantOk:    true,
			wantKind:  candidate.Label,
			wantStart: 5,
			wantEnd:   6,
			wantLen:   1,
		},
		{
			name:      "milestone",
			content:   "%v",
			line:      0,
			character: 2,
			wantOk:    true,
			wantKind:  candidate.Milestone,
			wantStart: 0,
			wantEnd:   2,
			wantLen:   1,
		},
		{
			name:      "quick action",
			content:   "/as",
			line:      0,
			character: 1,
			wantOk:    true,
			wantKind:  candidate.QuickAction,
			wantStart: 0,
			wantEnd:   3,
			wantLen:   8,
		},
		{
			name:      "cursor at column zero",
			content:   "@someone",
			line:      0,
			character: 0,
			wantOk:    true,
			wantKind:  candidate.Member,
			wantStart: 0,
			wantEnd:   8,
			wantLen:   1,
		},
		{
			name:      "plain word declines",
			content:   "hello world",
			line:      0,
			character: 3,
			wantOk:    false,
		},
		{
			name:      "issue reference declines",
			content:   "see #12",
			line:      0,
			character: 6,
			wantOk:    false,
		},
		{
			name:      "empty line declines",
			content:   "abc\n\ndef",
			line:      1,
			character: 0,
			wantOk:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Resolve(tt.content, tt.line, tt.character, testSource)
			require.NoError(t, err)
			require.Equal(t, tt.wantOk, ok)
			if !tt.wantOk {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantKind.Detail(), got.Detail)
			assert.Equal(t, tt.line, got.Line)
			assert.Equal(t, tt.wantStart, got.Start)
			assert.Equal(t, tt.wantEnd, got.End)
			assert.Equal(t, tt.wantLen, got.Candidates.Len())
		})
	}
}

func TestResolveContractViolations(t *testing.T) {
	_, _, err := Resolve("one line", 1, 0, testSource)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLineOutOfRange))

	_, _, err = Resolve("ab", 0, 10, testSource)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCharacterOutOfRange))
}

func TestResolveProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		line := rapid.StringMatching(`[a-z@~%/ \t]{0,24}`).Draw(t, "line")
		runes := []rune(line)
		character := rapid.IntRange(0, len(runes)+1).Draw(t, "character")

		got, ok, err := Resolve(line, 0, character, testSource)
		if err != nil {
			t.Fatalf("resolve %q at %d: %v", line, character, err)
		}
		if !ok {
			return
		}

		if got.Start < 0 || got.Start > got.End || got.End > len(runes) {
			t.Fatalf("bad range [%d,%d) on %q", got.Start, got.End, line)
		}
		for _, r := range runes[got.Start:got.End] {
			if r == ' ' || r == '\t' {
				t.Fatalf("range [%d,%d) of %q crosses a boundary", got.Start, got.End, line)
			}
		}
		if got.Start > 0 && !isBoundary(runes[got.Start-1]) {
			t.Fatalf("word on %q does not start after a boundary", line)
		}
		if got.End < len(runes) && !isBoundary(runes[got.End]) {
			t.Fatalf("word on %q does not end before a boundary", line)
		}
		if runes[got.Start] != got.Kind.Sigil() {
			t.Fatalf("trigger %q does not match kind %s", runes[got.Start], got.Kind)
		}
	})
}
