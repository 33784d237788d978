package gitlab

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/walteh/gitlab-ls/pkg/candidate"
	"gitlab.com/tozd/go/errors"
)

var ErrNotArray = errors.Base("response is not a json array")

// field names per resource, see
// https://docs.gitlab.com/ee/api/labels.html#list-labels
// https://docs.gitlab.com/ee/api/milestones.html
// https://docs.gitlab.com/ee/api/members.html#list-all-members-of-a-group-or-project
type fieldMapping struct {
	value       string
	description string
	dropExpired bool
}

func mappingFor(kind candidate.Kind) (fieldMapping, error) {
	switch kind {
	case candidate.Label:
		return fieldMapping{value: "name", description: "description"}, nil
	case candidate.Member:
		return fieldMapping{value: "username", description: "name"}, nil
	case candidate.Milestone:
		return fieldMapping{value: "title", description: "description", dropExpired: true}, nil
	default:
		return fieldMapping{}, errors.Errorf("cannot normalize %s", kind)
	}
}

// Normalize turns a raw API response body into completion candidates.
// Records that are not objects or lack a string value field are skipped.
func Normalize(kind candidate.Kind, body []byte) (candidate.Set, error) {
	mapping, err := mappingFor(kind)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, errors.New("decoding response: invalid json")
	}

	res := gjson.ParseBytes(body)
	if !res.IsArray() {
		return nil, errors.Errorf("decoding response: %w", ErrNotArray)
	}

	out := candidate.NewSet()
	res.ForEach(func(_, record gjson.Result) bool {
		if c, ok := normalizeRecord(kind, mapping, record); ok {
			out.Add(c)
		}
		return true
	})

	return out, nil
}

func normalizeRecord(kind candidate.Kind, mapping fieldMapping, record gjson.Result) (candidate.Candidate, bool) {
	if !record.IsObject() {
		return candidate.Candidate{}, false
	}

	if mapping.dropExpired && record.Get("expired").Type == gjson.True {
		return candidate.Candidate{}, false
	}

	value := record.Get(mapping.value)
	if value.Type != gjson.String {
		return candidate.Candidate{}, false
	}

	var description string
	if desc := record.Get(mapping.description); desc.Type == gjson.String {
		description = desc.Str
	}

	return candidate.Candidate{
		Completion:  FormatCompletion(kind.Sigil(), value.Str),
		Description: description,
	}, true
}

// FormatCompletion renders value as it is typed in GitLab markdown: the
// sigil, the value (quoted when it contains a space) and a trailing space.
func FormatCompletion(sigil rune, value string) string {
	var b strings.Builder
	b.WriteRune(sigil)
	if strings.Contains(value, " ") {
		b.WriteByte('"')
		b.WriteString(value)
		b.WriteByte('"')
	} else {
		b.WriteString(value)
	}
	b.WriteByte(' ')
	return b.String()
}
