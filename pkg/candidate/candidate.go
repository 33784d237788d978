package candidate

import (
	"sort"
)

// Candidate is a single completion suggestion. Two candidates are the same
// candidate when both the completion text and the description match.
type Candidate struct {
	Completion  string
	Description string
}

// Set is an unordered, deduplicated collection of candidates.
type Set map[Candidate]struct{}

func NewSet(cands ...Candidate) Set {
	s := make(Set, len(cands))
	for _, c := range cands {
		s.Add(c)
	}
	return s
}

func (s Set) Add(c Candidate) {
	s[c] = struct{}{}
}

func (s Set) Has(c Candidate) bool {
	_, ok := s[c]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Equal reports whether both sets hold exactly the same candidates.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for c := range s {
		if !other.Has(c) {
			return false
		}
	}
	return true
}

// Slice returns the candidates sorted by completion text, then description.
func (s Set) Slice() []Candidate {
	out := make([]Candidate, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Completion != out[j].Completion {
			return out[i].Completion < out[j].Completion
		}
		return out[i].Description < out[j].Description
	})
	return out
}
