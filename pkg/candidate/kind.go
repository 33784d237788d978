package candidate

import (
	"gitlab.com/tozd/go/errors"
)

// Kind identifies which category of GitLab data a candidate refers to.
type Kind int

const (
	Label Kind = iota + 1
	Member
	Milestone
	QuickAction
)

// Fetchable lists the kinds that are loaded from the GitLab API.
var Fetchable = []Kind{Label, Milestone, Member}

func (k Kind) String() string {
	switch k {
	case Label:
		return "labels"
	case Member:
		return "members"
	case Milestone:
		return "milestones"
	case QuickAction:
		return "quick actions"
	default:
		return "unknown"
	}
}

// Sigil is the character that introduces a reference of this kind in text.
func (k Kind) Sigil() rune {
	switch k {
	case Label:
		return '~'
	case Member:
		return '@'
	case Milestone:
		return '%'
	case QuickAction:
		return '/'
	default:
		return 0
	}
}

// Detail is the human readable label shown next to each completion item.
func (k Kind) Detail() string {
	switch k {
	case Label:
		return "label"
	case Member:
		return "username"
	case Milestone:
		return "milestone"
	case QuickAction:
		return "quick action"
	default:
		return ""
	}
}

// IsFetchable reports whether candidates of this kind come from the API.
func (k Kind) IsFetchable() bool {
	switch k {
	case Label, Member, Milestone:
		return true
	default:
		return false
	}
}

// APIPath is the project sub-resource that lists this kind.
func (k Kind) APIPath() (string, error) {
	switch k {
	case Label:
		return "labels", nil
	case Member:
		return "members/all", nil
	case Milestone:
		return "milestones", nil
	default:
		return "", errors.Errorf("kind %q has no api path", k)
	}
}

// KindForTrigger maps a trigger character to the kind it completes.
func KindForTrigger(r rune) (Kind, bool) {
	switch r {
	case '/':
		return QuickAction, true
	case '@':
		return Member, true
	case '%':
		return Milestone, true
	case '~':
		return Label, true
	default:
		return 0, false
	}
}

// TriggerCharacters returns the characters advertised to the client.
func TriggerCharacters() []string {
	return []string{"/", "@", "%", "~"}
}
