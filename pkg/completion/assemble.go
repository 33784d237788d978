package completion

import (
	"github.com/walteh/gitlab-ls/pkg/candidate"
	"github.com/walteh/gitlab-ls/pkg/lsp/protocol"
)

func itemKind(kind candidate.Kind) protocol.CompletionItemKind {
	if kind == candidate.QuickAction {
		return protocol.CompletionItemKindKeyword
	}
	return protocol.CompletionItemKindConstant
}

// Assemble builds one completion item per candidate, each replacing the
// resolved word with the candidate text.
func Assemble(c *Context) []protocol.CompletionItem {
	rng := protocol.Range{
		Start: protocol.Position{Line: uint32(c.Line), Character: uint32(c.Start)},
		End:   protocol.Position{Line: uint32(c.Line), Character: uint32(c.End)},
	}

	kind := itemKind(c.Kind)

	cands := c.Candidates.Slice()
	items := make([]protocol.CompletionItem, 0, len(cands))
	for _, cand := range cands {
		items = append(items, protocol.CompletionItem{
			Label:         cand.Completion,
			Kind:          kind,
			Detail:        c.Detail,
			Documentation: cand.Description,
			TextEdit: &protocol.TextEdit{
				Range:   rng,
				NewText: cand.Completion,
			},
		})
	}
	return items
}
