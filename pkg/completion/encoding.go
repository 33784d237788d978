package completion

import (
	"unicode/utf16"

	"github.com/walteh/gitlab-ls/pkg/lsp/protocol"
)

func unitLen(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// RuneOffset converts a utf-16 offset on line to a rune offset. An offset
// inside a surrogate pair lands on the rune it splits. Offsets past the end
// keep their excess so range checks still reject them.
func RuneOffset(line string, units int) int {
	runes, seen := 0, 0
	for _, r := range line {
		n := unitLen(r)
		if seen+n > units {
			return runes
		}
		seen += n
		runes++
	}
	return runes + units - seen
}

// UTF16Offset converts a rune offset on line to utf-16 code units.
func UTF16Offset(line string, runes int) int {
	units, i := 0, 0
	for _, r := range line {
		if i >= runes {
			return units
		}
		units += unitLen(r)
		i++
	}
	return units + runes - i
}

// ResolvePosition is Resolve for a position counted in enc. The returned
// Start and End are counted in enc as well.
func ResolvePosition(content string, pos protocol.Position, enc protocol.PositionEncodingKind, src Source) (*Context, bool, error) {
	line, character := int(pos.Line), int(pos.Character)

	if enc == protocol.PositionEncodingUTF32 {
		return Resolve(content, line, character, src)
	}

	text, err := LineAt(content, line)
	if err != nil {
		return nil, false, err
	}

	ctx, ok, err := Resolve(content, line, RuneOffset(text, character), src)
	if err != nil || !ok {
		return ctx, ok, err
	}

	ctx.Start = UTF16Offset(text, ctx.Start)
	ctx.End = UTF16Offset(text, ctx.End)
	return ctx, true, nil
}
