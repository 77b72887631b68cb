package link

import (
	"sort"
	"strings"

	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/textutil"
)

// MergeAddresses groups consecutive address-line spans into multi-line
// ADDRESS_BLOCK spans. Each city-state-ZIP line anchors a block; lines
// directly above it join, stepping over at most one blank line per gap.
// A block needs at least two lines; lone lines stay as they were. The
// merged span carries the per-line kinds, texts, separators, and ZIP kind
// in its attributes so the generator can rebuild the block line by line.
func MergeAddresses(text string, spans []entity.Span, lines *textutil.LineIndex) []entity.Span {
	if lines == nil {
		lines = textutil.NewLineIndex(text)
	}

	// Address lines by line number. Detector output has one span per
	// matching line, so collisions cannot arise from the address detector
	// itself; a duplicate from another source keeps the first.
	byLine := make(map[int]int)
	for i, s := range spans {
		if s.Label == entity.LabelAddressBlock && s.AttrString("kind") != "" {
			n := lines.LineOf(s.Start)
			if _, ok := byLine[n]; !ok {
				byLine[n] = i
			}
		}
	}

	blank := func(n int) bool {
		return n >= 0 && n < lines.Count() && strings.TrimSpace(lines.Line(n)) == ""
	}

	consumed := make(map[int]bool)
	var blocks []entity.Span
	for i, s := range spans {
		if s.AttrString("kind") != entity.AddrKindCityStateZip || consumed[i] {
			continue
		}
		anchor := lines.LineOf(s.Start)

		members := []int{i}
		hadBlank := false
		cur := anchor
		for {
			if j, ok := byLine[cur-1]; ok && !consumed[j] && j != i {
				members = append(members, j)
				cur--
				continue
			}
			if j, ok := byLine[cur-2]; ok && blank(cur-1) && !consumed[j] && j != i {
				members = append(members, j)
				hadBlank = true
				cur -= 2
				continue
			}
			break
		}
		if len(members) < 2 {
			continue
		}

		// Collected bottom-up; emit top-down.
		sort.Slice(members, func(a, b int) bool {
			return spans[members[a]].Start < spans[members[b]].Start
		})

		addrLines := make([]entity.AddressLine, len(members))
		conf := 0.0
		for k, idx := range members {
			sp := spans[idx]
			eol := ""
			if k+1 < len(members) {
				eol = text[sp.End:spans[members[k+1]].Start]
			}
			addrLines[k] = entity.AddressLine{
				Kind: sp.AttrString("kind"),
				Text: sp.Text,
				EOL:  eol,
				ZIP:  sp.AttrString("zip"),
			}
			if sp.Confidence > conf {
				conf = sp.Confidence
			}
			consumed[idx] = true
		}

		first, last := spans[members[0]], spans[members[len(members)-1]]
		attrs := map[string]any{
			"lines":                  addrLines,
			"zip":                    s.AttrString("zip"),
			"had_blank_line_between": hadBlank,
		}
		block, err := entity.New(first.Start, last.End, text[first.Start:last.End],
			entity.LabelAddressBlock, "address_merge", conf, attrs)
		if err != nil {
			continue
		}
		blocks = append(blocks, block)
	}

	out := make([]entity.Span, 0, len(spans)+len(blocks))
	for i, s := range spans {
		if !consumed[i] {
			out = append(out, s)
		}
	}
	sort.SliceStable(blocks, func(a, b int) bool { return blocks[a].Start < blocks[b].Start })
	out = append(out, blocks...)
	return out
}
