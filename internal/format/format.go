// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format turns answer text into a sectioned layout of headers,
// numbered items, bullets and paragraphs.
//
// Format is pure and cheap enough to run on every frame of the word reveal,
// so it is applied identically to partial and final answers.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ItemKind classifies a line inside a section.
type ItemKind int

const (
	// Plain is a paragraph fragment.
	Plain ItemKind = iota
	// Ordered is a numbered item such as "2. Do B".
	Ordered
	// Bullet is an item starting with "•" or "*".
	Bullet
)

func (k ItemKind) String() string {
	switch k {
	case Ordered:
		return "ordered"
	case Bullet:
		return "bullet"
	default:
		return "plain"
	}
}

// Item is one rendered line.
type Item struct {
	Kind   ItemKind
	Number string // Ordered only, without the trailing period
	Text   string
	Raw    string // trimmed source line
}

// Section is an optional header followed by items.
type Section struct {
	Header string
	Items  []Item
}

// Layout is the formatted answer. An empty Layout renders nothing.
type Layout struct {
	Sections []Section
}

var (
	headerRe  = regexp.MustCompile(`[^:]:$`)
	listRe    = regexp.MustCompile(`^(\d+\.|[•*])\s+`)
	orderedRe = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)
	bulletRe  = regexp.MustCompile(`^[•*]\s*(.*)$`)
	lineRe    = regexp.MustCompile(`\r?\n`)
)

// Format splits text into sections.
//
// A line ending in a colon (preceded by something other than a colon) starts
// a new section as its header. List items join the current section. A
// paragraph joins the current section only while that section is still
// empty; otherwise it opens a new headerless section.
func Format(text string) Layout {
	var (
		sections []Section
		current  Section
	)

	hasContent := func(s Section) bool {
		return s.Header != "" || len(s.Items) > 0
	}

	for _, line := range lineRe.Split(text, -1) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch {
		case headerRe.MatchString(trimmed):
			if hasContent(current) {
				sections = append(sections, current)
			}
			current = Section{Header: trimmed}

		case listRe.MatchString(trimmed):
			current.Items = append(current.Items, classify(trimmed))

		default:
			if hasContent(current) {
				sections = append(sections, current)
				current = Section{Items: []Item{classify(trimmed)}}
			} else {
				current.Items = append(current.Items, classify(trimmed))
			}
		}
	}
	if hasContent(current) {
		sections = append(sections, current)
	}

	return Layout{Sections: sections}
}

// classify types a trimmed line. Paragraphs that happen to look like list
// items are typed the same way, matching how they are displayed.
func classify(line string) Item {
	if m := orderedRe.FindStringSubmatch(line); m != nil {
		return Item{Kind: Ordered, Number: m[1], Text: m[2], Raw: line}
	}
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		return Item{Kind: Bullet, Text: m[1], Raw: line}
	}
	return Item{Kind: Plain, Text: line, Raw: line}
}

// Empty reports whether the layout has no sections.
func (l Layout) Empty() bool {
	return len(l.Sections) == 0
}

// Markdown renders the layout as Markdown: headers in bold, bullets as "-"
// items and paragraphs as plain lines, all escaped so the text is never
// re-read as Markdown syntax. A run of ordered items becomes a numbered list
// when its numbers count up by one, which renderers preserve; otherwise each
// item is written as its own "N\." paragraph so the original numbers
// survive. Sections are separated by a blank line.
func (l Layout) Markdown() string {
	var b strings.Builder
	for i, sec := range l.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		if sec.Header != "" {
			fmt.Fprintf(&b, "**%s**\n\n", escapeInline(sec.Header))
		}
		asList := orderedRuns(sec.Items)
		for j, it := range sec.Items {
			// paragraphs and a change of list type need a blank line to stay
			// separate in Markdown
			if j > 0 && needsBreak(sec.Items[j-1], asList[j-1], it, asList[j]) {
				b.WriteString("\n")
			}
			switch {
			case it.Kind == Ordered && asList[j]:
				fmt.Fprintf(&b, "%s. %s\n", it.Number, escapeMarkdown(it.Text))
			case it.Kind == Ordered:
				fmt.Fprintf(&b, "%s\\. %s\n", it.Number, escapeInline(it.Text))
			case it.Kind == Bullet:
				fmt.Fprintf(&b, "- %s\n", escapeMarkdown(it.Text))
			default:
				b.WriteString(escapeMarkdown(it.Text) + "\n")
			}
		}
	}
	return b.String()
}

func needsBreak(prev Item, prevList bool, cur Item, curList bool) bool {
	return isParagraph(prev, prevList) || isParagraph(cur, curList) || prev.Kind != cur.Kind
}

func isParagraph(it Item, asList bool) bool {
	return it.Kind == Plain || (it.Kind == Ordered && !asList)
}

// maxListStart is the longest start number CommonMark accepts.
const maxListStart = 9

// orderedRuns marks the ordered items that can be rendered as list items:
// every item of a maximal run whose numbers count up by one.
func orderedRuns(items []Item) []bool {
	out := make([]bool, len(items))
	for start := 0; start < len(items); {
		if items[start].Kind != Ordered {
			start++
			continue
		}
		end := start
		for end < len(items) && items[end].Kind == Ordered {
			end++
		}
		consecutive := true
		first, err := strconv.Atoi(items[start].Number)
		if err != nil || len(items[start].Number) > maxListStart {
			consecutive = false
		}
		for k := start; consecutive && k < end; k++ {
			n, err := strconv.Atoi(items[k].Number)
			consecutive = err == nil && n == first+(k-start)
		}
		for k := start; k < end; k++ {
			out[k] = consecutive
		}
		start = end
	}
	return out
}

var (
	inlineEscaper = strings.NewReplacer(
		`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`,
		`[`, `\[`, `]`, `\]`, `<`, `\<`, `~`, `\~`,
	)
	leadingMarkerRe = regexp.MustCompile(`^[#>+=|-]`)
	leadingNumberRe = regexp.MustCompile(`^(\d+)([.)])`)
)

func escapeInline(s string) string {
	return inlineEscaper.Replace(s)
}

// escapeMarkdown escapes inline syntax and any marker at the start of the
// line that would open a heading, quote, list, table or setext underline.
func escapeMarkdown(s string) string {
	s = escapeInline(s)
	if leadingMarkerRe.MatchString(s) {
		return `\` + s
	}
	return leadingNumberRe.ReplaceAllString(s, `$1\$2`)
}

// PlainText renders the layout without styling, one item per line.
func (l Layout) PlainText() string {
	var b strings.Builder
	for i, sec := range l.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		if sec.Header != "" {
			b.WriteString(sec.Header + "\n")
		}
		for _, it := range sec.Items {
			switch it.Kind {
			case Ordered:
				fmt.Fprintf(&b, "%s. %s\n", it.Number, it.Text)
			case Bullet:
				fmt.Fprintf(&b, "• %s\n", it.Text)
			default:
				b.WriteString(it.Text + "\n")
			}
		}
	}
	return b.String()
}
