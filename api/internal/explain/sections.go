package explain

import (
	"regexp"
	"strings"
)

type Kind string

const (
	KindSyntax Kind = "syntax"
	KindLogic  Kind = "logic"
	KindOther  Kind = "other"
)

// Section is one labeled part of a model explanation.
type Section struct {
	Title   string `json:"title"`
	Kind    Kind   `json:"kind"`
	Content string `json:"content"`
}

// A header is the bold-wrapped tag anywhere on the line, or a line holding
// nothing but the tag with optional markdown heading and emphasis around it.
// Case is ignored. A tag inside ordinary text, like `rules[logic]`, is content.
var (
	syntaxMarker = headerPattern("SYNTAX")
	logicMarker  = headerPattern("LOGIC")
)

func headerPattern(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\*\*\[` + tag + `\]\*\*|^[#\s]*\*{0,2}\[` + tag + `\]\*{0,2}:?$`)
}

// Marker returns the canonical header line for the section kind, or "" for KindOther.
func (s Section) Marker() string {
	switch s.Kind {
	case KindSyntax:
		return "**[SYNTAX]**"
	case KindLogic:
		return "**[LOGIC]**"
	}
	return ""
}

// TabValue is the stable identifier a tabbed view uses for the section.
func (s Section) TabValue() string {
	switch s.Kind {
	case KindSyntax:
		return "syntax"
	case KindLogic:
		return "logic"
	}
	return "explanation"
}

// ParseSections splits a model response into sections in order of appearance.
// Text before the first header is kept only when no header exists at all, in
// which case it becomes a single "Explanation" section.
func ParseSections(text string) []Section {
	var (
		sections []Section
		current  *Section
		buf      []string
		intro    []string
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.Join(buf, "\n")
		sections = append(sections, *current)
		buf = nil
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case syntaxMarker.MatchString(line):
			flush()
			current = &Section{Title: "Syntax", Kind: KindSyntax}
		case logicMarker.MatchString(line):
			flush()
			current = &Section{Title: "Logic", Kind: KindLogic}
		case current != nil:
			// leading blank lines are dropped, paragraph breaks are kept
			if line != "" || len(buf) > 0 {
				buf = append(buf, line)
			}
		default:
			if line != "" {
				intro = append(intro, line)
			}
		}
	}

	if current != nil {
		flush()
		return sections
	}
	if len(intro) > 0 {
		return []Section{{
			Title:   "Explanation",
			Kind:    KindOther,
			Content: strings.Join(intro, "\n"),
		}}
	}
	return nil
}
