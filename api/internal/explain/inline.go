package explain

import (
	"regexp"
	"strings"
)

// Node is a run of text inside one rendered line.
type Node struct {
	Text       string `json:"text"`
	Emphasized bool   `json:"emphasized,omitempty"`
}

var inlineCode = regexp.MustCompile("`([^`]+)`")

// FormatInline turns one line of model output into display nodes: inline code
// backticks are dropped and **bold** runs become emphasized nodes. The result
// always holds at least one node.
func FormatInline(line string) []Node {
	return splitBold(inlineCode.ReplaceAllString(line, "$1"))
}

// splitBold pairs "**" delimiters left to right. The scan stops one byte
// short of the end and the final byte is appended afterwards, so a delimiter
// that starts on the last byte is kept as text. An unterminated run is
// flushed with whatever emphasis is open at the end of the line.
func splitBold(text string) []Node {
	if !strings.Contains(text, "**") {
		return []Node{{Text: text}}
	}

	var (
		nodes []Node
		buf   []byte
		bold  bool
		last  int
	)
	push := func(s string, em bool) {
		if s != "" {
			nodes = append(nodes, Node{Text: s, Emphasized: em})
		}
	}

	for i := 0; i < len(text)-1; i++ {
		if text[i] == '*' && text[i+1] == '*' {
			if bold {
				push(string(buf), true)
			} else {
				push(text[last:i], false)
			}
			buf = buf[:0]
			bold = !bold
			i++
			last = i + 1
			continue
		}
		if i >= last {
			buf = append(buf, text[i])
		}
	}
	if len(text)-1 >= last {
		buf = append(buf, text[len(text)-1])
	}
	push(string(buf), bold)

	if len(nodes) == 0 {
		return []Node{{Text: ""}}
	}
	return nodes
}
