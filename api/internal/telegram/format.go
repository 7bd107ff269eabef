package telegram

import (
	"strings"
	"unicode/utf8"

	"knowcode/api/internal/explain"
)

// maxMessageLen is Telegram's limit for one text message.
const maxMessageLen = 4096

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// FormatDocument renders an explanation as Telegram HTML: a language line
// followed by one message per section, each split to fit maxMessageLen.
func FormatDocument(doc explain.Document) []string {
	out := []string{"<b>Language:</b> " + htmlEscaper.Replace(doc.Language)}

	if len(doc.Sections) == 0 {
		if body := formatBlocks(doc.Plain); strings.TrimSpace(body) != "" {
			out = append(out, splitMessage(body, maxMessageLen)...)
		}
		return out
	}
	for _, s := range doc.Sections {
		text := "<b>" + htmlEscaper.Replace(s.Title) + "</b>"
		if body := formatBlocks(s.Blocks); body != "" {
			text += "\n\n" + body
		}
		out = append(out, splitMessage(text, maxMessageLen)...)
	}
	return out
}

func formatBlocks(blocks []explain.Block) string {
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		line := formatNodes(b.Nodes)
		if b.Kind == explain.BlockBullet {
			line = "• " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatNodes(nodes []explain.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		if n.Emphasized {
			sb.WriteString("<b>" + htmlEscaper.Replace(n.Text) + "</b>")
			continue
		}
		sb.WriteString(htmlEscaper.Replace(n.Text))
	}
	return sb.String()
}

// splitMessage cuts text into chunks of at most limit runes, preferring line
// boundaries. A single line longer than limit is cut mid-line by cutLine.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		n := utf8.RuneCountInString(line)
		if n > limit {
			flush()
			pieces := cutLine(line, limit)
			chunks = append(chunks, pieces[:len(pieces)-1]...)
			line = pieces[len(pieces)-1]
			n = utf8.RuneCountInString(line)
		}
		sep := 0
		if curLen > 0 {
			sep = 1
		}
		if curLen+sep+n > limit {
			flush()
			sep = 0
		}
		if sep == 1 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
		curLen += sep + n
	}
	flush()
	return chunks
}

// cutLine breaks one rendered line into pieces of at most limit runes without
// splitting a tag or an entity. A bold run crossing a cut is closed at the end
// of one piece and reopened at the start of the next, so each piece is valid
// Telegram HTML on its own.
func cutLine(line string, limit int) []string {
	var (
		pieces []string
		cur    strings.Builder
		curLen int
		bold   bool
	)
	for line != "" {
		atom := nextAtom(line)
		line = line[len(atom):]
		n := utf8.RuneCountInString(atom)

		open, reserve := bold, 0
		switch atom {
		case "<b>":
			// room to close, and for at least one entity inside
			open, reserve = true, len("</b>")+len("&amp;")
		case "</b>":
			open = false
		default:
			if open {
				reserve = len("</b>")
			}
		}

		if cur.Len() > 0 && curLen+n+reserve > limit {
			if bold {
				cur.WriteString("</b>")
			}
			pieces = append(pieces, cur.String())
			cur.Reset()
			curLen = 0
			if bold {
				cur.WriteString("<b>")
				curLen = len("<b>")
			}
		}
		cur.WriteString(atom)
		curLen += n
		bold = open
	}
	if cur.Len() > 0 {
		pieces = append(pieces, cur.String())
	}
	return pieces
}

// nextAtom returns the leading tag, entity or rune of s.
func nextAtom(s string) string {
	switch {
	case strings.HasPrefix(s, "<b>"):
		return "<b>"
	case strings.HasPrefix(s, "</b>"):
		return "</b>"
	case s[0] == '&':
		if i := strings.IndexByte(s, ';'); i > 0 && i <= len("&quot;") {
			return s[:i+1]
		}
	}
	_, size := utf8.DecodeRuneInString(s)
	return s[:size]
}
