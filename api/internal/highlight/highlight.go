package highlight

import (
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultLanguage is shown when neither a label nor a guess is available.
const DefaultLanguage = "javascript"

// DisplayLanguage returns label when set, otherwise a local guess from the
// code itself, otherwise DefaultLanguage.
func DisplayLanguage(label, code string) string {
	if l := strings.TrimSpace(label); l != "" {
		return l
	}
	if lx := lexers.Analyse(code); lx != nil {
		return strings.ToLower(lx.Config().Name)
	}
	return DefaultLanguage
}

type Highlighter struct {
	style     *chroma.Style
	formatter *html.Formatter
}

// New uses the named chroma style; unknown names fall back to chroma's default.
func New(style string) *Highlighter {
	return &Highlighter{
		style: styles.Get(style),
		formatter: html.New(
			html.WithLineNumbers(true),
			html.TabWidth(4),
		),
	}
}

// HTML renders code as a standalone <pre> block with inline styles.
func (h *Highlighter) HTML(language, code string) (template.HTML, error) {
	lexer := lookup(language, code)
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := h.formatter.Format(&sb, h.style, it); err != nil {
		return "", err
	}
	return template.HTML(sb.String()), nil
}

func lookup(language, code string) chroma.Lexer {
	if lx := lexers.Get(strings.ToLower(strings.TrimSpace(language))); lx != nil {
		return lx
	}
	if lx := lexers.Analyse(code); lx != nil {
		return lx
	}
	return lexers.Fallback
}
