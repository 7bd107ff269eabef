package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"knowcode/api/internal/explain"
)

func TestFormatDocument(t *testing.T) {
	doc := explain.BuildDocument("C++", "**[SYNTAX]**\n* `std::cout` prints to stdout\n**[LOGIC]**\nIf a < b, **print**, then exit & stop.")
	got := FormatDocument(doc)
	want := []string{
		"<b>Language:</b> C++",
		"<b>Syntax</b>\n\n• std::cout prints to stdout",
		"<b>Logic</b>\n\nIf a &lt; b, <b>print</b>, then exit &amp; stop.",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d messages: %q", len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFormatDocument_EmptySection(t *testing.T) {
	got := FormatDocument(explain.BuildDocument("Go", "**[SYNTAX]**\n**[LOGIC]**\nbody"))
	if len(got) != 3 || got[1] != "<b>Syntax</b>" {
		t.Errorf("got %q", got)
	}
}

func TestFormatDocument_Fallback(t *testing.T) {
	got := FormatDocument(explain.BuildDocument(explain.FallbackLanguage, explain.FallbackText))
	if len(got) != 2 {
		t.Fatalf("got %q", got)
	}
	if got[0] != "<b>Language:</b> Unknown" || !strings.Contains(got[1], explain.FallbackText) {
		t.Errorf("got %q", got)
	}
}

func TestSplitMessage(t *testing.T) {
	if got := splitMessage("short", 10); len(got) != 1 || got[0] != "short" {
		t.Errorf("short text split: %q", got)
	}

	got := splitMessage("aaaa\nbbbb\ncccc", 9)
	want := []string{"aaaa\nbbbb", "cccc"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %q, want %q", got, want)
	}

	got = splitMessage("ab\nxxxxxxxxxxxx\ncd", 5)
	want = []string{"ab", "xxxxx", "xxxxx", "xx\ncd"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("long line: got %q, want %q", got, want)
	}
}

func TestSplitMessage_Limit(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 500; i++ {
		sb.WriteString("• ключевое слово <b>func</b> объявляет функцию\n")
	}
	text := sb.String()
	parts := splitMessage(text, maxMessageLen)
	if len(parts) < 2 {
		t.Fatalf("expected several parts, got %d", len(parts))
	}
	total := 0
	for i, p := range parts {
		n := utf8.RuneCountInString(p)
		if n > maxMessageLen {
			t.Errorf("part %d has %d runes", i, n)
		}
		total += n
	}
	// only the newlines at the cut points are dropped
	if want := utf8.RuneCountInString(text) - (len(parts) - 1); total != want && total != want-1 {
		t.Errorf("total runes = %d, want about %d", total, want)
	}
}

func TestSplitMessage_CutKeepsTagsAndEntities(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  []string
	}{
		{"bold reopened", "<b>abcdefghij</b>", 12, []string{"<b>abcde</b>", "<b>fghij</b>"}},
		{"entity whole", "ab&amp;cd", 4, []string{"ab", "&amp;", "cd"}},
		{"tag not orphaned", "abcdefgh<b>x</b>", 12, []string{"abcdefgh", "<b>x</b>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitMessage(tt.in, tt.limit)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("splitMessage(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}

func TestSplitMessage_LongBoldLine(t *testing.T) {
	src := "* " + strings.Repeat("a", 4000) + " **" + strings.Repeat("b & c ", 60) + "**tail"
	line := formatBlocks(explain.RenderBlocks(src))
	parts := splitMessage(line, maxMessageLen)
	if len(parts) < 2 {
		t.Fatalf("expected the line to be cut, got %d part", len(parts))
	}

	var joined strings.Builder
	for i, p := range parts {
		if n := utf8.RuneCountInString(p); n > maxMessageLen {
			t.Errorf("part %d has %d runes", i, n)
		}
		if opens, closes := strings.Count(p, "<b>"), strings.Count(p, "</b>"); opens != closes {
			t.Errorf("part %d: %d <b> vs %d </b>", i, opens, closes)
		}
		for k := 0; k < len(p); k++ {
			if p[k] == '&' && !strings.HasPrefix(p[k:], "&amp;") {
				t.Errorf("part %d: broken entity at %d: %q", i, k, p[k:min(k+6, len(p))])
			}
		}
		joined.WriteString(p)
	}

	strip := strings.NewReplacer("<b>", "", "</b>", "")
	if strip.Replace(joined.String()) != strip.Replace(line) {
		t.Error("text changed by splitting")
	}
}
