package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestFirstText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, ""},
		{"skips non-text parts", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{
				&genai.Blob{MIMEType: "image/png"},
				genai.Text("Python"),
				genai.Text("ignored"),
			}}},
		}}, "Python"},
		{"second candidate", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			{Content: &genai.Content{}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Go")}}},
		}}, "Go"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstText(tt.resp); got != tt.want {
				t.Errorf("firstText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerate_NoKey(t *testing.T) {
	e := New("  ", "gemini-2.0-flash")
	if _, err := e.Generate(context.Background(), "hi"); err == nil {
		t.Fatal("want error without api key")
	}
	if e.Name() != "gemini" || e.GetModel() != "gemini-2.0-flash" {
		t.Errorf("Name/GetModel = %s/%s", e.Name(), e.GetModel())
	}
}
