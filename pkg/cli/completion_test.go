package cli

import (
	"strings"
	"testing"

	"github.com/psaab/clitree/pkg/parser"
)

func TestSplitLine(t *testing.T) {
	tests := []struct {
		text    string
		words   []string
		partial string
	}{
		{"", nil, ""},
		{"show", nil, "show"},
		{"show ", []string{"show"}, ""},
		{"show inter", []string{"show"}, "inter"},
		{"show interfaces terse ", []string{"show", "interfaces", "terse"}, ""},
	}
	for _, tt := range tests {
		words, partial := splitLine(tt.text)
		if partial != tt.partial {
			t.Errorf("splitLine(%q) partial = %q, want %q", tt.text, partial, tt.partial)
		}
		if len(words) != len(tt.words) {
			t.Errorf("splitLine(%q) words = %v, want %v", tt.text, words, tt.words)
			continue
		}
		for i := range words {
			if words[i] != tt.words[i] {
				t.Errorf("splitLine(%q) words = %v, want %v", tt.text, words, tt.words)
				break
			}
		}
	}
}

func TestWriteHelp(t *testing.T) {
	var sb strings.Builder
	WriteHelp(&sb, []parser.Candidate{
		{Name: "show", Symbol: "show", Desc: "Show information"},
		{Name: "count", Symbol: "count <count>", Desc: "Probe count"},
		{Name: "quit", Symbol: "quit"},
	})
	out := sb.String()

	if !strings.HasPrefix(out, "Possible completions:\n") {
		t.Fatalf("missing header in %q", out)
	}
	if !strings.Contains(out, "show") || !strings.Contains(out, "Show information") {
		t.Errorf("missing candidate line in %q", out)
	}
	if !strings.Contains(out, "count <count>") {
		t.Errorf("missing decorated symbol in %q", out)
	}
	// Candidates without help text print the symbol alone.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "quit") && strings.TrimSpace(line) != "quit" {
			t.Errorf("bare candidate line = %q", line)
		}
	}
}

func TestCommonPrefix(t *testing.T) {
	tests := []struct {
		items []string
		want  string
	}{
		{nil, ""},
		{[]string{"show"}, "show"},
		{[]string{"show", "shutdown"}, "sh"},
		{[]string{"alpha", "beta"}, ""},
	}
	for _, tt := range tests {
		if got := CommonPrefix(tt.items); got != tt.want {
			t.Errorf("CommonPrefix(%v) = %q, want %q", tt.items, got, tt.want)
		}
	}
}
