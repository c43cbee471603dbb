package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/psaab/clitree/pkg/parser"
)

// treeCompleter implements readline.AutoCompleter over the shell's
// grammar.
type treeCompleter struct {
	shell *Shell
}

// Do completes the word under the cursor. A single candidate is
// inserted with a trailing space; multiple candidates are returned as
// suffixes for readline to display.
func (tc *treeCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	_, partial := splitLine(text)

	candidates := tc.shell.completions(text)
	if len(candidates) == 0 {
		return nil, 0
	}

	if len(candidates) == 1 {
		suffix := candidates[0].Name[len(partial):]
		return [][]rune{[]rune(suffix + " ")}, len(partial)
	}

	// Multiple matches: extend to the longest shared prefix when it
	// gets the user further, otherwise list the alternatives.
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	if cp := CommonPrefix(names); len(cp) > len(partial) {
		return [][]rune{[]rune(cp[len(partial):])}, len(partial)
	}
	out := make([][]rune, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, []rune(c.Name[len(partial):]))
	}
	return out, len(partial)
}

// splitLine separates the completed words of a line from the trailing
// partial word. A line ending in whitespace has no partial.
func splitLine(text string) (words []string, partial string) {
	words = strings.Fields(text)
	trailingSpace := len(text) > 0 && text[len(text)-1] == ' '
	if !trailingSpace && len(words) > 0 {
		partial = words[len(words)-1]
		words = words[:len(words)-1]
	}
	return words, partial
}

// WriteHelp prints aligned completion candidates to w. The whole
// output is built as one string and written in a single call so that
// readline's writer triggers only one refresh cycle.
func WriteHelp(w io.Writer, candidates []parser.Candidate) {
	maxWidth := 20
	for _, c := range candidates {
		if len(c.Symbol)+2 > maxWidth {
			maxWidth = len(c.Symbol) + 2
		}
	}
	var sb strings.Builder
	sb.WriteString("Possible completions:\n")
	for _, c := range candidates {
		if c.Desc != "" {
			fmt.Fprintf(&sb, "  %-*s %s\n", maxWidth, c.Symbol, c.Desc)
		} else {
			fmt.Fprintf(&sb, "  %s\n", c.Symbol)
		}
	}
	io.WriteString(w, sb.String())
}

// CommonPrefix returns the longest shared prefix among the given
// strings.
func CommonPrefix(items []string) string {
	if len(items) == 0 {
		return ""
	}
	prefix := items[0]
	for _, s := range items[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}
