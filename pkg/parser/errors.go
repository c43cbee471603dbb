package parser

import (
	"fmt"
	"strings"
)

// NoMatchError reports a token that matched nothing reachable from
// the current position.
type NoMatchError struct {
	Token string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no match for %q", e.Token)
}

// AmbiguousError reports a token matched by two or more reachable
// nodes tied at the highest priority. A grammar whose static shape
// makes this inevitable is rejected at build time; this error covers
// ties the static check cannot see, such as two positional
// parameters accepting the same value.
type AmbiguousError struct {
	Token      string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q is ambiguous: %s", e.Token, strings.Join(e.Candidates, ", "))
}

// IncompleteCommandError reports a line that ended before any command
// was resolved.
type IncompleteCommandError struct{}

func (e *IncompleteCommandError) Error() string {
	return "incomplete command"
}

// MissingParameterError reports required parameters of the active
// command that were never matched, named by help symbol.
type MissingParameterError struct {
	Symbols []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameters: %s", strings.Join(e.Symbols, ", "))
}
