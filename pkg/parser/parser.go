// Package parser is the per-line matching engine over a cmdtree
// grammar: it consumes tokens one at a time, offers completions at
// any prefix, and validates a finished line into a dispatchable
// result.
//
// A Parser holds the state of exactly one input line. It is cheap to
// create, never outlives its line, and must not be shared between
// goroutines; the grammar it walks is shared freely.
package parser

import (
	"sort"
	"strings"

	"github.com/psaab/clitree/pkg/cmdtree"
)

// Candidate is one completion. Name is the text that matches the
// partial token (what the user types), Symbol the decorated display
// form, Desc the node's help text.
type Candidate struct {
	Name   string
	Symbol string
	Desc   string
}

// Result is an accepted line: the resolved command, its handler, and
// the parameter values bound along the path. The parser never invokes
// the handler.
type Result struct {
	Command  *cmdtree.CommandNode
	Handler  cmdtree.Handler
	Bindings []cmdtree.Binding
}

// Parser tracks an in-progress line against a frozen grammar.
type Parser struct {
	tree      *cmdtree.Tree
	current   cmdtree.Node
	command   *cmdtree.CommandNode
	visited   map[cmdtree.NodeID]struct{}
	satisfied map[cmdtree.NodeID]struct{}
	bindings  []cmdtree.Binding
}

// New returns a parser positioned at the root of tree.
func New(tree *cmdtree.Tree) *Parser {
	return &Parser{
		tree:      tree,
		current:   tree.Root(),
		visited:   make(map[cmdtree.NodeID]struct{}),
		satisfied: make(map[cmdtree.NodeID]struct{}),
	}
}

// Command returns the active command, nil before one is reached.
func (p *Parser) Command() *cmdtree.CommandNode { return p.command }

// candidates returns the current node's successors minus nodes
// already consumed on this line, deduplicated by identity.
func (p *Parser) candidates() []cmdtree.Node {
	succ := p.current.Successors()
	out := make([]cmdtree.Node, 0, len(succ))
	seen := make(map[cmdtree.NodeID]struct{}, len(succ))
	for _, s := range succ {
		if _, dup := seen[s.ID()]; dup {
			continue
		}
		seen[s.ID()] = struct{}{}
		if _, used := p.visited[s.ID()]; used {
			continue
		}
		out = append(out, s)
	}
	return out
}

// matches reports whether token matches node. Value positions match
// by acceptance predicate; every other kind matches by exact name.
func matches(n cmdtree.Node, token string) bool {
	switch v := n.(type) {
	case *cmdtree.SimpleParameterNode:
		return v.Accepts(token)
	case *cmdtree.NamedParameterNode:
		return v.Accepts(token)
	default:
		return n.Name() == token
	}
}

// completionKey is the text a partial token is matched against: the
// help symbol for value positions, the name for everything else.
func completionKey(n cmdtree.Node) string {
	switch n.(type) {
	case *cmdtree.SimpleParameterNode, *cmdtree.NamedParameterNode:
		return n.HelpSymbol()
	default:
		return n.Name()
	}
}

// repeatable reports whether a node may be matched more than once on
// one line. Nodes without the capability never repeat.
func repeatable(n cmdtree.Node) bool {
	r, ok := n.(interface{ Repeatable() bool })
	return ok && r.Repeatable()
}

// Advance consumes one completed token. On success the parser moves
// to the matched node; otherwise it returns *NoMatchError or
// *AmbiguousError and stays where it was. The engine never retries:
// re-prompting is the input loop's decision.
func (p *Parser) Advance(token string) error {
	var best []cmdtree.Node
	bestPriority := cmdtree.PriorityMinimum
	for _, c := range p.candidates() {
		if !matches(c, token) {
			continue
		}
		switch {
		case len(best) == 0 || c.Priority() > bestPriority:
			best = best[:0]
			best = append(best, c)
			bestPriority = c.Priority()
		case c.Priority() == bestPriority:
			best = append(best, c)
		}
	}
	if len(best) == 0 {
		return &NoMatchError{Token: token}
	}
	if len(best) > 1 {
		names := make([]string, len(best))
		for i, n := range best {
			names[i] = n.HelpSymbol()
		}
		return &AmbiguousError{Token: token, Candidates: names}
	}

	winner := best[0]
	p.current = winner
	if cmd, ok := winner.(*cmdtree.CommandNode); ok {
		// A new command context begins; earlier consumption no
		// longer constrains this line.
		p.command = cmd
		p.visited = make(map[cmdtree.NodeID]struct{})
	}
	if !repeatable(winner) {
		p.visited[winner.ID()] = struct{}{}
	}

	switch v := winner.(type) {
	case *cmdtree.FlagParameterNode:
		p.bindings = append(p.bindings, cmdtree.Binding{Parameter: v, Value: "true"})
	case *cmdtree.SimpleParameterNode:
		p.bindings = append(p.bindings, cmdtree.Binding{Parameter: v, Value: token})
	case *cmdtree.NamedParameterNode:
		p.bindings = append(p.bindings, cmdtree.Binding{Parameter: v, Value: token})
	}

	if p.command != nil {
		for _, declared := range p.command.Parameters() {
			if declared.ID() == winner.ID() {
				p.satisfied[winner.ID()] = struct{}{}
				break
			}
		}
	}
	return nil
}

// Complete lists visible continuations whose completion key starts
// with partial, ordered by descending priority then ascending name,
// deduplicated by identity. An empty result is a valid outcome, not
// an error.
func (p *Parser) Complete(partial string) []Candidate {
	var nodes []cmdtree.Node
	for _, c := range p.candidates() {
		if c.Hidden() {
			continue
		}
		if !strings.HasPrefix(completionKey(c), partial) {
			continue
		}
		nodes = append(nodes, c)
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Priority() != nodes[j].Priority() {
			return nodes[i].Priority() > nodes[j].Priority()
		}
		return nodes[i].Name() < nodes[j].Name()
	})
	out := make([]Candidate, len(nodes))
	for i, n := range nodes {
		out[i] = Candidate{
			Name:   completionKey(n),
			Symbol: n.HelpSymbol(),
			Desc:   n.HelpText(),
		}
	}
	return out
}

// Accept finalizes the line. It fails with *IncompleteCommandError
// when no command was resolved and with *MissingParameterError when
// required parameters of the active command were never matched;
// otherwise it returns the resolved command, handler, and bindings.
// Dispatch belongs to the caller. At most one Accept per line.
func (p *Parser) Accept() (*Result, error) {
	if p.command == nil {
		return nil, &IncompleteCommandError{}
	}
	var missing []string
	for _, declared := range p.command.Parameters() {
		if !declared.Required() {
			continue
		}
		if _, ok := p.satisfied[declared.ID()]; !ok {
			missing = append(missing, declared.HelpSymbol())
		}
	}
	if len(missing) > 0 {
		return nil, &MissingParameterError{Symbols: missing}
	}
	return &Result{
		Command:  p.command,
		Handler:  p.command.Handler(),
		Bindings: p.bindings,
	}, nil
}
