// Package cmdtree defines the grammar tree for interactive CLIs.
//
// This is the SINGLE SOURCE OF TRUTH for what a shell can parse:
// commands, their parameters, and help metadata all live in one tree
// that is built once, frozen, and then shared read-only across every
// session. The per-line matching engine lives in pkg/parser; the
// readline front end lives in pkg/cli.
package cmdtree

import "strings"

// Priority constants used during matching and completion.
const (
	// PriorityMinimum never wins a tie. Reserved for nodes that
	// should only match when nothing else can.
	PriorityMinimum = -10000
	// PriorityParameter is the default priority for parameters.
	PriorityParameter = -10
	// PriorityDefault is the default priority for commands.
	PriorityDefault = 0
)

// RootName is the fixed name of every root node.
const RootName = "__root__"

// NodeID identifies a node within one tree. IDs are assigned by the
// Builder in construction order and compared by value; two nodes are
// the same node iff their IDs are equal. Structural equality is never
// used.
type NodeID uint32

// Node is a node in the tree of commands and their parameters.
type Node interface {
	// ID returns the node's identity within its tree.
	ID() NodeID
	// Name returns the node name. For commands, flags, and named
	// parameter name halves this is the token that matches the node.
	Name() string
	// Priority is used to pick a single winner when more than one
	// node matches the same token.
	Priority() int
	// Hidden nodes are still found for matching but are never
	// offered as completions.
	Hidden() bool
	// HelpSymbol is the text identifying this node in help output:
	// the plain name, or a decorated form for parameters.
	HelpSymbol() string
	// HelpText describes the node, empty when none was given.
	HelpText() string
	// Successors are the nodes that may follow this one. For a
	// WrapperNode this is the wrapped node's successor list,
	// resolved on every call.
	Successors() []Node
}

// Handler is the opaque callback attached to a command. The parser
// never invokes it; dispatch belongs to the input loop.
type Handler func(cmd *CommandNode, args []Binding) error

// Binding is one parameter value collected while parsing a line.
// Flags bind the value "true"; value positions bind the raw token.
type Binding struct {
	Parameter Parameter
	Value     string
}

// Parameter is the capability shared by the three parameter variants.
type Parameter interface {
	Node
	// Required parameters must be matched at least once before a
	// line can be accepted.
	Required() bool
	// Repeatable parameters may be matched any number of times on
	// one line; all other nodes match at most once.
	Repeatable() bool
	// RepeatMarker, when set, is the continuation node a builder
	// wired for the consumed state. The engine tracks consumption
	// with a per-line visited set; the marker is exposed as grammar
	// data only.
	RepeatMarker() Node
}

// nodeFields is the record shared by every node kind.
type nodeFields struct {
	id         NodeID
	name       string
	priority   int
	hidden     bool
	help       string
	successors []Node
}

func (n *nodeFields) ID() NodeID         { return n.id }
func (n *nodeFields) Name() string       { return n.name }
func (n *nodeFields) Priority() int      { return n.priority }
func (n *nodeFields) Hidden() bool       { return n.hidden }
func (n *nodeFields) HelpSymbol() string { return n.name }
func (n *nodeFields) HelpText() string   { return n.help }
func (n *nodeFields) Successors() []Node { return n.successors }

// appendSuccessor adds a successor, ignoring nodes already present.
func (n *nodeFields) appendSuccessor(s Node) {
	for _, existing := range n.successors {
		if existing.ID() == s.ID() {
			return
		}
	}
	n.successors = append(n.successors, s)
}

// RootNode is the sentinel entry point of a tree. Its successors are
// the top-level commands.
type RootNode struct {
	nodeFields
}

// CommandNode represents a command. Its declared parameters are used
// for required-ness checking at accept time; the same parameter nodes
// also appear among its successors for matching and completion.
type CommandNode struct {
	nodeFields
	handler    Handler
	parameters []Parameter
}

// Handler returns the callback to run once a line naming this command
// has been accepted, nil when the command is not dispatchable.
func (c *CommandNode) Handler() Handler { return c.handler }

// Parameters returns the command's declared parameters in order.
func (c *CommandNode) Parameters() []Parameter { return c.parameters }

// WrapperNode wraps another node, delegating its successor set.
//
// This is how a "help" command completes and matches over the whole
// command tree without duplicating it: the wrapper owns its own name
// and help text but exposes the wrapped node's successors, looked up
// live on every call so the two can never disagree.
type WrapperNode struct {
	nodeFields
	wrapped Node
}

// Successors returns the wrapped node's successors.
func (w *WrapperNode) Successors() []Node { return w.wrapped.Successors() }

// Wrapped returns the delegate node.
func (w *WrapperNode) Wrapped() Node { return w.wrapped }

// parameterFields is the record shared by the parameter variants.
type parameterFields struct {
	nodeFields
	required     bool
	repeatable   bool
	repeatMarker Node
}

func (p *parameterFields) Required() bool     { return p.required }
func (p *parameterFields) Repeatable() bool   { return p.repeatable }
func (p *parameterFields) RepeatMarker() Node { return p.repeatMarker }

// valueSymbol renders a value position for help output: <name>, with
// an ellipsis when the parameter is repeatable.
func (p *parameterFields) valueSymbol() string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(p.name)
	sb.WriteByte('>')
	if p.repeatable {
		sb.WriteString("...")
	}
	return sb.String()
}

// FlagParameterNode is a parameter matched by its exact name whose
// presence alone carries meaning.
type FlagParameterNode struct {
	parameterFields
}

// SimpleParameterNode is a purely positional parameter, matched by a
// value-acceptance predicate rather than by name.
type SimpleParameterNode struct {
	parameterFields
	accept AcceptFunc
}

// HelpSymbol returns <name>, or <name>... when repeatable.
func (p *SimpleParameterNode) HelpSymbol() string { return p.valueSymbol() }

// Accepts reports whether token is a valid value for this parameter.
func (p *SimpleParameterNode) Accepts(token string) bool { return p.accept(token) }

// NamedParameterNode is the value half of a named parameter. It is
// reached through its ParameterNameNode and matched by predicate.
type NamedParameterNode struct {
	parameterFields
	accept   AcceptFunc
	nameNode *ParameterNameNode
}

// HelpSymbol returns <name>, or <name>... when repeatable.
func (p *NamedParameterNode) HelpSymbol() string { return p.valueSymbol() }

// Accepts reports whether token is a valid value for this parameter.
func (p *NamedParameterNode) Accepts(token string) bool { return p.accept(token) }

// ParameterNameNode is the name half of a named parameter. It matches
// by exact name and its only successor is the value node.
type ParameterNameNode struct {
	nodeFields
	repeatable   bool
	repeatMarker Node
	parameter    *NamedParameterNode
}

// Repeatable mirrors the wrapped value parameter's repeatability so
// that consuming a non-repeatable named parameter retires its name
// token as well.
func (p *ParameterNameNode) Repeatable() bool { return p.repeatable }

// RepeatMarker mirrors the wrapped value parameter's repeat marker.
func (p *ParameterNameNode) RepeatMarker() Node { return p.repeatMarker }

// Parameter returns the value node this name introduces.
func (p *ParameterNameNode) Parameter() *NamedParameterNode { return p.parameter }

// HelpSymbol concatenates the name with the value node's symbol,
// e.g. "count <count>".
func (p *ParameterNameNode) HelpSymbol() string {
	return p.name + " " + p.parameter.HelpSymbol()
}

// AcceptFunc decides whether a token is a valid value for a value
// position. The default accepts any non-empty token.
type AcceptFunc func(token string) bool

// AcceptNonEmpty is the default value-acceptance predicate.
func AcceptNonEmpty(token string) bool { return token != "" }

// Tree is a frozen grammar. It is immutable after Build and safe for
// concurrent use by any number of sessions without locking.
type Tree struct {
	root *RootNode
}

// Root returns the tree's entry point.
func (t *Tree) Root() *RootNode { return t.root }
