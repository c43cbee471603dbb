package cmdtree

import "fmt"

// Builder constructs a grammar tree. All nodes are created and wired
// through one builder, then frozen with Build; after that the tree is
// immutable and the builder refuses further use.
//
// Builders are not safe for concurrent use. Trees are.
type Builder struct {
	nextID NodeID
	built  bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) id() NodeID {
	b.check()
	id := b.nextID
	b.nextID++
	return id
}

func (b *Builder) check() {
	if b.built {
		panic("cmdtree: builder used after Build")
	}
}

// Root creates the tree's root node.
func (b *Builder) Root() *RootNode {
	return &RootNode{nodeFields{
		id:   b.id(),
		name: RootName,
	}}
}

// CommandSpec describes a command node.
type CommandSpec struct {
	Name     string
	Priority int // PriorityDefault (0) when unset
	Hidden   bool
	Help     string
	Handler  Handler
}

// Command creates a command node. Parameters and subcommands are
// attached afterwards with AddParameter, AddNamed, and AddSuccessor.
func (b *Builder) Command(s CommandSpec) *CommandNode {
	return &CommandNode{nodeFields: nodeFields{
		id:       b.id(),
		name:     s.Name,
		priority: s.Priority,
		hidden:   s.Hidden,
		help:     s.Help,
	}, handler: s.Handler}
}

// Wrapper creates a node that matches by its own name but delegates
// its successor set to wrapped. The delegation is resolved on every
// Successors call, so wiring added to wrapped before Build is visible
// through the wrapper.
func (b *Builder) Wrapper(name, help string, wrapped Node) *WrapperNode {
	return &WrapperNode{nodeFields: nodeFields{
		id:   b.id(),
		name: name,
		help: help,
	}, wrapped: wrapped}
}

// ParameterSpec describes a parameter node.
type ParameterSpec struct {
	Name string
	// Priority defaults to PriorityParameter when zero; parameters
	// never share the command default.
	Priority     int
	Hidden       bool
	Help         string
	Required     bool
	Repeatable   bool
	RepeatMarker Node
	// Accept is the value-acceptance predicate for value positions
	// (Simple and Named). AcceptNonEmpty when nil. Ignored by Flag.
	Accept AcceptFunc
}

func (s *ParameterSpec) priority() int {
	if s.Priority == 0 {
		return PriorityParameter
	}
	return s.Priority
}

func (s *ParameterSpec) acceptFunc() AcceptFunc {
	if s.Accept == nil {
		return AcceptNonEmpty
	}
	return s.Accept
}

func (b *Builder) newParameterFields(s ParameterSpec) parameterFields {
	return parameterFields{
		nodeFields: nodeFields{
			id:       b.id(),
			name:     s.Name,
			priority: s.priority(),
			hidden:   s.Hidden,
			help:     s.Help,
		},
		required:     s.Required,
		repeatable:   s.Repeatable,
		repeatMarker: s.RepeatMarker,
	}
}

// Flag creates a boolean parameter matched by its exact name.
func (b *Builder) Flag(s ParameterSpec) *FlagParameterNode {
	return &FlagParameterNode{b.newParameterFields(s)}
}

// Simple creates a positional parameter matched by its acceptance
// predicate.
func (b *Builder) Simple(s ParameterSpec) *SimpleParameterNode {
	return &SimpleParameterNode{
		parameterFields: b.newParameterFields(s),
		accept:          s.acceptFunc(),
	}
}

// Named creates a named parameter: a name node matched by s.Name
// whose single successor is the value node matched by the acceptance
// predicate. The returned name node is what gets wired into the
// tree; the value node is what gets declared on a command.
func (b *Builder) Named(s ParameterSpec) *ParameterNameNode {
	value := &NamedParameterNode{
		parameterFields: b.newParameterFields(s),
		accept:          s.acceptFunc(),
	}
	name := &ParameterNameNode{
		nodeFields: nodeFields{
			id:       b.id(),
			name:     s.Name,
			priority: s.priority(),
			hidden:   s.Hidden,
			help:     s.Help,
		},
		repeatable:   s.Repeatable,
		repeatMarker: s.RepeatMarker,
		parameter:    value,
	}
	value.nameNode = name
	name.successors = []Node{value}
	return name
}

// AddSuccessor wires child as a successor of parent. Wrapper nodes
// delegate their successors and cannot take their own.
func (b *Builder) AddSuccessor(parent, child Node) {
	b.check()
	switch p := parent.(type) {
	case *RootNode:
		p.appendSuccessor(child)
	case *CommandNode:
		p.appendSuccessor(child)
	case *FlagParameterNode:
		p.appendSuccessor(child)
	case *SimpleParameterNode:
		p.appendSuccessor(child)
	case *NamedParameterNode:
		p.appendSuccessor(child)
	case *ParameterNameNode:
		p.appendSuccessor(child)
	case *WrapperNode:
		panic("cmdtree: wrapper nodes delegate their successors")
	default:
		panic(fmt.Sprintf("cmdtree: unknown node kind %T", parent))
	}
}

// AddParameter declares p on cmd and wires it as a successor, keeping
// the two views consistent. Named parameters go through AddNamed.
func (b *Builder) AddParameter(cmd *CommandNode, p Parameter) {
	b.check()
	if _, ok := p.(*NamedParameterNode); ok {
		panic("cmdtree: named parameters are added via AddNamed")
	}
	cmd.parameters = append(cmd.parameters, p)
	cmd.appendSuccessor(p)
}

// AddNamed declares the named parameter behind name on cmd and wires
// the name node as a successor.
func (b *Builder) AddNamed(cmd *CommandNode, name *ParameterNameNode) {
	b.check()
	cmd.parameters = append(cmd.parameters, name.parameter)
	cmd.appendSuccessor(name)
}

// DuplicateSiblingError reports a grammar defect: two distinct
// sibling nodes with the same name and the same priority could tie
// for any input, so construction fails instead of surfacing an
// ambiguity at parse time.
type DuplicateSiblingError struct {
	Parent   string
	Name     string
	Priority int
}

func (e *DuplicateSiblingError) Error() string {
	return fmt.Sprintf("cmdtree: %q has duplicate successors named %q at priority %d",
		e.Parent, e.Name, e.Priority)
}

// Build freezes the grammar. It completes the parameter wiring for
// every command (each declared parameter's terminal node is given the
// command's parameter entry nodes as successors, so parameters can
// appear in any order after the command) and then statically rejects
// sibling sets that could never be disambiguated.
func (b *Builder) Build(root *RootNode) (*Tree, error) {
	b.check()
	b.wireParameters(root, make(map[NodeID]bool))
	if err := checkSiblings(root, make(map[NodeID]bool)); err != nil {
		return nil, err
	}
	b.built = true
	return &Tree{root: root}, nil
}

// wireParameters walks the tree and, for every command, makes each
// declared parameter's terminal node continue to the command's other
// parameter entry points.
func (b *Builder) wireParameters(n Node, seen map[NodeID]bool) {
	if seen[n.ID()] {
		return
	}
	seen[n.ID()] = true
	if cmd, ok := n.(*CommandNode); ok {
		entries := make([]Node, 0, len(cmd.parameters))
		for _, p := range cmd.parameters {
			entries = append(entries, entryNode(p))
		}
		for _, p := range cmd.parameters {
			terminal := terminalFields(p)
			for _, e := range entries {
				terminal.appendSuccessor(e)
			}
		}
	}
	if _, ok := n.(*WrapperNode); ok {
		// The delegate is wired at its own position in the tree.
		return
	}
	for _, s := range n.Successors() {
		b.wireParameters(s, seen)
	}
}

// entryNode returns the node that introduces a declared parameter in
// the token stream: the parameter itself, or the name node for a
// named parameter.
func entryNode(p Parameter) Node {
	if np, ok := p.(*NamedParameterNode); ok {
		return np.nameNode
	}
	return p
}

// terminalFields returns the successor storage of the node matched
// last for a declared parameter.
func terminalFields(p Parameter) *nodeFields {
	switch v := p.(type) {
	case *FlagParameterNode:
		return &v.nodeFields
	case *SimpleParameterNode:
		return &v.nodeFields
	case *NamedParameterNode:
		return &v.nodeFields
	default:
		panic(fmt.Sprintf("cmdtree: unknown parameter kind %T", p))
	}
}

func checkSiblings(n Node, seen map[NodeID]bool) error {
	if seen[n.ID()] {
		return nil
	}
	seen[n.ID()] = true
	if _, ok := n.(*WrapperNode); ok {
		// Delegated successors are checked at the delegate.
		return nil
	}
	succ := n.Successors()
	for i, a := range succ {
		for _, c := range succ[i+1:] {
			if a.ID() != c.ID() && a.Name() == c.Name() && a.Priority() == c.Priority() {
				return &DuplicateSiblingError{
					Parent:   n.Name(),
					Name:     a.Name(),
					Priority: a.Priority(),
				}
			}
		}
	}
	for _, s := range succ {
		if err := checkSiblings(s, seen); err != nil {
			return err
		}
	}
	return nil
}
