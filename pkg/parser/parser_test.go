package parser

import (
	"errors"
	"testing"

	"github.com/psaab/clitree/pkg/cmdtree"
)

// showGrammar builds: root -> show -> [all (flag)].
func showGrammar(t *testing.T) *cmdtree.Tree {
	t.Helper()
	b := cmdtree.NewBuilder()
	root := b.Root()
	show := b.Command(cmdtree.CommandSpec{Name: "show", Help: "Show information"})
	b.AddSuccessor(root, show)
	b.AddParameter(show, b.Flag(cmdtree.ParameterSpec{Name: "all", Help: "Everything"}))
	tree, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

func advance(t *testing.T, p *Parser, tokens ...string) {
	t.Helper()
	for _, token := range tokens {
		if err := p.Advance(token); err != nil {
			t.Fatalf("Advance(%q): %v", token, err)
		}
	}
}

func TestFlagParameterOnce(t *testing.T) {
	tree := showGrammar(t)

	p := New(tree)
	advance(t, p, "show", "all")
	res, err := p.Accept()
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if len(res.Bindings) != 1 || res.Bindings[0].Parameter.Name() != "all" || res.Bindings[0].Value != "true" {
		t.Errorf("bindings = %v, want all=true", res.Bindings)
	}

	p = New(tree)
	advance(t, p, "show", "all")
	err = p.Advance("all")
	var noMatch *NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("second %q = %v, want NoMatchError", "all", err)
	}
	if noMatch.Token != "all" {
		t.Errorf("NoMatch token = %q", noMatch.Token)
	}
}

func TestRequiredParameter(t *testing.T) {
	called := false
	handler := func(cmd *cmdtree.CommandNode, args []cmdtree.Binding) error {
		called = true
		return nil
	}

	b := cmdtree.NewBuilder()
	root := b.Root()
	set := b.Command(cmdtree.CommandSpec{Name: "set", Handler: handler})
	b.AddSuccessor(root, set)
	b.AddParameter(set, b.Simple(cmdtree.ParameterSpec{Name: "value", Required: true}))
	tree, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	p := New(tree)
	advance(t, p, "set")
	_, err = p.Accept()
	var missing *MissingParameterError
	if !errors.As(err, &missing) {
		t.Fatalf("Accept = %v, want MissingParameterError", err)
	}
	if len(missing.Symbols) != 1 || missing.Symbols[0] != "<value>" {
		t.Errorf("missing symbols = %v, want [<value>]", missing.Symbols)
	}

	p = New(tree)
	advance(t, p, "set", "42")
	res, err := p.Accept()
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if res.Handler == nil {
		t.Fatal("no handler on accepted result")
	}
	if err := res.Handler(res.Command, res.Bindings); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("handler not invoked")
	}
	if len(res.Bindings) != 1 || res.Bindings[0].Value != "42" {
		t.Errorf("bindings = %v, want value=42", res.Bindings)
	}
}

func TestHiddenNode(t *testing.T) {
	b := cmdtree.NewBuilder()
	root := b.Root()
	b.AddSuccessor(root, b.Command(cmdtree.CommandSpec{Name: "show"}))
	b.AddSuccessor(root, b.Command(cmdtree.CommandSpec{Name: "debug", Hidden: true}))
	tree, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	p := New(tree)
	for _, c := range p.Complete("") {
		if c.Name == "debug" {
			t.Error("hidden node offered as completion")
		}
	}
	if err := p.Advance("debug"); err != nil {
		t.Errorf("hidden node not matchable: %v", err)
	}
}

func TestCompleteOrdering(t *testing.T) {
	b := cmdtree.NewBuilder()
	root := b.Root()
	b.AddSuccessor(root, b.Command(cmdtree.CommandSpec{Name: "alpha"}))
	b.AddSuccessor(root, b.Command(cmdtree.CommandSpec{Name: "zeta", Priority: 5}))
	b.AddSuccessor(root, b.Command(cmdtree.CommandSpec{Name: "beta", Priority: 5}))
	tree, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	got := New(tree).Complete("")
	want := []string{"beta", "zeta", "alpha"}
	if len(got) != len(want) {
		t.Fatalf("%d candidates, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("candidate %d = %q, want %q", i, got[i].Name, name)
		}
	}

	if got := New(tree).Complete("ze"); len(got) != 1 || got[0].Name != "zeta" {
		t.Errorf("Complete(\"ze\") = %v, want [zeta]", got)
	}
	if got := New(tree).Complete("nope"); len(got) != 0 {
		t.Errorf("Complete(\"nope\") = %v, want empty", got)
	}
}

func TestCompleteExcludesConsumed(t *testing.T) {
	tree := showGrammar(t)
	p := New(tree)
	advance(t, p, "show", "all")
	if got := p.Complete(""); len(got) != 0 {
		t.Errorf("consumed flag still completed: %v", got)
	}
}

func TestPriorityDisambiguation(t *testing.T) {
	b := cmdtree.NewBuilder()
	root := b.Root()
	cmd := b.Command(cmdtree.CommandSpec{Name: "ping"})
	b.AddSuccessor(root, cmd)
	b.AddParameter(cmd, b.Simple(cmdtree.ParameterSpec{Name: "host", Priority: -20}))
	b.AddNamed(cmd, b.Named(cmdtree.ParameterSpec{Name: "count"}))
	tree, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	// "count" is accepted by the host predicate too; the keyword must
	// win on priority.
	p := New(tree)
	advance(t, p, "ping", "count", "5")
	res, err := p.Accept()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Bindings) != 1 || res.Bindings[0].Parameter.Name() != "count" || res.Bindings[0].Value != "5" {
		t.Errorf("bindings = %v, want count=5", res.Bindings)
	}
}

func TestAmbiguousTie(t *testing.T) {
	b := cmdtree.NewBuilder()
	root := b.Root()
	cmd := b.Command(cmdtree.CommandSpec{Name: "route"})
	b.AddSuccessor(root, cmd)
	b.AddParameter(cmd, b.Simple(cmdtree.ParameterSpec{Name: "src"}))
	b.AddParameter(cmd, b.Simple(cmdtree.ParameterSpec{Name: "dst"}))
	tree, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	p := New(tree)
	advance(t, p, "route")
	err = p.Advance("10.0.0.1")
	var ambiguous *AmbiguousError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("Advance = %v, want AmbiguousError", err)
	}
	if len(ambiguous.Candidates) != 2 {
		t.Errorf("candidates = %v, want 2", ambiguous.Candidates)
	}
}

func TestRepeatableParameter(t *testing.T) {
	b := cmdtree.NewBuilder()
	root := b.Root()
	cmd := b.Command(cmdtree.CommandSpec{Name: "ping"})
	b.AddSuccessor(root, cmd)
	b.AddParameter(cmd, b.Simple(cmdtree.ParameterSpec{Name: "host", Repeatable: true}))
	tree, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	p := New(tree)
	advance(t, p, "ping", "a", "b", "c")
	res, err := p.Accept()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Bindings) != 3 {
		t.Fatalf("%d bindings, want 3", len(res.Bindings))
	}
	for i, want := range []string{"a", "b", "c"} {
		if res.Bindings[i].Value != want {
			t.Errorf("binding %d = %q, want %q", i, res.Bindings[i].Value, want)
		}
	}
}

func TestNamedParameterRequired(t *testing.T) {
	b := cmdtree.NewBuilder()
	root := b.Root()
	cmd := b.Command(cmdtree.CommandSpec{Name: "set"})
	b.AddSuccessor(root, cmd)
	b.AddNamed(cmd, b.Named(cmdtree.ParameterSpec{Name: "speed", Required: true}))
	tree, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	p := New(tree)
	advance(t, p, "set")
	_, err = p.Accept()
	var missing *MissingParameterError
	if !errors.As(err, &missing) {
		t.Fatalf("Accept = %v, want MissingParameterError", err)
	}
	if len(missing.Symbols) != 1 || missing.Symbols[0] != "<speed>" {
		t.Errorf("missing = %v, want [<speed>]", missing.Symbols)
	}

	// The name token alone does not satisfy the parameter.
	p = New(tree)
	advance(t, p, "set", "speed")
	if _, err := p.Accept(); !errors.As(err, &missing) {
		t.Fatalf("Accept after name token = %v, want MissingParameterError", err)
	}

	p = New(tree)
	advance(t, p, "set", "speed", "100")
	res, err := p.Accept()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Bindings) != 1 || res.Bindings[0].Value != "100" {
		t.Errorf("bindings = %v, want speed=100", res.Bindings)
	}
}

func TestWrapperTransparency(t *testing.T) {
	b := cmdtree.NewBuilder()
	root := b.Root()
	show := b.Command(cmdtree.CommandSpec{Name: "show", Help: "Show information"})
	b.AddSuccessor(root, show)
	b.AddSuccessor(root, b.Wrapper("help", "Describe commands", root))
	tree, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	p := New(tree)
	advance(t, p, "help", "show")
	if p.Command() == nil || p.Command().Name() != "show" {
		t.Fatal("command through wrapper not resolved")
	}
	if _, err := p.Accept(); err != nil {
		t.Errorf("Accept through wrapper: %v", err)
	}

	// The wrapper completes over the wrapped node's children.
	p = New(tree)
	advance(t, p, "help")
	names := map[string]bool{}
	for _, c := range p.Complete("") {
		names[c.Name] = true
	}
	if !names["show"] {
		t.Errorf("wrapper completions = %v, want show present", names)
	}

	// A wrapper alone resolves no command.
	p = New(tree)
	advance(t, p, "help")
	_, err = p.Accept()
	var incomplete *IncompleteCommandError
	if !errors.As(err, &incomplete) {
		t.Errorf("Accept = %v, want IncompleteCommandError", err)
	}
}

func TestIncompleteCommand(t *testing.T) {
	tree := showGrammar(t)
	p := New(tree)
	_, err := p.Accept()
	var incomplete *IncompleteCommandError
	if !errors.As(err, &incomplete) {
		t.Fatalf("Accept on empty line = %v, want IncompleteCommandError", err)
	}
}

func TestNoMatchAtRoot(t *testing.T) {
	tree := showGrammar(t)
	p := New(tree)
	err := p.Advance("bogus")
	var noMatch *NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("Advance = %v, want NoMatchError", err)
	}
}

func TestCandidateSymbols(t *testing.T) {
	b := cmdtree.NewBuilder()
	root := b.Root()
	cmd := b.Command(cmdtree.CommandSpec{Name: "ping"})
	b.AddSuccessor(root, cmd)
	b.AddParameter(cmd, b.Simple(cmdtree.ParameterSpec{Name: "host", Priority: -20, Help: "Destination"}))
	b.AddNamed(cmd, b.Named(cmdtree.ParameterSpec{Name: "count", Help: "Probe count"}))
	tree, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	p := New(tree)
	advance(t, p, "ping")
	got := p.Complete("")
	if len(got) != 2 {
		t.Fatalf("candidates = %v, want 2", got)
	}
	if got[0].Name != "count" || got[0].Symbol != "count <count>" {
		t.Errorf("candidate 0 = %+v", got[0])
	}
	if got[1].Name != "<host>" || got[1].Symbol != "<host>" {
		t.Errorf("candidate 1 = %+v", got[1])
	}
}
