// clitree is a demo device-configuration console built on the
// clitree grammar engine. It wires a small command tree exercising
// every node kind into the interactive shell.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/psaab/clitree/pkg/cli"
	"github.com/psaab/clitree/pkg/cmdtree"
	"github.com/psaab/clitree/pkg/metrics"
)

const version = "0.1.0"

func main() {
	history := flag.String("history", "/tmp/clitree_history", "readline history file")
	prompt := flag.String("prompt", "", "prompt override (default user@host>)")
	flag.Parse()

	tree, err := buildGrammar()
	if err != nil {
		fmt.Fprintf(os.Stderr, "clitree: grammar: %v\n", err)
		os.Exit(1)
	}

	m := metrics.New()
	if err := m.Register(prometheus.DefaultRegisterer); err != nil {
		fmt.Fprintf(os.Stderr, "clitree: metrics: %v\n", err)
		os.Exit(1)
	}

	sh := cli.New(cli.Config{
		Tree:        tree,
		Banner:      "clitree demo console\nType '?' for help",
		HistoryFile: *history,
		Prompt:      *prompt,
		Metrics:     m,
	})
	if err := sh.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "clitree: %v\n", err)
		os.Exit(1)
	}
}

func buildGrammar() (*cmdtree.Tree, error) {
	b := cmdtree.NewBuilder()
	root := b.Root()

	show := b.Command(cmdtree.CommandSpec{Name: "show", Help: "Show information"})
	b.AddSuccessor(root, show)

	ver := b.Command(cmdtree.CommandSpec{
		Name: "version", Help: "Show software version", Handler: showVersion,
	})
	b.AddSuccessor(show, ver)

	ifaces := b.Command(cmdtree.CommandSpec{
		Name: "interfaces", Help: "Show interface status", Handler: showInterfaces,
	})
	b.AddSuccessor(show, ifaces)
	b.AddParameter(ifaces, b.Flag(cmdtree.ParameterSpec{
		Name: "terse", Help: "Summary output",
	}))

	ping := b.Command(cmdtree.CommandSpec{
		Name: "ping", Help: "Ping remote host", Handler: pingHost,
	})
	b.AddSuccessor(root, ping)
	// Below keyword priority so "ping count 5" resolves the keyword,
	// not a host literally named "count".
	b.AddParameter(ping, b.Simple(cmdtree.ParameterSpec{
		Name: "host", Help: "Destination host", Required: true, Priority: -20,
	}))
	b.AddNamed(ping, b.Named(cmdtree.ParameterSpec{
		Name: "count", Help: "Number of probes to send",
	}))
	b.AddParameter(ping, b.Flag(cmdtree.ParameterSpec{
		Name: "rapid", Help: "Send probes back to back",
	}))

	set := b.Command(cmdtree.CommandSpec{Name: "set", Help: "Change system settings"})
	b.AddSuccessor(root, set)
	hostname := b.Command(cmdtree.CommandSpec{
		Name: "hostname", Help: "Set system host name", Handler: setHostname,
	})
	b.AddSuccessor(set, hostname)
	b.AddParameter(hostname, b.Simple(cmdtree.ParameterSpec{
		Name: "name", Help: "New host name", Required: true,
	}))

	// Matchable but never completed.
	b.AddSuccessor(root, b.Command(cmdtree.CommandSpec{
		Name: "debug", Hidden: true, Help: "Show engine internals", Handler: showDebug,
	}))

	b.AddSuccessor(root, b.Command(cmdtree.CommandSpec{
		Name: "quit", Help: "Exit CLI", Handler: exitShell,
	}))
	b.AddSuccessor(root, b.Command(cmdtree.CommandSpec{
		Name: "exit", Help: "Exit CLI", Handler: exitShell,
	}))

	b.AddSuccessor(root, b.Wrapper("help", "Describe available commands", root))

	return b.Build(root)
}

func showVersion(cmd *cmdtree.CommandNode, args []cmdtree.Binding) error {
	fmt.Printf("clitree demo console %s\n", version)
	return nil
}

func showInterfaces(cmd *cmdtree.CommandNode, args []cmdtree.Binding) error {
	terse := hasFlag(args, "terse")
	for _, name := range []string{"ge-0/0/0", "ge-0/0/1", "lo0"} {
		if terse {
			fmt.Printf("%-12s up\n", name)
			continue
		}
		fmt.Printf("Physical interface: %s, Enabled, Physical link is Up\n", name)
		fmt.Println("  Link-level type: Ethernet, MTU: 1500")
	}
	return nil
}

func pingHost(cmd *cmdtree.CommandNode, args []cmdtree.Binding) error {
	host, _ := bindingValue(args, "host")
	count := 5
	if v, ok := bindingValue(args, "count"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("ping: invalid count %q", v)
		}
		count = n
	}
	mode := "1s interval"
	if hasFlag(args, "rapid") {
		mode = "rapid"
	}
	fmt.Printf("PING %s: %d probes, %s\n", host, count, mode)
	for i := 0; i < count; i++ {
		fmt.Printf("64 bytes from %s: icmp_seq=%d time=0.042 ms\n", host, i)
	}
	return nil
}

func setHostname(cmd *cmdtree.CommandNode, args []cmdtree.Binding) error {
	name, _ := bindingValue(args, "name")
	fmt.Printf("hostname set to %s\n", name)
	return nil
}

func showDebug(cmd *cmdtree.CommandNode, args []cmdtree.Binding) error {
	fmt.Println("engine: visited-set matcher, priority disambiguation")
	return nil
}

func exitShell(cmd *cmdtree.CommandNode, args []cmdtree.Binding) error {
	return cli.ErrExit
}

// bindingValue returns the last bound value for the named parameter.
func bindingValue(args []cmdtree.Binding, name string) (string, bool) {
	value := ""
	found := false
	for _, b := range args {
		if b.Parameter.Name() == name {
			value = b.Value
			found = true
		}
	}
	return value, found
}

func hasFlag(args []cmdtree.Binding, name string) bool {
	_, ok := bindingValue(args, name)
	return ok
}
