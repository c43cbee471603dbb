// Package cli implements an interactive readline shell over a frozen
// cmdtree grammar: tab completion, '?' help, and dispatch of accepted
// lines to command handlers.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/psaab/clitree/pkg/cmdtree"
	"github.com/psaab/clitree/pkg/metrics"
	"github.com/psaab/clitree/pkg/parser"
)

// ErrExit is returned by a handler to stop the shell loop.
var ErrExit = errors.New("exit")

// Config configures a Shell.
type Config struct {
	Tree        *cmdtree.Tree
	Banner      string
	HistoryFile string
	// Prompt overrides the default user@host> prompt.
	Prompt  string
	Logger  *slog.Logger
	Metrics *metrics.ParserMetrics
}

// Shell is the interactive command-line interface over one grammar.
type Shell struct {
	rl      *readline.Instance
	tree    *cmdtree.Tree
	banner  string
	history string
	prompt  string
	logger  *slog.Logger
	metrics *metrics.ParserMetrics
}

// New creates a new Shell. The grammar is shared read-only; any
// number of shells may run against the same tree concurrently.
func New(cfg Config) *Shell {
	prompt := cfg.Prompt
	if prompt == "" {
		hostname, _ := os.Hostname()
		if hostname == "" {
			hostname = "clitree"
		}
		username := os.Getenv("USER")
		if username == "" {
			username = "root"
		}
		prompt = fmt.Sprintf("%s@%s> ", username, hostname)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Shell{
		tree:    cfg.Tree,
		banner:  cfg.Banner,
		history: cfg.HistoryFile,
		prompt:  prompt,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

// Run starts the interactive loop and blocks until a handler returns
// ErrExit or input reaches EOF.
func (s *Shell) Run() error {
	var err error
	s.rl, err = readline.NewEx(&readline.Config{
		Prompt:          s.prompt,
		HistoryFile:     s.history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    &treeCompleter{shell: s},
		Listener:        readline.FuncListener(s.helpListener),
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	defer s.rl.Close()

	if s.banner != "" {
		fmt.Fprintln(s.rl.Stdout(), s.banner)
	}

	for {
		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				break
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := s.Dispatch(line); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			fmt.Fprintf(s.rl.Stderr(), "error: %v\n", err)
		}
	}
	return nil
}

// Dispatch parses one completed line against the grammar and invokes
// the accepted command's handler. The returned error is either a
// structured parse error, a handler error, or ErrExit.
func (s *Shell) Dispatch(line string) error {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}

	p := parser.New(s.tree)
	for _, token := range tokens {
		if err := p.Advance(token); err != nil {
			s.metrics.Token(tokenOutcome(err))
			s.metrics.Line(metrics.OutcomeIncomplete)
			return err
		}
		s.metrics.Token(metrics.OutcomeMatched)
	}

	res, err := p.Accept()
	if err != nil {
		s.metrics.Line(lineOutcome(err))
		return err
	}
	s.metrics.Line(metrics.OutcomeAccepted)

	if res.Handler == nil {
		return fmt.Errorf("%s: command is not complete", res.Command.Name())
	}

	s.logger.Debug("dispatch", "command", res.Command.Name(), "bindings", len(res.Bindings))
	if err := res.Handler(res.Command, res.Bindings); err != nil {
		if errors.Is(err, ErrExit) {
			return ErrExit
		}
		s.metrics.Line(metrics.OutcomeHandlerError)
		s.logger.Warn("handler failed", "command", res.Command.Name(), "err", err)
		return err
	}
	return nil
}

func tokenOutcome(err error) string {
	var ambiguous *parser.AmbiguousError
	if errors.As(err, &ambiguous) {
		return metrics.OutcomeAmbiguous
	}
	return metrics.OutcomeNoMatch
}

func lineOutcome(err error) string {
	var missing *parser.MissingParameterError
	if errors.As(err, &missing) {
		return metrics.OutcomeMissingParameter
	}
	return metrics.OutcomeIncomplete
}

// helpListener implements Junos-style '?' help: it strips the '?'
// readline already inserted, shows the candidates for the current
// position, and leaves the rest of the line as it was.
func (s *Shell) helpListener(line []rune, pos int, key rune) ([]rune, int, bool) {
	if key != '?' || pos < 1 {
		return line, pos, false
	}
	cleanLine := make([]rune, 0, len(line)-1)
	cleanLine = append(cleanLine, line[:pos-1]...)
	cleanLine = append(cleanLine, line[pos:]...)
	text := string(cleanLine[:pos-1])

	candidates := s.completions(text)
	if len(candidates) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "  (no help available)")
		return cleanLine, pos - 1, true
	}
	WriteHelp(s.rl.Stdout(), candidates)
	return cleanLine, pos - 1, true
}

// completions walks the completed words of text through a fresh
// parser and completes the trailing partial word, if any.
func (s *Shell) completions(text string) []parser.Candidate {
	words, partial := splitLine(text)
	p := parser.New(s.tree)
	for _, w := range words {
		if err := p.Advance(w); err != nil {
			return nil
		}
	}
	s.metrics.Completion()
	return p.Complete(partial)
}
