// Package repl implements the interactive roll prompt.
package repl

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/sambeau/roll/config"
	"github.com/sambeau/roll/pkg/dice/errors"
	"github.com/sambeau/roll/pkg/dice/evaluator"
	"github.com/sambeau/roll/pkg/dice/lexer"
	"github.com/sambeau/roll/pkg/dice/parser"
)

const PROMPT = ">> "

const ROLL_LOGO = `
█▀█ █▀█ █░░ █░░
█▀▄ █▄█ █▄▄ █▄▄ `

// Completion words: REPL commands plus the modifier spellings
var completionWords = []string{
	":help", ":verbose", ":seed", ":limit",
	"exit", "quit",
	"kh", "kl", "dh", "dl",
}

var (
	resultStyle = lipgloss.NewStyle().Bold(true)
	rollsStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Start starts the REPL with line editing, history, and tab completion
func Start(out io.Writer, cfg *config.Config, version string) {
	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort the current line
	line.SetCtrlCAborts(true)

	line.SetCompleter(func(line string) []string {
		return filterCompletions(line)
	})

	// Load command history from file
	if f, err := os.Open(cfg.HistoryFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	// Save history on exit
	defer func() {
		if f, err := os.Create(cfg.HistoryFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	verbose := cfg.Verbose
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	limit := cfg.ExplosionLimit

	eval := newEvaluator(seed, limit)

	fmt.Fprintf(out, "%s", styled(rollsStyle, ROLL_LOGO, cfg.Color))
	fmt.Fprintln(out, " v", version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type a roll like 4d6kh3 + 2, or 'exit' to quit")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	for {
		input, err := line.Prompt(PROMPT)
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}

		if trimmed == "exit" || trimmed == "quit" {
			fmt.Fprintln(out, "Goodbye!")
			return
		}

		// REPL commands start with :
		if strings.HasPrefix(trimmed, ":") {
			switch {
			case trimmed == ":help":
				printHelp(out)
			case trimmed == ":verbose":
				verbose = !verbose
				fmt.Fprintf(out, "verbose %s\n", onOff(verbose))
			case strings.HasPrefix(trimmed, ":seed"):
				arg := strings.TrimSpace(strings.TrimPrefix(trimmed, ":seed"))
				n, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					fmt.Fprintln(out, "usage: :seed <number>")
					continue
				}
				seed = n
				eval = newEvaluator(seed, limit)
				fmt.Fprintf(out, "seed set to %d\n", seed)
			case strings.HasPrefix(trimmed, ":limit"):
				arg := strings.TrimSpace(strings.TrimPrefix(trimmed, ":limit"))
				n, err := strconv.Atoi(arg)
				if err != nil || n <= 0 {
					fmt.Fprintln(out, "usage: :limit <number>")
					continue
				}
				limit = n
				eval = newEvaluator(seed, limit)
				fmt.Fprintf(out, "explosion limit set to %d\n", limit)
			default:
				fmt.Fprintf(out, "unknown command %q (try :help)\n", trimmed)
			}
			continue
		}

		line.AppendHistory(input)

		l := lexer.New(strings.ToLower(input))
		p := parser.New(l)
		program := p.ParseProgram()

		if errs := p.StructuredErrors(); len(errs) != 0 {
			printErrors(out, errs, cfg.Color)
			continue
		}

		results, evalErr := eval.EvalProgram(program)
		if evalErr != nil {
			printErrors(out, []*errors.RollError{evalErr.ToRollError()}, cfg.Color)
			continue
		}

		for _, res := range results {
			fmt.Fprintln(out, styled(resultStyle, strconv.FormatInt(res.Value, 10), cfg.Color))
			if verbose && len(res.Rolls) > 0 {
				fmt.Fprintln(out, styled(rollsStyle, formatRolls(res.Rolls), cfg.Color))
			}
		}
	}
}

func newEvaluator(seed int64, limit int) *evaluator.Evaluator {
	return evaluator.New(evaluator.NewSource(seed), evaluator.WithExplosionLimit(limit))
}

func printHelp(out io.Writer) {
	fmt.Fprint(out, `REPL commands:
  :help        Show this help
  :verbose     Toggle showing individual die rolls
  :seed <n>    Reseed the dice (same seed, same rolls)
  :limit <n>   Set the explosion safety limit
  exit, quit   Leave the REPL

Notation:
  4d6          roll four six-sided dice
  4d6kh3       keep the highest three
  2d10dl1      drop the lowest one
  1d6!         exploding die
  3(1d6+2)     roll 1d6+2 three times and sum the runs
`)
}

func printErrors(out io.Writer, errs []*errors.RollError, color bool) {
	for _, err := range errs {
		fmt.Fprintln(out, styled(errorStyle, err.PrettyString(), color))
	}
}

func formatRolls(rolls []int64) string {
	parts := make([]string, len(rolls))
	for i, v := range rolls {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func styled(style lipgloss.Style, s string, color bool) string {
	if !color {
		return s
	}
	return style.Render(s)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func filterCompletions(line string) []string {
	var matches []string

	if line == "" {
		return completionWords
	}

	for _, word := range completionWords {
		if strings.HasPrefix(word, line) {
			matches = append(matches, word)
		}
	}

	return matches
}
