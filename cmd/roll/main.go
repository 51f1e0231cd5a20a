package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sambeau/roll/config"
	"github.com/sambeau/roll/pkg/dice/dice"
	derrors "github.com/sambeau/roll/pkg/dice/errors"
	"github.com/sambeau/roll/pkg/dice/repl"
)

// Version is set at compile time via -ldflags
var Version = "0.3.1"

var (
	// Display flags
	helpFlag        = flag.Bool("h", false, "Show help message")
	helpLongFlag    = flag.Bool("help", false, "Show help message")
	versionFlag     = flag.Bool("V", false, "Show version information")
	versionLongFlag = flag.Bool("version", false, "Show version information")
	verboseFlag     = flag.Bool("v", false, "Show individual die rolls")
	verboseLongFlag = flag.Bool("verbose", false, "Show individual die rolls")
	noColorFlag     = flag.Bool("no-color", false, "Disable styled output")

	// Evaluation flags
	seedFlag     = flag.Int64("s", 0, "Seed the dice (same seed, same rolls)")
	seedLongFlag = flag.Int64("seed", 0, "Seed the dice (same seed, same rolls)")
	limitFlag    = flag.Int("limit", 0, "Explosion safety limit")
	configFlag   = flag.String("config", "", "Config file path")
)

var (
	resultStyle = lipgloss.NewStyle().Bold(true)
	rollsStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func main() {
	flag.Usage = printHelp
	flag.Parse()

	if *helpFlag || *helpLongFlag {
		printHelp()
		os.Exit(0)
	}

	if *versionFlag || *versionLongFlag {
		fmt.Printf("roll version %s\n", Version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFlag, os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	// Flags override config
	if *verboseFlag || *verboseLongFlag {
		cfg.Verbose = true
	}
	if *noColorFlag {
		cfg.Color = false
	}
	if *limitFlag > 0 {
		cfg.ExplosionLimit = *limitFlag
	}
	seed := cfg.Seed
	if *seedFlag != 0 {
		seed = *seedFlag
	}
	if *seedLongFlag != 0 {
		seed = *seedLongFlag
	}
	cfg.Seed = seed

	// REPL mode when no expression given
	if len(flag.Args()) == 0 {
		repl.Start(os.Stdout, cfg, Version)
		return
	}

	// Quoting protects characters like * and ( from the shell, but unquoted
	// pieces arrive as separate arguments; join them back into one input.
	input := strings.Join(flag.Args(), " ")

	results, err := dice.RollWith(input, dice.Options{
		Seed:           seed,
		ExplosionLimit: cfg.ExplosionLimit,
	})
	if err != nil {
		printError(err, cfg.Color)
		os.Exit(1)
	}

	for _, res := range results {
		fmt.Println(styled(resultStyle, strconv.FormatInt(res.Value, 10), cfg.Color))
		if cfg.Verbose && len(res.Rolls) > 0 {
			fmt.Println(styled(rollsStyle, formatRolls(res.Rolls), cfg.Color))
		}
	}
}

func printError(err error, color bool) {
	if rerr, ok := err.(*derrors.RollError); ok {
		fmt.Fprintln(os.Stderr, styled(errorStyle, rerr.PrettyString(), color))
		return
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
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

func printHelp() {
	fmt.Printf(`roll - dice notation roller version %s

Usage:
  roll [options] <expression>
  roll [options]              Start interactive REPL

Options:
  -h, --help            Show this help message
  -V, --version         Show version information
  -v, --verbose         Show individual die rolls
  -s, --seed <n>        Seed the dice (same seed, same rolls)
  --limit <n>           Explosion safety limit (default 1000)
  --config <path>       Config file (default ./roll.yaml, ~/.config/roll/roll.yaml)
  --no-color            Disable styled output

Notation:
  4d6           Roll four six-sided dice
  d20           Roll one twenty-sided die
  4d6kh3        Keep the highest three (kl keeps low)
  2d10dl1       Drop the lowest one (dh drops high)
  1d6!          Exploding die (roll again at the maximum face)
  1d10!8        Explode at 8 or higher
  3(1d6+2)      Roll 1d6+2 three times and sum the runs
  (2+1)d6       Counts and sides can be expressions

Examples:
  roll "4d6kh3"             Ability score roll
  roll -v "2d20kh1 + 5"     Advantage, showing both dice
  roll "3(4d6kh3)"          Three ability scores at once
  roll -s 7 "1d100"         Reproducible roll

For more information, visit: https://github.com/sambeau/roll
`, Version)
}
