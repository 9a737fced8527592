package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dl/linegrep/internal/cli"
)

var (
	patterns      []string
	fixed         bool
	pcre          bool
	ignoreCase    bool
	smartCase     bool
	invert        bool
	multiLine     bool
	lineNumbers   bool
	countOnly     bool
	filesOnly     bool
	beforeContext int
	afterContext  int
	bothContext   int
	nullData      bool
	recursive     bool
	noIgnore      bool
	hidden        bool
	searchBinary  bool
	follow        bool
	jsonOutput    bool
	colorWhen     string
	workers       int
	heapLimit     int
	noMmap        bool
	mmapThreshold int64
)

var rootCmd = &cobra.Command{
	Use:   "linegrep [flags] PATTERN [PATH ...]",
	Short: "Line-oriented search over files, directories, and streams",
	Long: `linegrep searches for lines matching a pattern, printing each match
with optional context, line numbers, and highlighting.

With no paths, it searches standard input. With -r it walks
directories, honoring .gitignore files. With --follow it watches
files and searches content as it is appended.`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(run(args))
	},
	SilenceUsage: true,
}

func run(args []string) int {
	if len(patterns) == 0 {
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "linegrep: no pattern specified (try --help)")
			return 2
		}
		patterns = args[:1]
		args = args[1:]
	}

	var color cli.ColorMode
	switch colorWhen {
	case "auto":
		color = cli.ColorAuto
	case "always":
		color = cli.ColorAlways
	case "never":
		color = cli.ColorNever
	default:
		fmt.Fprintf(os.Stderr, "linegrep: invalid --color value %q (want auto, always, or never)\n", colorWhen)
		return 2
	}

	if bothContext > 0 {
		if beforeContext == 0 {
			beforeContext = bothContext
		}
		if afterContext == 0 {
			afterContext = bothContext
		}
	}

	cfg := cli.Config{
		Patterns:      patterns,
		Fixed:         fixed,
		PCRE:          pcre,
		IgnoreCase:    ignoreCase,
		SmartCase:     smartCase,
		Invert:        invert,
		MultiLine:     multiLine,
		LineNumbers:   lineNumbers,
		CountOnly:     countOnly,
		FileNamesOnly: filesOnly,
		ContextBefore: beforeContext,
		ContextAfter:  afterContext,
		NullData:      nullData,
		Recursive:     recursive,
		NoIgnore:      noIgnore,
		Hidden:        hidden,
		SearchBinary:  searchBinary,
		Follow:        follow,
		JSONOutput:    jsonOutput,
		Color:         color,
		Workers:       workers,
		HeapLimit:     heapLimit,
		NoMmap:        noMmap,
		MmapThreshold: mmapThreshold,
		Paths:         args,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "linegrep: %v\n", err)
		return 2
	}
	return cli.Run(cfg)
}

func init() {
	f := rootCmd.Flags()
	f.StringArrayVarP(&patterns, "regexp", "e", nil, "pattern to search for; may repeat")
	f.BoolVarP(&fixed, "fixed-strings", "F", false, "treat patterns as literal strings")
	f.BoolVarP(&pcre, "pcre", "P", false, "use PCRE syntax (lookarounds, backreferences)")
	f.BoolVarP(&ignoreCase, "ignore-case", "i", false, "case-insensitive matching")
	f.BoolVarP(&smartCase, "smart-case", "S", false, "case-insensitive unless a pattern has upper case")
	f.BoolVarP(&invert, "invert-match", "v", false, "report lines that do not match")
	f.BoolVarP(&multiLine, "multiline", "U", false, "allow matches to span lines")
	f.BoolVarP(&lineNumbers, "line-number", "n", false, "print 1-based line numbers")
	f.BoolVarP(&countOnly, "count", "c", false, "print only a match count per file")
	f.BoolVarP(&filesOnly, "files-with-matches", "l", false, "print only names of matching files")
	f.IntVarP(&beforeContext, "before-context", "B", 0, "print N lines before each match")
	f.IntVarP(&afterContext, "after-context", "A", 0, "print N lines after each match")
	f.IntVarP(&bothContext, "context", "C", 0, "print N lines around each match")
	f.BoolVarP(&nullData, "null-data", "z", false, "lines are NUL-terminated instead of newline")
	f.BoolVarP(&recursive, "recursive", "r", false, "walk directories, honoring .gitignore")
	f.BoolVar(&noIgnore, "no-ignore", false, "do not honor .gitignore files")
	f.BoolVar(&hidden, "hidden", false, "search hidden files and directories")
	f.BoolVar(&searchBinary, "binary", false, "search files that look binary")
	f.BoolVarP(&follow, "follow", "f", false, "watch files and search appended content")
	f.BoolVar(&jsonOutput, "json", false, "emit results as JSON lines")
	f.StringVar(&colorWhen, "color", "auto", "when to color output: auto, always, never")
	f.IntVarP(&workers, "workers", "j", 0, "parallel workers for -r (0 = automatic)")
	f.IntVar(&heapLimit, "heap-limit", -1, "max bytes of search buffering (-1 = unlimited)")
	f.BoolVar(&noMmap, "no-mmap", false, "never memory-map files")
	f.Int64Var(&mmapThreshold, "mmap-threshold", 0, "file size at which to prefer mmap (0 = default)")
}

func main() {
	rootCmd.SetArgs(append(cli.LoadConfigArgs(), os.Args[1:]...))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
}
