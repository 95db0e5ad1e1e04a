package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/chatstat/internal/analyze"
	"github.com/Zuo-Peng/chatstat/internal/config"
	"github.com/Zuo-Peng/chatstat/internal/errs"
	"github.com/Zuo-Peng/chatstat/internal/parse"
	"github.com/Zuo-Peng/chatstat/internal/scan"
)

var version = "dev"

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:           "chatstat",
		Short:         "Find, parse and summarize WhatsApp chat exports",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(findCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(readCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(openCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(doctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the config and builds the stderr logger every command uses.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.Level()
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

func scanOptions(cfg *config.Config, logger *slog.Logger) scan.Options {
	return scan.Options{Patterns: cfg.Patterns, Encoding: cfg.Encoding, Logger: logger}
}

func discover(cfg *config.Config, logger *slog.Logger, root string) ([]scan.ExportFile, []scan.Warning, error) {
	return scan.Discover(cfg.Roots, root, scanOptions(cfg, logger))
}

// analyzeOptions resolves the date order flag, falling back to config.
func analyzeOptions(cfg *config.Config, logger *slog.Logger, order string) (analyze.Options, error) {
	if order == "" {
		order = cfg.DateOrder
	}
	o, ok := parse.ParseDateOrder(order)
	if !ok {
		return analyze.Options{}, errs.New(errs.InvalidArgument, "", "unknown date order %q (want day-first or month-first)", order)
	}
	return analyze.Options{DateOrder: o, Encoding: cfg.Encoding, Logger: logger}, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
