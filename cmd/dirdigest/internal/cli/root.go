// Package cli implements the dirdigest command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"dirdigest/internal/config"
	"dirdigest/internal/filter"
	"dirdigest/internal/hash"
	"dirdigest/internal/logging"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// Exit codes.
const (
	exitOK      = 0
	exitChanges = 1
	exitError   = 2
)

// errChanges signals a successful run that found differences.
var errChanges = errors.New("changes detected")

// globalFlags holds persistent flags that apply to all commands
var globalFlags struct {
	configPath string
	glob       string
	rules      []string
	algorithm  string
	logLevel   string
	progress   bool
}

// settings is the config file merged with flags, built before each command.
type settings struct {
	cfg       *config.Config
	include   filter.Predicate
	algorithm hash.Algorithm
	logger    zerolog.Logger
}

var current settings

var rootCmd = &cobra.Command{
	Use:   "dirdigest",
	Short: "Fingerprint, compare and mirror directory trees",
	Long: `Dirdigest computes a SHA-256 fingerprint of a directory tree: one digest
over all included file contents plus one digest per file.

Fingerprints can be saved as records, compared against each other or against
live directories, and used to mirror a source tree onto a destination with
the minimal set of copies and deletions.

Filter rules are signed regular expressions matched case-insensitively
against paths relative to the scanned directory ("/dir/file"). A file matched
by no rule is included; otherwise the last matching rule decides:

  dirdigest scan -r '-.*' -r '+\.bin$' ./data`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dirdigest %s (%s)\n", Version, GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&globalFlags.configPath, "config", "c", "dirdigest.yaml",
		"Config file path (.yaml or .toml)")
	flags.StringVar(&globalFlags.glob, "glob", "",
		"Glob selecting candidate files (default from config, **/*)")
	flags.StringArrayVarP(&globalFlags.rules, "rule", "r", nil,
		"Filter rule, +regex or -regex (repeatable, replaces config rules)")
	flags.StringVar(&globalFlags.algorithm, "algorithm", "",
		"Hash algorithm: sha256 or xxh64 (xxh64 digests cannot be saved)")
	flags.StringVar(&globalFlags.logLevel, "log-level", "",
		"Log level: debug, info, warn, error")
	flags.BoolVar(&globalFlags.progress, "progress", false,
		"Show progress bars on stderr")
}

// loadSettings merges the config file with flags. Flags win.
func loadSettings(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(globalFlags.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("glob") {
		cfg.Glob = globalFlags.glob
	}
	if flags.Changed("rule") {
		cfg.Rules = globalFlags.rules
	}
	if flags.Changed("algorithm") {
		cfg.Algorithm = globalFlags.algorithm
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = globalFlags.logLevel
	}
	if flags.Changed("workers") {
		cfg.Workers = mirrorFlags.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	include, err := filter.Compile(cfg.Rules)
	if err != nil {
		return err
	}
	alg, err := hash.Lookup(cfg.Algorithm)
	if err != nil {
		return err
	}
	logger, err := logging.InitLogger("dirdigest", cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	current = settings{
		cfg:       cfg,
		include:   include,
		algorithm: alg,
		logger:    logger,
	}
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return run(os.Args[1:])
}

func run(args []string) int {
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errChanges):
		return exitChanges
	default:
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return exitError
	}
}
