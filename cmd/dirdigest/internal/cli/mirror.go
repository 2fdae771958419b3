package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"dirdigest/internal/actions"
	"dirdigest/internal/compare"
	"dirdigest/internal/mirror"
)

var mirrorFlags struct {
	dryRun  bool
	verify  bool
	workers int
}

var mirrorCmd = &cobra.Command{
	Use:   "mirror <source> <destination>",
	Short: "Make destination match source",
	Long: `Copies files that are missing or different in destination and deletes
files that source does not have. Source may be a directory or a saved record
whose directory still holds the files; destination is always scanned and is
created when missing.

Mirroring stops at the first failed action and leaves destination partially
updated. Running the command again converges it.

--dry-run records the actions instead of performing them.
--verify scans destination afterwards and fails if it does not match source.`,
	Args: cobra.ExactArgs(2),
	RunE: runMirror,
}

func init() {
	mirrorCmd.Flags().BoolVarP(&mirrorFlags.dryRun, "dry-run", "n", false,
		"Log actions without performing them")
	mirrorCmd.Flags().BoolVar(&mirrorFlags.verify, "verify", false,
		"Re-scan destination after mirroring and compare with source")
	mirrorCmd.Flags().IntVarP(&mirrorFlags.workers, "workers", "w", 1,
		"Number of concurrent copy/delete actions")

	rootCmd.AddCommand(mirrorCmd)
}

func runMirror(cmd *cobra.Command, args []string) error {
	source, err := resolve(args[0])
	if err != nil {
		return err
	}
	destination, err := scanDirectory(args[1])
	if err != nil {
		return err
	}

	logger := current.logger.With().Bool("dry_run", mirrorFlags.dryRun).Logger()

	var writer mirror.Actions = actions.NewOSFS()
	if mirrorFlags.dryRun {
		rec := actions.NewRecorder()
		rec.Base = actions.NewOSFS()
		writer = rec
	}

	engine := &mirror.Engine{
		Actions:  actions.NewLogging(writer, logger),
		Workers:  current.cfg.Workers,
		Progress: reporter("mirroring"),
	}

	result, err := engine.MirrorFrom(destination, source)
	if result != nil {
		fmt.Fprint(cmd.OutOrStdout(), compare.FormatMirror(result))
	}
	if err != nil {
		return fmt.Errorf("mirror aborted: %w", err)
	}

	if mirrorFlags.verify && !mirrorFlags.dryRun {
		after, err := scanDirectory(filepath.Clean(args[1]))
		if err != nil {
			return err
		}
		if after.NotEqual(source) {
			return fmt.Errorf("destination %s does not match source after mirroring", after.Directory())
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Destination verified")
	}

	return nil
}
