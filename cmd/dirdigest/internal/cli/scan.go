package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"dirdigest/internal/digest"
	"dirdigest/internal/record"
)

var scanCmd = &cobra.Command{
	Use:   "scan <directory> [output]",
	Short: "Fingerprint a directory and save the record",
	Long: `Scans a directory and writes its record. The output path comes from the
argument, then output_file in the config; without either, or with "-", the
record is printed as JSON. Paths ending in .yaml or .yml are written as YAML.

A missing directory is created empty and yields an empty fingerprint.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	d, err := scanDirectory(args[0])
	if err != nil {
		return err
	}

	outputPath := current.cfg.OutputFile
	if len(args) == 2 {
		outputPath = args[1]
	}

	merkleRoot, err := d.MerkleRoot()
	if err != nil {
		return err
	}
	current.logger.Debug().Str("merkle_root", merkleRoot).Msg("computed merkle root")

	if outputPath == "" || outputPath == "-" {
		r, err := d.Record()
		if err != nil {
			return err
		}
		data, err := record.Marshal(r, record.JSON)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := digest.Save(d, outputPath); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Directory digest generated successfully\n")
	fmt.Fprintf(out, "  Digest:      %s\n", d.DirectoryDigest())
	fmt.Fprintf(out, "  Merkle root: %s\n", merkleRoot)
	fmt.Fprintf(out, "  Files:       %d\n", d.Len())
	fmt.Fprintf(out, "  Excluded:    %d\n", len(d.FilesExcluded()))
	fmt.Fprintf(out, "  Output:      %s\n", outputPath)
	return nil
}
