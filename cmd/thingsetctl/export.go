package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thingset-io/thingset-core/importexport"
)

var exportOut string

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the .report subset to a CBOR map, for persistence",
		Long: `The export command builds a CBOR {id -> value} map of every
object whose subset bit matches the report subset (bit 0). With --out,
the raw CBOR bytes are written to a file; otherwise the hex encoding is
printed.

Example:
  thingsetctl export --out conf.cbor
  thingsetctl export`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport()
		},
	}
	cmd.Flags().StringVar(&exportOut, "out", "", "Write raw CBOR bytes to this file instead of printing hex")
	rootCmd.AddCommand(cmd)
}

func runExport() error {
	dev, _, err := newDeviceContext()
	if err != nil {
		return err
	}
	buf, err := importexport.Export(dev.Registry, 1, 0)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if exportOut != "" {
		if err := os.WriteFile(exportOut, buf, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", exportOut, err)
		}
		printVerbose("wrote %d bytes to %s\n", len(buf), exportOut)
		return nil
	}
	fmt.Println(hex.EncodeToString(buf))
	return nil
}
