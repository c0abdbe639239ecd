package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thingset-io/thingset-core/importexport"
)

var importIn string

func init() {
	cmd := &cobra.Command{
		Use:   "import <hex-cbor>",
		Short: "Restore a previously exported CBOR map into the device tree",
		Long: `The import command decodes a CBOR {id -> value} map and writes every
entry whose id is known to the device tree. Unknown ids are
silently skipped; a type mismatch on a known id aborts the whole import.
Pass the map as a hex string, or via --in to read raw CBOR bytes from a
file.

Example:
  thingsetctl export --out conf.cbor
  thingsetctl import --in conf.cbor`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var hexArg string
			if len(args) == 1 {
				hexArg = args[0]
			}
			return runImport(hexArg)
		},
	}
	cmd.Flags().StringVar(&importIn, "in", "", "Read raw CBOR bytes from this file instead of a hex argument")
	rootCmd.AddCommand(cmd)
}

func runImport(hexArg string) error {
	dev, _, err := newDeviceContext()
	if err != nil {
		return err
	}

	var buf []byte
	switch {
	case importIn != "":
		buf, err = os.ReadFile(importIn)
		if err != nil {
			return fmt.Errorf("reading %s: %w", importIn, err)
		}
	case hexArg != "":
		buf, err = hex.DecodeString(hexArg)
		if err != nil {
			return fmt.Errorf("decoding hex payload: %w", err)
		}
	default:
		return fmt.Errorf("import needs a hex payload argument or --in <file>")
	}

	if err := importexport.Import(dev.Registry, buf); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	printVerbose("import committed\n")
	fmt.Println("ok")
	return nil
}
