package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thingset-io/thingset-core/statement"
)

func init() {
	cmd := &cobra.Command{
		Use:   "dump <path>",
		Short: "Emit a statement for a top-level SUBSET or GROUP endpoint",
		Long: `The dump command builds the same unsolicited publication message a
device would emit on its own schedule, without a request
driving it.

Example:
  thingsetctl dump .report
  thingsetctl dump meas`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args[0])
		},
	}
	rootCmd.AddCommand(cmd)
}

func runDump(path string) error {
	dev, _, err := newDeviceContext()
	if err != nil {
		return err
	}
	res, err := dev.Registry.ResolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", path, err)
	}
	s, err := statement.BuildText(dev.Registry, res.Object)
	if err != nil {
		return fmt.Errorf("build statement: %w", err)
	}
	if s == "" {
		return fmt.Errorf("%q is not a top-level SUBSET or GROUP endpoint", path)
	}
	fmt.Println(s)
	return nil
}
