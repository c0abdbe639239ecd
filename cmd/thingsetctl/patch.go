package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thingset-io/thingset-core/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "patch <path> <json-map>",
		Short: "PATCH a container's children with new values",
		Long: `The patch command issues a PATCH request: every entry in
the payload map is type-checked before any write commits, so a bad entry
anywhere leaves every target unchanged.

Example:
  thingsetctl patch conf '{"LoadDisconnect_V":11.0}' --role expert`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(args[0], args[1])
		},
	}
	rootCmd.AddCommand(cmd)
}

func runPatch(path, payload string) error {
	_, ctx, err := newDeviceContext()
	if err != nil {
		return err
	}
	printVerbose("PATCH %s %s\n", path, payload)
	resp := server.DispatchText(ctx, "="+path+" "+payload)
	fmt.Println(resp)
	return nil
}
