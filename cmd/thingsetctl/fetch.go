package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thingset-io/thingset-core/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "fetch <path> <json-payload>",
		Short: "FETCH one or more named children of a container",
		Long: `The fetch command issues a FETCH request: payload is a
single name/id, a JSON array of names/ids, or "null" for discovery.

Example:
  thingsetctl fetch meas '["Bat_V","Bat_A"]'
  thingsetctl fetch meas '"Bat_V"'
  thingsetctl fetch meas null`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(args[0], args[1])
		},
	}
	rootCmd.AddCommand(cmd)
}

func runFetch(path, payload string) error {
	_, ctx, err := newDeviceContext()
	if err != nil {
		return err
	}
	printVerbose("FETCH %s %s\n", path, payload)
	resp := server.DispatchText(ctx, "?"+path+" "+payload)
	fmt.Println(resp)
	return nil
}
