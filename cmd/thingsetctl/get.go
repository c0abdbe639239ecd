package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thingset-io/thingset-core/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "GET a container's listing or a single object's value",
		Long: `The get command issues a GET request: addressed at a group, it
returns the values of the children the caller may read (nested containers
show as null); a trailing "/" requests child names only. The root path "/"
always returns names only, and an exec without a trailing "/" is a Bad
Request. Addressed at a single scalar object, it returns that object's
whole value.

Example:
  thingsetctl get /
  thingsetctl get meas
  thingsetctl get meas/Bat_V`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args[0])
		},
	}
	rootCmd.AddCommand(cmd)
}

func runGet(path string) error {
	_, ctx, err := newDeviceContext()
	if err != nil {
		return err
	}
	printVerbose("GET %s\n", path)
	resp := server.DispatchText(ctx, "?"+path)
	fmt.Println(resp)
	return nil
}
