package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thingset-io/thingset-core/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "delete <path> <json-payload>",
		Short: "DELETE a subset member",
		Long: `The delete command issues a DELETE request: on a subset
endpoint, clears the named object's subset bit. Any other endpoint type
returns Method Not Allowed.

Example:
  thingsetctl delete .report '"Bat_V"'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(args[0], args[1])
		},
	}
	rootCmd.AddCommand(cmd)
}

func runDelete(path, payload string) error {
	_, ctx, err := newDeviceContext()
	if err != nil {
		return err
	}
	printVerbose("DELETE %s %s\n", path, payload)
	resp := server.DispatchText(ctx, "-"+path+" "+payload)
	fmt.Println(resp)
	return nil
}
