package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thingset-io/thingset-core/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "post <path> [json-payload]",
		Short: "POST to invoke an EXEC or append to a SUBSET",
		Long: `The post command issues a POST request: on an exec
endpoint, payload is the positional argument array; on a subset endpoint,
payload is the name/id of the object to add to the subset.

Example:
  thingsetctl post rpc/x-reset
  thingsetctl post .report '"Bat_V"'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := ""
			if len(args) > 1 {
				payload = args[1]
			}
			return runPost(args[0], payload)
		},
	}
	rootCmd.AddCommand(cmd)
}

func runPost(path, payload string) error {
	_, ctx, err := newDeviceContext()
	if err != nil {
		return err
	}
	printVerbose("POST %s %s\n", path, payload)
	req := "!" + path
	if payload != "" {
		req += " " + payload
	}
	resp := server.DispatchText(ctx, req)
	fmt.Println(resp)
	return nil
}
