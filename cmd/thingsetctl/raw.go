package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thingset-io/thingset-core/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "raw <hex-request>",
		Short: "Send a raw binary-encoded request and print the hex response",
		Long: `The raw command bypasses the text codec entirely and drives the CBOR-
subset binary wire directly, for exercising the binary codec the way a
serial/CAN transport would feed bytes straight to the dispatcher.

Example:
  # GET "/" : method 0x01, endpoint "" (text string length 0: 0x60)
  thingsetctl raw 016000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRaw(args[0])
		},
	}
	rootCmd.AddCommand(cmd)
}

func runRaw(hexReq string) error {
	_, ctx, err := newDeviceContext()
	if err != nil {
		return err
	}
	req, err := hex.DecodeString(hexReq)
	if err != nil {
		return fmt.Errorf("decoding hex request: %w", err)
	}
	resp := server.DispatchBinary(ctx, req)
	fmt.Println(hex.EncodeToString(resp))
	return nil
}
