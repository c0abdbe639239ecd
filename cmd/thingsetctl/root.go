// Command thingsetctl is a cobra/viper CLI exercising the protocol core
// against a demo device tree: one verb per request method, plus
// export/import/dump.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thingset-io/thingset-core/examples/demo"
	"github.com/thingset-io/thingset-core/registry"
	"github.com/thingset-io/thingset-core/server"
)

var (
	verbose  bool
	jsonOut  bool
	cfgFile  string
	roleFlag string
	compact  bool
)

var rootCmd = &cobra.Command{
	Use:     "thingsetctl",
	Short:   "Inspect and drive a ThingSet device's object tree",
	Version: "0.1.0",
	Long: `thingsetctl sends GET/FETCH/PATCH/POST/DELETE requests to an
in-process ThingSet device tree, the same way a shell talks to a real
device over serial or CAN, minus the transport.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Accepted but unused: every command prints the response as is")
	rootCmd.PersistentFlags().BoolVar(&compact, "compact", false, "Omit the human-readable status word")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/thingsetctl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&roleFlag, "role", "", "Caller role for read/write checks (user, expert, maker, or a comma list; default from config, else user)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// newDeviceContext builds the demo device tree and a Context configured
// from the resolved CLI/config role and compact-mode flag.
func newDeviceContext() (*demo.Device, *server.Context, error) {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	role := roleFlag
	if role == "" {
		role = cfg.DefaultRole
	}
	mask, err := parseRoleMask(role)
	if err != nil {
		return nil, nil, err
	}

	dev, err := demo.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build device tree: %w", err)
	}
	ctx := server.NewContext(dev.Registry, mask)
	ctx.CompactResponses = compact
	ctx.WatchedSubsets = cfg.WatchedSubsets
	return dev, ctx, nil
}

// parseRoleMask turns a comma-separated role list into a symmetric
// read+write RoleMask; the CLI has no separate notion of reading as one
// role while writing as another, the way a transport-supplied mask can.
func parseRoleMask(s string) (registry.RoleMask, error) {
	var r registry.Role
	for _, tok := range splitRoles(s) {
		switch tok {
		case "user":
			r |= registry.RoleUser
		case "expert":
			r |= registry.RoleExpert
		case "maker":
			r |= registry.RoleMaker
		default:
			return 0, fmt.Errorf("unknown role %q (want user, expert, or maker)", tok)
		}
	}
	if r == 0 {
		return 0, fmt.Errorf("role mask is empty")
	}
	return registry.NewRoleMask(r, r), nil
}

func splitRoles(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
