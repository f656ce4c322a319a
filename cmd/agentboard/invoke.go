package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// newInvokeCommand builds the same Dispatcher the HTTP Gateway uses and
// prints its JSON result to stdout, keeping the Dispatcher reachable
// in-process as well as over HTTP.
func newInvokeCommand(resolveDataDir func() (string, error), debug *bool) *cobra.Command {
	var argsJSON string

	cmd := &cobra.Command{
		Use:   "invoke <command>",
		Short: "Invoke one RPC Dispatcher command and print its JSON result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildContainer(resolveDataDir, *debug)
			if err != nil {
				return err
			}

			rawArgs := map[string]any{}
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &rawArgs); err != nil {
					return fmt.Errorf("parse --args: %w", err)
				}
			}

			result, err := c.Dispatcher.Dispatch(cmd.Context(), args[0], rawArgs)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&argsJSON, "args", "", "command arguments as a JSON object")
	return cmd
}
