package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <edit-token>",
		Short: "Print a stored submission as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newClient()
			if err != nil {
				return err
			}
			stored, err := client.OpenEdit(cmd.Context(), args[0])
			if err != nil {
				return describeEditError(err)
			}

			// Round-trip through JSON so the YAML keys match the API.
			raw, err := json.Marshal(stored)
			if err != nil {
				return err
			}
			var doc map[string]interface{}
			if err := json.Unmarshal(raw, &doc); err != nil {
				return err
			}
			out, err := yaml.Marshal(doc)
			if err != nil {
				return fmt.Errorf("encode submission: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
