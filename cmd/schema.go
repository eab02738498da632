package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/httpapi"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema accepted by POST /api/batches rows",
	RunE: func(cmd *cobra.Command, _ []string) error {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(httpapi.NormalizedRowSchema()); err != nil {
			return errs.Wrap(err, "write schema output")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
