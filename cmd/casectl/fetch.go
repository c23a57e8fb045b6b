package main

import (
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch case_id",
	Short: "Print a stored case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		rec, err := app.Service.Fetch(cmd.Context(), domain.CaseID(args[0]))
		if err != nil {
			return fmt.Errorf("%s: %w", domain.KindOf(err), err)
		}
		return printJSON(cmd.OutOrStdout(), rec)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
