package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"dinescout/pkg/disney"
	"dinescout/pkg/logger"
	"dinescout/pkg/places"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List reservation-accepting restaurants for a resort",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("Fetching restaurant list")

		lister := places.NewLister()
		results, err := lister.List(cmd.Context(), disney.Resort(flagResort))
		if err != nil {
			return err
		}

		places.RenderTable(os.Stdout, results)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
