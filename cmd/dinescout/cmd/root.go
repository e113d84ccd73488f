package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dinescout/pkg/config"
	"dinescout/pkg/disney"
	"dinescout/pkg/logger"
)

var (
	flagResort string
	flagConfig string

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "dinescout",
	Short: "Watch for newly opened dining reservations at Disney resorts",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !disney.ValidResort(flagResort) {
			return fmt.Errorf(`resort must be either "dlr" or "wdw"`)
		}

		var err error
		appConfig, err = config.LoadConfig(flagConfig)
		if err != nil {
			return err
		}

		return logger.InitLogger(appConfig.App.LogFile == "", appConfig.App.LogFile, appConfig.App.LogLevel)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagResort, "resort", "dlr", `resort to search: "dlr" or "wdw"`)
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ~/.dinescout.yaml)")
}

// Execute runs the CLI
func Execute() error {
	defer logger.Sync()
	return rootCmd.Execute()
}
