package cmd

import (
	"fmt"

	globalConfig "github.com/AzielCF/az-vkmacro/config"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the application version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Println("az-vkmacro", globalConfig.AppVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
