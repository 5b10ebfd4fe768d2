package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	globalConfig "github.com/AzielCF/az-vkmacro/config"
	"github.com/AzielCF/az-vkmacro/domains/app"
	"github.com/AzielCF/az-vkmacro/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration files and, with --online, the access token",
	Run:   checkConfig,
}

func init() {
	checkCmd.Flags().Bool("online", false, "also call users.get to verify the access token")
	rootCmd.AddCommand(checkCmd)
}

func checkConfig(cmd *cobra.Command, _ []string) {
	ctx := context.Background()
	online, _ := cmd.Flags().GetBool("online")

	loadStores()
	prefix := globalConfig.SubstitutionPrefix
	if prefix == "" {
		logrus.Fatal("[CHECK] Prefix must not be empty")
	}
	var appUsecase app.IAppUsecase
	if online {
		settings := resolveSettings(ctx)
		initVKClient(settings)
		appUsecase = usecase.NewAppService(vkClient, substitutionStore, attachmentStore, prefix)
	} else {
		appUsecase = usecase.NewAppService(nil, substitutionStore, attachmentStore, prefix)
	}

	response, err := appUsecase.Check(ctx, app.CheckRequest{Online: online})
	if err != nil {
		logrus.Fatalf("[CHECK] %v", err)
	}

	out, err := json.Marshal(response)
	if err != nil {
		logrus.Fatalf("[CHECK] %v", err)
	}
	fmt.Print(string(pretty.Pretty(out)))
}
