package cmd

import (
	"context"
	"os"
	"time"

	globalConfig "github.com/AzielCF/az-vkmacro/config"
	domainApp "github.com/AzielCF/az-vkmacro/domains/app"
	"github.com/AzielCF/az-vkmacro/infrastructure/vk"
	"github.com/AzielCF/az-vkmacro/pkg/kvstore"
	"github.com/AzielCF/az-vkmacro/pkg/utils"
	"github.com/AzielCF/az-vkmacro/validations"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Stores
	substitutionStore *kvstore.Store
	attachmentStore   *kvstore.Store

	// VK
	vkClient *vk.Client
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "az-vkmacro",
	Short: "Rewrite your own VK messages with substitutions, attachment macros and markup",
	Long: `az-vkmacro watches the messages you send from your VK account and edits them in place:
%key is replaced by its substitution, %name attaches a saved macro and
%uline text%uline / %cross text%cross are rendered with combining characters.`,
	SilenceUsage: true,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig, initApp)
}

// initEnvConfig lets environment variables override flag defaults.
func initEnvConfig() {
	if envDebug := viper.GetBool("app_debug"); envDebug {
		globalConfig.AppDebug = envDebug
	}

	// Substitution settings
	if envPrefix := viper.GetString("substitution_prefix"); envPrefix != "" && !rootCmd.PersistentFlags().Changed("prefix") {
		globalConfig.SubstitutionPrefix = envPrefix
	}
	if envPath := viper.GetString("path_substitutions"); envPath != "" && !rootCmd.PersistentFlags().Changed("substitutions") {
		globalConfig.PathSubstitutions = envPath
	}
	if envPath := viper.GetString("path_attachments"); envPath != "" && !rootCmd.PersistentFlags().Changed("attachments") {
		globalConfig.PathAttachments = envPath
	}

	// VK settings
	if envToken := viper.GetString("vk_token"); envToken != "" {
		globalConfig.VKToken = envToken
	}
	if envTokenPath := viper.GetString("vk_token_path"); envTokenPath != "" && !rootCmd.PersistentFlags().Changed("token-file") {
		globalConfig.VKTokenPath = envTokenPath
	}
	if envVersion := viper.GetString("vk_api_version"); envVersion != "" && !rootCmd.PersistentFlags().Changed("api-version") {
		globalConfig.VKAPIVersion = envVersion
	}
	if envBaseURL := viper.GetString("vk_api_base_url"); envBaseURL != "" {
		globalConfig.VKAPIBaseURL = envBaseURL
	}
	if viper.IsSet("vk_long_poll_wait") && !rootCmd.PersistentFlags().Changed("long-poll-wait") {
		globalConfig.VKLongPollWait = viper.GetInt("vk_long_poll_wait")
	}
	if viper.IsSet("vk_request_timeout") && !rootCmd.PersistentFlags().Changed("request-timeout") {
		globalConfig.VKRequestTimeout = viper.GetDuration("vk_request_timeout")
	}

	// Monitor settings
	if viper.IsSet("monitor_buffer_size") {
		globalConfig.MonitorBufferSize = viper.GetInt("monitor_buffer_size")
	}
	if viper.IsSet("monitor_ttl") {
		globalConfig.MonitorTTL = viper.GetDuration("monitor_ttl")
	}
}

func initFlags() {
	// Application flags
	rootCmd.PersistentFlags().BoolVarP(
		&globalConfig.AppDebug,
		"debug", "d",
		globalConfig.AppDebug,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)

	// Substitution flags
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.SubstitutionPrefix,
		"prefix", "",
		globalConfig.SubstitutionPrefix,
		`prefix of substitution keys, macros and markup tags --prefix <string> | example: --prefix="!"`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.PathSubstitutions,
		"substitutions", "s",
		globalConfig.PathSubstitutions,
		`substitutions JSON file --substitutions <path> | example: --substitutions="data/substitutions.json"`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.PathAttachments,
		"attachments", "a",
		globalConfig.PathAttachments,
		`attachment macros JSON file --attachments <path> | example: --attachments="data/attachments.json"`,
	)

	// VK flags
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.VKTokenPath,
		"token-file", "t",
		globalConfig.VKTokenPath,
		`file holding the user access token, ignored when VK_TOKEN is set --token-file <path> | example: --token-file="secrets/token.txt"`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.VKAPIVersion,
		"api-version", "",
		globalConfig.VKAPIVersion,
		`VK API version --api-version <string> | example: --api-version=5.131`,
	)
	rootCmd.PersistentFlags().IntVarP(
		&globalConfig.VKLongPollWait,
		"long-poll-wait", "",
		globalConfig.VKLongPollWait,
		`seconds a long poll request may wait for events --long-poll-wait <number> | example: --long-poll-wait=25`,
	)
	rootCmd.PersistentFlags().DurationVarP(
		&globalConfig.VKRequestTimeout,
		"request-timeout", "",
		globalConfig.VKRequestTimeout,
		`timeout of a single API call --request-timeout <duration> | example: --request-timeout=15s`,
	)
}

func initApp() {
	if globalConfig.AppDebug {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// loadStores reads both JSON files. A missing or invalid file stops the process.
func loadStores() {
	var err error
	substitutionStore, err = kvstore.Load(globalConfig.PathSubstitutions)
	if err != nil {
		logrus.Fatalf("[APP] %v", err)
	}
	attachmentStore, err = kvstore.Load(globalConfig.PathAttachments)
	if err != nil {
		logrus.Fatalf("[APP] %v", err)
	}
	logrus.Infof("[APP] Loaded %d substitutions and %d attachment macros", substitutionStore.Len(), attachmentStore.Len())
}

// resolveSettings gathers and validates the configuration needed to talk to VK.
func resolveSettings(ctx context.Context) domainApp.Settings {
	token := globalConfig.VKToken
	if token == "" {
		var err error
		token, err = utils.ReadSecretFile(globalConfig.VKTokenPath)
		if err != nil {
			logrus.Fatalf("[APP] Unable to read access token: %v", err)
		}
	}

	settings := domainApp.Settings{
		Prefix:            globalConfig.SubstitutionPrefix,
		PathSubstitutions: globalConfig.PathSubstitutions,
		PathAttachments:   globalConfig.PathAttachments,
		Token:             token,
		APIVersion:        globalConfig.VKAPIVersion,
		LongPollWait:      globalConfig.VKLongPollWait,
		RequestTimeout:    globalConfig.VKRequestTimeout,
	}
	if err := validations.ValidateSettings(ctx, settings); err != nil {
		logrus.Fatalf("[APP] Invalid configuration: %v", err)
	}
	return settings
}

func initVKClient(settings domainApp.Settings) {
	vkClient = vk.NewClient(vk.Config{
		Token:      settings.Token,
		APIVersion: settings.APIVersion,
		APIBaseURL: globalConfig.VKAPIBaseURL,
		Timeout:    settings.RequestTimeout,
		Wait:       settings.LongPollWait,
	})
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
