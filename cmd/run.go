package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	globalConfig "github.com/AzielCF/az-vkmacro/config"
	"github.com/AzielCF/az-vkmacro/pkg/botmonitor"
	"github.com/AzielCF/az-vkmacro/usecase"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start watching your own messages",
	Long:  `Connects to the VK user long poll and rewrites every message you send that uses a substitution, an attachment macro or markup.`,
	Run:   runBot,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.Run = runBot
}

func runBot(_ *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loadStores()
	settings := resolveSettings(ctx)
	initVKClient(settings)

	monitor := botmonitor.New(globalConfig.MonitorBufferSize, globalConfig.MonitorTTL)
	substitutionUsecase := usecase.NewSubstitutionService(settings.Prefix, substitutionStore, attachmentStore)
	commandUsecase := usecase.NewCommandService(vkClient, substitutionStore, attachmentStore, settings.Prefix)
	messageUsecase := usecase.NewMessageService(vkClient, commandUsecase, substitutionUsecase, monitor)

	logrus.Infof("[APP] Starting az-vkmacro %s with prefix %q", globalConfig.AppVersion, settings.Prefix)
	err := messageUsecase.Start(ctx)

	monitor.LogRecent(logrus.NewEntry(logrus.StandardLogger()))
	stats := monitor.GetStats()
	logrus.Infof("[APP] Handled %s messages: %s commands, %s edits, %s errors",
		humanize.Comma(stats.TotalInbound),
		humanize.Comma(stats.TotalCommands),
		humanize.Comma(stats.TotalEdits),
		humanize.Comma(stats.TotalErrors),
	)

	if err != nil {
		logrus.Fatalf("[APP] %v", err)
	}
	logrus.Info("[APP] Stopped cleanly.")
}
