package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"krosmoz-scrapper/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "krosmoz-scrapper",
	Short: "KrosmozJDR collection and conversion pipeline",
	Long: `krosmoz-scrapper collects game data from external databases (DofusDB),
converts external characteristic values into KrosmozJDR balance values and
integrates the results into the game database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context,
// which ends a collection run before its next page.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// Console format with debug level gives readable timestamps for a CLI failure
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
