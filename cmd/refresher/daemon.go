package main

import (
	"time"

	"pazaryeri/internal/refresher"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var daemonAt string

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run a refresh sweep every day",
	Long: `Stays in the foreground and runs one sweep per day at --at (local time).
SIGINT or SIGTERM stops the daemon; a sweep in progress is cancelled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r := newRefresher(nil)
		log := logger.With(zap.String("action", "refresh_daemon"))
		log.Info("daemon started", zap.String("at", daemonAt))

		iteration := 0
		for {
			next, err := refresher.NextRun(time.Now(), daemonAt)
			if err != nil {
				return err
			}
			log.Info("next sweep scheduled", zap.Time("at", next))

			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				log.Info("shutdown signal received")
				return nil
			case <-timer.C:
			}

			iteration++
			report, err := r.Run(ctx)
			if err != nil {
				log.Error("sweep failed", zap.Int("iteration", iteration), zap.Error(err))
				continue
			}
			log.Info("sweep done",
				zap.Int("iteration", iteration),
				zap.Int("refreshed", report.Refreshed),
				zap.Int("errors", report.Errors),
				zap.Int64("deleted", report.Deleted),
			)
		}
	},
}

func init() {
	daemonCmd.Flags().StringVar(&daemonAt, "at", "03:00", "Daily run time (HH:MM, local time)")
}
