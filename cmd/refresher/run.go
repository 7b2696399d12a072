package main

import (
	"encoding/json"
	"fmt"

	"pazaryeri/internal/refresher"

	"github.com/spf13/cobra"
)

var runVerbose bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one refresh sweep",
	Long: `Refreshes up to max_refresh_per_run stale snapshots, evicts cold ones
and prints the report as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var progress func(done, total int, key string, err error)
		if runVerbose {
			progress = func(done, total int, key string, err error) {
				status := "ok"
				if err != nil {
					status = err.Error()
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s: %s\n", done, total, key, status)
			}
		}

		report, err := newRefresher(progress).Run(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Success bool `json:"success"`
			refresher.Report
		}{Success: true, Report: report})
	},
}

func init() {
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print progress per snapshot")
}
