package main

import (
	"fmt"
	"os"
	"time"

	"pazaryeri/internal/report"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all snapshots to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		snaps, err := snapshots.All(cmd.Context())
		if err != nil {
			return err
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return eris.Wrapf(err, "create %s", exportOut)
		}
		if err := report.WriteSnapshots(f, snaps, time.Now()); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrapf(err, "close %s", exportOut)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d snapshots written to %s\n", len(snaps), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "snapshots.xlsx", "Output file")
}
