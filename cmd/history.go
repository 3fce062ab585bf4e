package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"intervaltimer/internal/core/session"

	"github.com/spf13/cobra"
)

func newHistoryCmd(env *environment) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List finished training sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := env.openHistory()
			if err != nil {
				return err
			}
			defer func() {
				_ = history.Close()
			}()

			records, err := history.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}

			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(writer, "STARTED\tSCHEMA\tOUTCOME\tDONE\tPLANNED")
			for _, record := range records {
				_, _ = fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
					record.StartedAt.Local().Format(time.DateTime),
					record.SchemaName,
					record.Outcome,
					session.FormatClock(record.Completed),
					session.FormatClock(record.Planned))
			}
			return writer.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of sessions to show, 0 for all")
	return cmd
}
