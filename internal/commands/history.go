package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/imobipro/internal/store"
)

func HistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show generation and import history",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			records, err := store.History(cmd.Context(), e.store)
			if err != nil {
				return fmt.Errorf("failed to get run history: %v", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "Nothing has been generated or imported yet.")
				return nil
			}

			fmt.Fprintf(out, "%-12s  %-10s  %7s  %7s  %7s  %-24s\n", "Kind", "Period", "Created", "Ignored", "Errors", "Ran At")
			for _, r := range records {
				fmt.Fprintf(out, "%-12s  %-10s  %7d  %7d  %7d  %-24s\n", r.Kind, r.Period, r.Created, r.Ignored, r.Errored, r.RanAt.Format(time.RFC3339))
			}

			return nil
		},
	}
}
