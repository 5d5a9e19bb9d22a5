package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/imobipro/internal/store"
)

func ValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check database integrity and stored records",
		Long:  `Runs SQLite's integrity_check and foreign_key_check, then re-validates every stored property, person and contract, including the rule that surety contracts need a guarantor.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			problems, err := store.CheckIntegrity(cmd.Context(), e.db)
			if err != nil {
				return err
			}
			records, err := store.CheckRecords(cmd.Context(), e.store)
			if err != nil {
				return fmt.Errorf("failed to check records: %v", err)
			}
			problems = append(problems, records...)

			out := cmd.OutOrStdout()
			if len(problems) == 0 {
				fmt.Fprintln(out, "Database is consistent")
				return nil
			}
			for _, p := range problems {
				fmt.Fprintf(out, "  - %s\n", p)
			}
			return fmt.Errorf("validation failed: %d problems found", len(problems))
		},
	}
}
