package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/imobipro/internal/report"
	"github.com/beesaferoot/imobipro/models"
)

func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show record counts and open charges",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			counts := []struct {
				label string
				model any
				query string
				args  []any
			}{
				{"Properties", &models.Property{}, "", nil},
				{"People", &models.Person{}, "", nil},
				{"Active contracts", &models.Contract{}, "status IN ?", []any{models.BillableStatuses()}},
				{"Unpaid expenses", &models.Expense{}, "paid_on IS NULL", nil},
				{"Pending receipts", &models.Receipt{}, "status = ?", []any{models.ReceiptPending}},
			}

			out := cmd.OutOrStdout()
			for _, c := range counts {
				n, err := e.store.Count(cmd.Context(), c.model, c.query, c.args...)
				if err != nil {
					return fmt.Errorf("failed to count %s: %v", c.label, err)
				}
				fmt.Fprintf(out, "%-18s  %6d\n", c.label, n)
			}

			occ, err := report.PortfolioOccupancy(cmd.Context(), e.store)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-18s  %6d\n", "Occupied", occ.Occupied)
			fmt.Fprintf(out, "%-18s  %6d\n", "Available", occ.Available)
			fmt.Fprintf(out, "%-18s  %5s%%\n", "Occupancy rate", occ.Rate.StringFixed(1))

			if verbose, _ := cmd.Flags().GetBool("tables"); verbose {
				names := make([]string, 0, len(models.ModelTypeRegistry))
				for name := range models.ModelTypeRegistry {
					names = append(names, name)
				}
				sort.Strings(names)

				fmt.Fprintf(out, "\n%-18s  %6s\n", "Table", "Rows")
				for _, name := range names {
					n, err := e.store.Count(cmd.Context(), models.ModelTypeRegistry[name], "")
					if err != nil {
						return fmt.Errorf("failed to count %s: %v", name, err)
					}
					fmt.Fprintf(out, "%-18s  %6d\n", name, n)
				}
			}
			return nil
		},
	}

	cmd.Flags().Bool("tables", false, "Also show the row count of every table")

	return cmd
}
