package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/imobipro/internal/importer"
	"github.com/beesaferoot/imobipro/internal/period"
	"github.com/beesaferoot/imobipro/internal/report"
	"github.com/beesaferoot/imobipro/internal/sheet"
	"github.com/beesaferoot/imobipro/internal/store"
	"github.com/beesaferoot/imobipro/models"
)

func ImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [path]",
		Short: "Import a legacy spreadsheet",
		Long:  `Migrates the imoveis, pessoas, contratos, despesas and receitas sheets of an .xlsx workbook, a directory of CSV files or a .zip of CSV files. Rows that fail validation are reported and skipped; rows already imported are kept.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			evaluate, _ := cmd.Flags().GetBool("evaluate-formulas")
			maxErrors, _ := cmd.Flags().GetInt("max-errors")

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			src, err := sheet.Open(args[0], sheet.Options{EvaluateFormulas: evaluate})
			if err != nil {
				return fmt.Errorf("failed to open %s: %v", args[0], err)
			}
			defer src.Close()

			im := importer.New(e.store, e.log, importer.Defaults{City: e.cfg.DefaultCity, State: e.cfg.DefaultState})
			rep, runErr := im.Run(cmd.Context(), src)
			if rep == nil {
				return fmt.Errorf("failed to import: %v", runErr)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-10s  %-10s  %8s  %8s  %8s\n", "Sheet", "Entity", "Created", "Errors", "Formulas")
			for _, st := range rep.Stages {
				if st.Skipped {
					fmt.Fprintf(out, "%-10s  %-10s  %8s\n", st.Sheet, st.Entity, "missing")
					continue
				}
				fmt.Fprintf(out, "%-10s  %-10s  %8d  %8d  %8d\n", st.Sheet, st.Entity, st.Created, st.Errored(), st.Formulas)
			}

			total := rep.Total()
			now := time.Now()
			if _, err := store.RecordRun(cmd.Context(), e.store, models.RunImport, now.Format(period.ISO), total, now); err != nil {
				e.log.Printf("failed to record import run: %v", err)
			}

			fmt.Fprintf(out, "Imported %d rows, %d rejected\n", total.Created, total.Errored())
			for _, msg := range rep.FirstErrors(maxErrors) {
				fmt.Fprintf(out, "  - %s\n", msg)
			}

			if occ, err := report.PortfolioOccupancy(cmd.Context(), e.store); err != nil {
				e.log.Printf("failed to compute occupancy: %v", err)
			} else {
				fmt.Fprintf(out, "Portfolio: %s\n", occ)
			}

			if runErr != nil {
				return fmt.Errorf("import stopped early: %v", runErr)
			}
			return nil
		},
	}

	cmd.Flags().Bool("evaluate-formulas", false, "Compute formula cells that have no cached value")
	cmd.Flags().Int("max-errors", 10, "Number of rejected rows to print (0 prints all)")

	return cmd
}
