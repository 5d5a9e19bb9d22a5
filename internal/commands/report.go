package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/imobipro/internal/report"
	"github.com/beesaferoot/imobipro/models"
)

func ReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print or export reports",
	}

	cmd.AddCommand(pendingExpensesCmd())
	return cmd
}

func pendingExpensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending-expenses",
		Short: "List unpaid expenses",
		Long:  `Lists unpaid expenses ordered by due date. With --output the report is written as an .xlsx workbook; a directory gets a timestamped file name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, _ := cmd.Flags().GetString("type")
			dueBefore, _ := cmd.Flags().GetString("due-before")
			situation, _ := cmd.Flags().GetString("situation")
			output, _ := cmd.Flags().GetString("output")

			f := report.Filter{DueBefore: dueBefore}
			if typ != "" {
				t, err := models.ParseExpenseType(typ)
				if err != nil {
					return fmt.Errorf("invalid --type: %v", err)
				}
				f.Type = t
			}
			s, err := report.ParseSituation(situation)
			if err != nil {
				return err
			}
			f.Situation = s

			today, err := todayFlag(cmd)
			if err != nil {
				return err
			}

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			rep, err := report.Pending(cmd.Context(), e.store, f, today)
			if err != nil {
				return fmt.Errorf("failed to build report: %v", err)
			}

			if output != "" {
				path, err := writeWorkbook(rep, output, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d expenses to %s\n", rep.Count, path)
				return nil
			}

			out := cmd.OutOrStdout()
			if rep.Count == 0 {
				fmt.Fprintln(out, "No pending expenses.")
				return nil
			}
			fmt.Fprintf(out, "%-6s  %-30s  %-12s  %-10s  %12s  %-8s\n", "ID", "Property", "Type", "Due", "Amount", "Status")
			for _, l := range rep.Lines {
				status := "upcoming"
				if l.Overdue {
					status = "overdue"
				}
				fmt.Fprintf(out, "%-6d  %-30.30s  %-12s  %-10s  %12s  %-8s\n", l.ExpenseID, l.Property, l.Type, l.DueDate, l.Amount.StringFixed(2), status)
			}
			fmt.Fprintf(out, "%d expenses, %d overdue, total %s\n", rep.Count, rep.Overdue, rep.Total.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().String("type", "", "Only this expense type")
	cmd.Flags().String("due-before", "", "Only expenses due before this date (YYYY-MM-DD)")
	cmd.Flags().String("situation", "all", "all, overdue or upcoming")
	cmd.Flags().String("output", "", "Write an .xlsx workbook to this file or directory")
	cmd.Flags().String("today", "", "Reference date (YYYY-MM-DD), defaults to the current date")

	return cmd
}

func writeWorkbook(rep *report.PendingExpenses, output string, now time.Time) (string, error) {
	path := output
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		path = filepath.Join(output, rep.FileName(now))
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	if err := rep.WriteXLSX(f); err != nil {
		return "", fmt.Errorf("failed to write report: %v", err)
	}
	return path, nil
}
