package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/beesaferoot/imobipro/internal/commands"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "imobipro",
		Short:         "Rental ledger: spreadsheet import and recurring charges",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		commands.InitCmd(),
		commands.ImportCmd(),
		commands.GenerateCmd(),
		commands.ReportCmd(),
		commands.BackupCmd(),
		commands.HistoryCmd(),
		commands.StatusCmd(),
		commands.ValidateCmd(),
		commands.ServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
