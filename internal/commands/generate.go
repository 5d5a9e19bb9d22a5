package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/imobipro/internal/billing"
)

func GenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate recurring charges",
	}

	cmd.AddCommand(propertyTaxCmd(), condoCmd(), billingCmd())
	return cmd
}

func propertyTaxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "property-tax",
		Short: "Create the annual property tax expense of every taxed property",
		RunE: func(cmd *cobra.Command, args []string) error {
			dueDate, _ := cmd.Flags().GetString("due-date")
			maxErrors, _ := cmd.Flags().GetInt("max-errors")

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			res, err := billing.NewGenerator(e.store, e.log).RunPropertyTax(cmd.Context(), dueDate)
			if err != nil {
				return fmt.Errorf("failed to generate property tax: %v", err)
			}

			printResult(cmd.OutOrStdout(), "Property tax", res, maxErrors)
			return nil
		},
	}

	cmd.Flags().String("due-date", "", "Due date of the tax (YYYY-MM-DD)")
	cmd.Flags().Int("max-errors", 10, "Number of failures to print (0 prints all)")

	return cmd
}

func condoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "condo",
		Short: "Create this month's condo fee expense of every property with a fee",
		RunE: func(cmd *cobra.Command, args []string) error {
			maxErrors, _ := cmd.Flags().GetInt("max-errors")
			today, err := todayFlag(cmd)
			if err != nil {
				return err
			}

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			res, err := billing.NewGenerator(e.store, e.log).RunCondo(cmd.Context(), today)
			if err != nil {
				return fmt.Errorf("failed to generate condo fees: %v", err)
			}

			printResult(cmd.OutOrStdout(), "Condo fees", res, maxErrors)
			return nil
		},
	}

	cmd.Flags().String("today", "", "Reference date (YYYY-MM-DD), defaults to the current date")
	cmd.Flags().Int("max-errors", 10, "Number of failures to print (0 prints all)")

	return cmd
}

func billingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Create this month's receipt of every active contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			maxErrors, _ := cmd.Flags().GetInt("max-errors")
			today, err := todayFlag(cmd)
			if err != nil {
				return err
			}

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			res, err := billing.NewGenerator(e.store, e.log).RunBilling(cmd.Context(), today)
			if err != nil {
				return fmt.Errorf("failed to generate receipts: %v", err)
			}

			printResult(cmd.OutOrStdout(), "Receipts", res, maxErrors)
			return nil
		},
	}

	cmd.Flags().String("today", "", "Reference date (YYYY-MM-DD), defaults to the current date")
	cmd.Flags().Int("max-errors", 10, "Number of failures to print (0 prints all)")

	return cmd
}
