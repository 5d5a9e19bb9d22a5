package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/imobipro/internal/config"
)

func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database schema and the backup directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			backupDir, err := config.EnsureDir(e.cfg.BackupDir)
			if err != nil {
				return fmt.Errorf("failed to create backup directory: %v", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Database initialized successfully, backups go to %s\n", backupDir)
			return nil
		},
	}
}
