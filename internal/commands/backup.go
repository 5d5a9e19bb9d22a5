package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/imobipro/internal/backup"
	"github.com/beesaferoot/imobipro/internal/config"
)

func BackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a copy of the SQLite database to the backup directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, _ := cmd.Flags().GetBool("list")

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			keep := e.cfg.BackupKeep
			if cmd.Flags().Changed("keep") {
				keep, _ = cmd.Flags().GetInt("keep")
			}

			dir, err := config.EnsureDir(e.cfg.BackupDir)
			if err != nil {
				return fmt.Errorf("failed to prepare backup directory: %v", err)
			}
			svc := backup.New(e.db, dir, e.log)
			out := cmd.OutOrStdout()

			if list {
				entries, err := svc.List()
				if err != nil {
					return fmt.Errorf("failed to list backups: %v", err)
				}
				if len(entries) == 0 {
					fmt.Fprintln(out, "No backups found.")
					return nil
				}
				fmt.Fprintf(out, "%-44s  %12s  %-24s\n", "Name", "Size", "Created At")
				for _, entry := range entries {
					fmt.Fprintf(out, "%-44s  %12d  %-24s\n", entry.Name, entry.Size, entry.CreatedAt.Format(time.RFC3339))
				}
				return nil
			}

			entry, err := svc.Create(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to create backup: %v", err)
			}
			fmt.Fprintf(out, "Backup written to %s\n", entry.Path)

			if keep > 0 {
				removed, err := svc.Prune(keep)
				if err != nil {
					return fmt.Errorf("failed to prune backups: %v", err)
				}
				for _, name := range removed {
					fmt.Fprintf(out, "Removed old backup %s\n", name)
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("keep", 0, "Number of backups to keep (defaults to BACKUP_KEEP)")
	cmd.Flags().Bool("list", false, "List existing backups instead of writing one")

	return cmd
}
