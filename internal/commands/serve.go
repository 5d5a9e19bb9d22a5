package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/imobipro/internal/api"
	"github.com/beesaferoot/imobipro/internal/backup"
	"github.com/beesaferoot/imobipro/internal/billing"
	"github.com/beesaferoot/imobipro/internal/config"
	"github.com/beesaferoot/imobipro/internal/importer"
	"github.com/beesaferoot/imobipro/internal/scheduler"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP triggers and run the scheduled jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			noScheduler, _ := cmd.Flags().GetBool("no-scheduler")

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			addr := e.cfg.ListenAddr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}

			var backups *backup.Service
			if !e.cfg.IsPostgres() {
				dir, err := config.EnsureDir(e.cfg.BackupDir)
				if err != nil {
					return fmt.Errorf("failed to prepare backup directory: %v", err)
				}
				backups = backup.New(e.db, dir, e.log)
			}

			gen := billing.NewGenerator(e.store, e.log)
			srv := api.New(api.Deps{
				Store:      e.store,
				Generator:  gen,
				Importer:   importer.New(e.store, e.log, importer.Defaults{City: e.cfg.DefaultCity, State: e.cfg.DefaultState}),
				Backups:    backups,
				BackupKeep: e.cfg.BackupKeep,
				Logger:     e.log,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !noScheduler {
				sched, err := scheduler.New(gen, backups, scheduler.Options{
					BillingSpec: e.cfg.BillingSchedule,
					BackupSpec:  e.cfg.BackupSchedule,
					BackupKeep:  e.cfg.BackupKeep,
				}, e.log)
				if err != nil {
					return err
				}
				sched.Start()
				defer func() {
					stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
					defer cancel()
					sched.Stop(stopCtx)
				}()
			}

			if err := srv.ListenAndServe(ctx, addr); err != nil {
				return fmt.Errorf("server stopped: %v", err)
			}
			return nil
		},
	}

	cmd.Flags().String("addr", ":8080", "Listen address (defaults to LISTEN_ADDR)")
	cmd.Flags().Bool("no-scheduler", false, "Only serve HTTP, without the cron jobs")

	return cmd
}
