// Package scheduler runs the daily charge generation and database backups
// on cron schedules. Runs are not locked against manual triggers; the
// per-period idempotence of the generator is what prevents double charges.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/beesaferoot/imobipro/internal/backup"
	"github.com/beesaferoot/imobipro/internal/billing"
)

// Options holds the cron expressions of each job. An empty expression
// disables the job.
type Options struct {
	BillingSpec string
	BackupSpec  string
	BackupKeep  int
}

// Scheduler owns the cron runner and the jobs registered on it.
type Scheduler struct {
	cron    *cron.Cron
	gen     *billing.Generator
	backups *backup.Service
	keep    int
	log     *log.Logger
	now     func() time.Time
}

// New registers the jobs of opts. backups may be nil when the database
// does not support them.
func New(gen *billing.Generator, backups *backup.Service, opts Options, logger *log.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = log.Default()
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(logger)))),
		gen:     gen,
		backups: backups,
		keep:    opts.BackupKeep,
		log:     logger,
		now:     time.Now,
	}

	if opts.BillingSpec != "" {
		if _, err := s.cron.AddFunc(opts.BillingSpec, func() { s.RunBilling(context.Background()) }); err != nil {
			return nil, fmt.Errorf("invalid billing schedule %q: %w", opts.BillingSpec, err)
		}
	}
	if opts.BackupSpec != "" && backups != nil {
		if _, err := s.cron.AddFunc(opts.BackupSpec, func() { s.RunBackup(context.Background()) }); err != nil {
			return nil, fmt.Errorf("invalid backup schedule %q: %w", opts.BackupSpec, err)
		}
	}
	return s, nil
}

// Jobs is the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Printf("scheduler: started with %d jobs", s.Jobs())
}

// Stop halts the scheduler and waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Printf("scheduler: stopped before running jobs finished")
	}
}

// RunBilling generates the condo fees and the receipts of the current month.
func (s *Scheduler) RunBilling(ctx context.Context) {
	today := s.now()
	if _, err := s.gen.RunCondo(ctx, today); err != nil {
		s.log.Printf("scheduler: condo generation failed: %v", err)
	}
	if _, err := s.gen.RunBilling(ctx, today); err != nil {
		s.log.Printf("scheduler: billing failed: %v", err)
	}
}

// RunBackup writes a backup and prunes the old ones.
func (s *Scheduler) RunBackup(ctx context.Context) {
	if s.backups == nil {
		return
	}
	if _, err := s.backups.Create(ctx); err != nil {
		s.log.Printf("scheduler: backup failed: %v", err)
		return
	}
	if s.keep > 0 {
		if _, err := s.backups.Prune(s.keep); err != nil {
			s.log.Printf("scheduler: backup prune failed: %v", err)
		}
	}
}
