package commands

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/beesaferoot/imobipro/internal/batch"
	"github.com/beesaferoot/imobipro/internal/config"
	"github.com/beesaferoot/imobipro/internal/period"
	"github.com/beesaferoot/imobipro/internal/store"
)

// env is what every command needs once the database is open.
type env struct {
	cfg   *config.Config
	db    *gorm.DB
	store *store.GormStore
	log   *log.Logger
}

var (
	defaultMigrate = store.Migrate
	migrate        = defaultMigrate
)

// openEnv loads the configuration, connects and brings the schema up to date.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg:   cfg,
		db:    db,
		store: store.New(db),
		log:   newLogger(cmd.ErrOrStderr()),
	}
	if err := migrate(db); err != nil {
		e.close()
		return nil, err
	}
	return e, nil
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "imobipro: ", log.LstdFlags)
}

// todayFlag reads --today, falling back to the current date.
func todayFlag(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("today")
	if raw == "" {
		return time.Now(), nil
	}
	t, err := period.ParseISO(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --today: %v", err)
	}
	return t, nil
}

func printResult(w io.Writer, label string, res batch.Result, maxErrors int) {
	fmt.Fprintf(w, "%s: %d created, %d ignored, %d errors\n", label, res.Created, res.Ignored, res.Errored())
	for _, msg := range res.Messages(maxErrors) {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
}
