package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/gospend/internal/adapter/repository"
	"github.com/iho/gospend/internal/infrastructure/config"
	"github.com/iho/gospend/internal/infrastructure/logger"
	"github.com/iho/gospend/internal/infrastructure/storage"
	"github.com/iho/gospend/internal/usecase"
)

func main() {
	root := newRootCmd(openSession)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// session is an opened ledger plus the preferences that go with it.
type session struct {
	ledger      *usecase.LedgerUseCase
	preferences *usecase.PreferencesUseCase
	location    *time.Location
	close       func()
}

// opener opens a session. ephemeral forces the in-memory backend.
type opener func(ctx context.Context, ephemeral bool, confirmer usecase.Confirmer) (*session, error)

// openSession wires the configured storage backend into the use cases.
func openSession(ctx context.Context, ephemeral bool, confirmer usecase.Confirmer) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if ephemeral {
		cfg.StorageBackend = config.BackendMemory
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	log := cliLogger(cfg, os.Stderr)

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	ledgerStore := usecase.NewLedgerStore(store.Blobs, usecase.SystemClock{}, usecase.NopMetrics{}, log)
	preferences := usecase.NewPreferencesUseCase(ledgerStore)
	ledger := usecase.NewLedgerUseCase(usecase.LedgerUseCaseConfig{
		Store:       ledgerStore,
		Preferences: preferences,
		IDGen:       repository.NewULIDGenerator(),
		Confirmer:   confirmer,
		Location:    loc,
		Logger:      log,
	})

	if err := ledger.Open(ctx); err != nil {
		log.Warn().Err(err).Msg("recurring expenses could not be saved")
	}

	return &session{
		ledger:      ledger,
		preferences: preferences,
		location:    loc,
		close:       store.Close,
	}, nil
}

// cliLogger keeps the terminal quiet: warnings and up unless LOG_LEVEL asks
// for more, rendered for humans when out is a terminal.
func cliLogger(cfg *config.Config, out *os.File) zerolog.Logger {
	level := cfg.LogLevel
	if level == "info" {
		level = "warn"
	}

	format := cfg.LogFormat
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		format = "console"
	}

	return logger.NewWithWriter(logger.Config{Level: level, Format: format}, out)
}

type rootOptions struct {
	yes       bool
	ephemeral bool
	open      opener
}

func newRootCmd(open opener) *cobra.Command {
	opts := &rootOptions{open: open}

	rootCmd := &cobra.Command{
		Use:           "gospend",
		Short:         "Personal expense tracker",
		Long:          `Record expenses, track a monthly budget and move your data in and out as CSV or JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.yes, "yes", "y", false, "Answer yes to every confirmation")
	rootCmd.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "Keep data in memory only")

	rootCmd.AddCommand(
		newAddCmd(opts),
		newEditCmd(opts),
		newShowCmd(opts),
		newRemoveCmd(opts),
		newClearCmd(opts),
		newListCmd(opts),
		newStatsCmd(opts),
		newBudgetCmd(opts),
		newUserCmd(opts),
		newRecurCmd(opts),
		newUpcomingCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newWipeCmd(opts),
	)

	return rootCmd
}

// run opens a session for the duration of fn.
func (o *rootOptions) run(fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := o.open(cmd.Context(), o.ephemeral, o.confirmer(cmd.InOrStdin(), cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		if s.close != nil {
			defer s.close()
		}
		return fn(cmd, args, s)
	}
}

func (o *rootOptions) confirmer(in io.Reader, out io.Writer) usecase.Confirmer {
	if o.yes {
		return autoConfirmer{}
	}
	return newPromptConfirmer(in, out)
}
