package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/phrazzld/vocabflow/internal/config"
	"github.com/phrazzld/vocabflow/internal/domain/srs"
	"github.com/phrazzld/vocabflow/internal/events"
	"github.com/phrazzld/vocabflow/internal/platform/logger"
	"github.com/phrazzld/vocabflow/internal/platform/sqlstore"
	"github.com/phrazzld/vocabflow/internal/service/learning"
	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by all commands.
type options struct {
	envFile  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "vocabctl",
		Short: "Administer a VocabFlow database",
		Long: `vocabctl works directly against the database configured for the
VocabFlow server (VOCAB_* environment variables, config.yaml or .env).

SQLite is the default driver, which makes it convenient for local use.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load %s: %w", opts.envFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "file with environment variables to load")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr (debug, info, warn, error)")

	root.AddCommand(
		newMigrateCmd(opts),
		newImportCmd(opts),
		newPlanCmd(opts),
		newFocusCmd(opts),
		newTokenCmd(opts),
	)
	return root
}

// env is the loaded configuration with an open database.
type env struct {
	cfg    *config.Config
	db     *sqlstore.DB
	logger *slog.Logger
}

func (o *options) open(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	l := logger.New(cmd.ErrOrStderr(), o.logLevel)

	db, err := sqlstore.Open(cmd.Context(), cfg.Database, l)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, logger: l}, nil
}

func (e *env) close() {
	if err := e.db.Close(); err != nil {
		e.logger.Warn("failed to close database", slog.String("error", err.Error()))
	}
}

// service builds a learning service over the database. Word updates made
// through it are not persisted, so commands only use the read and import
// operations.
func (e *env) service() (*learning.Service, error) {
	loc, err := time.LoadLocation(e.cfg.Server.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", e.cfg.Server.Timezone, err)
	}
	stores := sqlstore.NewStores(e.db, e.logger)
	emitter := events.NewInMemoryEventEmitter(e.logger)
	emitter.Subscribe(events.NewActivityHandler(e.logger), events.TypeWordsImported, events.TypeStoryCompleted)

	return learning.NewService(
		stores.Words,
		stores.Stats,
		stores.Stories,
		emitter,
		srs.NewDefaultService(),
		e.logger,
		learning.WithLocation(loc),
	), nil
}

// learnerFlag registers the required --learner flag.
func learnerFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "learner", "l", "", "learner id (the token subject)")
	_ = cmd.MarkFlagRequired("learner")
}
