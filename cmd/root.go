package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quizrr/quizrr/internal/cache"
	"github.com/quizrr/quizrr/internal/config"
	"github.com/quizrr/quizrr/internal/extract"
	"github.com/quizrr/quizrr/internal/llm"
	"github.com/quizrr/quizrr/internal/logging"
	"github.com/quizrr/quizrr/internal/quizzes"
	"github.com/quizrr/quizrr/internal/store"
)

// localUser owns quizzes created from the command line.
const localUser = "local"

var rootCmd = &cobra.Command{
	Use:   "quizrr",
	Short: "Turn notes and documents into quizzes",
	Long:  "quizrr generates quizzes from text or uploaded files with an LLM, grades answers, and explains mistakes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTake(cmd, "", "")
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/quizrr/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides store settings)")
	rootCmd.PersistentFlags().String("user", localUser, "User id that owns quizzes created from the command line")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// env holds everything a command needs. Close releases it.
type env struct {
	cfg   config.Config
	log   *logrus.Logger
	store *store.Store
	cache cache.Cache
	svc   *quizzes.Service
}

func (e *env) Close() {
	if closer, ok := e.cache.(io.Closer); ok {
		closer.Close()
	}
	if e.store != nil {
		e.store.Close()
	}
}

// loadConfig reads --config and applies --db.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if err := store.EnsureDir(p); err != nil {
			return cfg, fmt.Errorf("resolve database path: %w", err)
		}
		cfg.Store = store.Config{Driver: store.DriverSQLite, DSN: p}
	}
	return cfg, nil
}

// openStore opens only the database, for commands that do not need the
// rest of the stack.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cmd.Context(), cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// setup builds the full service stack. Logs go to logOut. A missing LLM
// configuration is not an error; the service reports it per request.
func setup(cmd *cobra.Command, logOut io.Writer) (*env, error) {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: log}

	e.store, err = store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	e.cache, err = cache.New(ctx, cfg.Cache)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	deps := quizzes.Deps{
		Quizzes:    e.store.QuizRepo(),
		Results:    e.store.ResultRepo(),
		Cache:      e.cache,
		Extractor:  extract.New(log),
		Generation: cfg.Generation,
		Log:        log,
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, e.store.EventRepo(), log)
	var cfgErr *llm.ErrConfig
	switch {
	case err == nil:
		deps.Provider = provider
	case errors.As(err, &cfgErr):
		deps.ConfigErr = cfgErr
		log.WithField("provider", cfg.LLM.Provider).Warn("LLM provider not configured; quiz generation is unavailable")
	default:
		e.Close()
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}

	e.svc = quizzes.New(deps)
	return e, nil
}

func userFlag(cmd *cobra.Command) string {
	u, _ := cmd.Flags().GetString("user")
	return u
}
