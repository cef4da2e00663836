// Package main is the entry point for the querykit CLI.
//
//	querykit ddl --dialect postgres schema.yaml
//	querykit sql --dialect mysql query.yaml
//	querykit query query.yaml
//	querykit migrate schema.yaml
//	querykit ping
//	querykit log -n 20
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/biyonik/querykit/internal/config"
	"github.com/biyonik/querykit/internal/logger"
	"github.com/biyonik/querykit/pkg/database"
)

var (
	// Version information (set by build)
	Version = "dev"
	Commit  = "unknown"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	sqlColor     = color.New(color.FgYellow)
)

// app carries state shared by all commands.
type app struct {
	envFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "querykit",
		Short:         "Compile and run querykit queries and schemas",
		Version:       fmt.Sprintf("%s (commit: %s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(newDDLCommand(a))
	root.AddCommand(newSQLCommand(a))
	root.AddCommand(newQueryCommand(a))
	root.AddCommand(newMigrateCommand(a))
	root.AddCommand(newPingCommand(a))
	root.AddCommand(newLogCommand(a))
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger.Setup(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return nil
}

// connect opens the configured database. When Redis query logging is enabled
// every Fetcher reports to the Redis sink.
func (a *app) connect(ctx context.Context) (*database.DB, func(), error) {
	opts := []database.Option{database.WithLogger(a.logger)}
	cleanup := func() {}

	if a.cfg.Redis.Enabled {
		client, err := database.NewRedisClient(ctx, a.cfg.RedisConfig(), a.logger)
		if err != nil {
			return nil, nil, err
		}
		sink := database.NewRedisSink(client, a.cfg.Redis.QueryLogKey, a.cfg.Redis.QueryLogMax, a.logger)
		opts = append(opts, database.WithDebugSink(sink))
		cleanup = func() { _ = client.Close() }
	}

	db, err := database.Connect(ctx, a.cfg.Database(), opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return db, func() {
		_ = db.Close()
		cleanup()
	}, nil
}

// dialect resolves the --dialect flag, falling back to DB_DRIVER.
func (a *app) dialect(flag string) (database.Dialect, error) {
	if flag == "" {
		flag = a.cfg.DB.Driver
	}
	return database.ParseDialect(flag)
}
