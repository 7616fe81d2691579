package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/n9te9/listings-subgraph/migrations"
	"github.com/n9te9/listings-subgraph/server"
	"github.com/n9te9/listings-subgraph/subgraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "v0.0.0-dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "listings-subgraph",
		Short:         "Listings subgraph of the Airlock supergraph",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		migrateCmd(&configPath),
		sdlCmd(),
		versionCmd(),
	)
	rootCmd.RunE = serveCmd(&configPath).RunE

	if err := rootCmd.Execute(); err != nil {
		report(os.Stderr, err)
		os.Exit(1)
	}
}

// loggedError marks an error the command has already written to its logger.
type loggedError struct{ error }

func (e loggedError) Unwrap() error { return e.error }

// report prints err unless it was already logged.
func report(w io.Writer, err error) {
	var logged loggedError
	if errors.As(err, &logged) {
		return
	}
	fmt.Fprintln(w, "error:", err)
}

func loadConfigAndLogger(configPath string) (*server.Config, *zap.Logger, error) {
	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := server.NewLogger(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the listings subgraph server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfigAndLogger(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if err := server.Run(cmd.Context(), cfg, logger); err != nil {
				logger.Error("subgraph stopped", zap.Error(err))
				return loggedError{err}
			}
			return nil
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the bookings database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfigAndLogger(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if cfg.BookingsDB.URL == "" {
				return fmt.Errorf("BOOKINGS_DB_URL is not set")
			}
			if down > 0 {
				if err := migrations.Down(cfg.BookingsDB.URL, down); err != nil {
					logger.Error("rollback failed", zap.Error(err))
					return loggedError{err}
				}
				logger.Info("migrations rolled back", zap.Int("steps", down))
				return nil
			}
			v, err := migrations.Up(cfg.BookingsDB.URL)
			if err != nil {
				logger.Error("migration failed", zap.Error(err))
				return loggedError{err}
			}
			logger.Info("migrations applied", zap.Uint("version", v))
			return nil
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "roll back this many migrations instead of applying")
	return cmd
}

func sdlCmd() *cobra.Command {
	var (
		endpoint string
		retry    subgraph.RetryOption
	)

	cmd := &cobra.Command{
		Use:   "sdl",
		Short: "Print the SDL served by a running subgraph",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(retry.Attempts+1)*(retry.Timeout+retry.Backoff))
			defer cancel()

			sdl, err := subgraph.FetchSDL(ctx, endpoint, nil, retry)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sdl)
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "http://localhost:4003/", "GraphQL endpoint of the subgraph")
	cmd.Flags().IntVar(&retry.Attempts, "attempts", 3, "number of attempts")
	cmd.Flags().DurationVar(&retry.Timeout, "timeout", 5*time.Second, "timeout per attempt")
	cmd.Flags().DurationVar(&retry.Backoff, "backoff", time.Second, "wait between attempts")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of the listings subgraph",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "listings-subgraph", version)
		},
	}
}
