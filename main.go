package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/ballotbox/cache"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/router"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfg cliparse.Config

	root := &cobra.Command{
		Use:           "ballotbox",
		Short:         "Ballotbox election server",
		Long:          `Voter registration, candidate approval, ballot casting and results.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cliparse.Resolve(cmd.Flags(), &cfg); err != nil {
				return err
			}
			return setupLogging(cfg)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
	cliparse.BindFlags(root.PersistentFlags(), &cfg)

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the web server (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()
			return nil
		},
	})

	var admin struct {
		username, email, password string
	}
	createAdmin := &cobra.Command{
		Use:   "createadmin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			svc := election.NewService(conn, election.WithPasswordCost(cfg.PasswordCost))
			user, err := svc.CreateAdmin(cmd.Context(), admin.username, admin.email, admin.password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %s created.\n", user.Username)
			return nil
		},
	}
	createAdmin.Flags().StringVar(&admin.username, "username", "", "Admin username")
	createAdmin.Flags().StringVar(&admin.email, "email", "", "Admin email")
	createAdmin.Flags().StringVar(&admin.password, "password", "", "Admin password")
	for _, name := range []string{"username", "email", "password"} {
		createAdmin.MarkFlagRequired(name)
	}
	root.AddCommand(createAdmin)

	return root
}

// setupLogging installs the default slog handler
func setupLogging(cfg cliparse.Config) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// openDatabase connects and makes sure the schema exists
func openDatabase(cfg cliparse.Config) (*sql.DB, error) {
	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		conn.Close()
		return nil, fmt.Errorf("schema creation failed: %w", err)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)
	return conn, nil
}

func serve(ctx context.Context, cfg cliparse.Config) error {
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	var results election.ResultCache = cache.NewMemory(cfg.ResultsCacheTTL)
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.ResultsCacheTTL)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		results = redisCache
		slog.Info("Using redis results cache")
	}

	mux, err := router.NewRouter(conn, cfg, results)
	if err != nil {
		return err
	}

	server := http.Server{
		Handler:           mux,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
		return err
	}
	slog.Info("Server closed")
	return nil
}
