package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"teamboard/internal/app"
	"teamboard/internal/config"
	"teamboard/internal/engine"
	"teamboard/internal/repo"
	"teamboard/internal/server"
	"teamboard/internal/snapshot"
	"teamboard/internal/telemetry"
)

var rootCmd = &cobra.Command{
	Use:   "teamboard",
	Short: "Teamboard marketing team dashboard",
	Long: `Teamboard tracks a marketing team's campaigns, tasks and productivity.
- serve: run the HTTP API (JSON under /api, Swagger UI at /docs, Prometheus at /metrics).
- config: print or generate teamboard.yml.
- snapshot: inspect the SQLite file the server restores from and writes on shutdown.
- login, dashboard, tasks, activities, metrics: talk to a running server.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("TEAMBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultPath, "config file")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	rootCmd.PersistentFlags().String("server", defaultServerURL, "teamboard server URL for client commands")
	rootCmd.PersistentFlags().String("token", "", "bearer token for client commands")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(tasksCmd())
	rootCmd.AddCommand(activitiesCmd())
	rootCmd.AddCommand(metricsCmd())
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if viper.GetBool("verbose") {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// loadConfig reads the config file and applies TEAMBOARD_* overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	if secret := viper.GetString("jwt_secret"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if addr := viper.GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if path := viper.GetString("snapshot"); path != "" {
		cfg.Snapshot.Path = path
	}
	return cfg, nil
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("TEAMBOARD_JWT_SECRET (or auth.jwt_secret) is required for bearer auth")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r := repo.New(nil)
			restored, err := app.Bootstrap(ctx, r, cfg, logger)
			if err != nil {
				return err
			}
			logger.Info("store ready", zap.Bool("restored", restored))

			metrics := telemetry.New()
			metrics.ObserveStore(r)
			e := engine.New(r, cfg.Auth.JWTSecret, logger)
			handler, err := server.New(server.Config{
				Engine:      e,
				Logger:      logger,
				CORSOrigins: cfg.Server.CORSOrigins,
				Metrics:     metrics,
			})
			if err != nil {
				return err
			}
			go server.NewWebhookDispatcher(r, cfg.Webhooks, logger).Run(ctx)

			srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
			done := make(chan struct{})
			go func() {
				defer close(done)
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Warn("http shutdown", zap.Error(err))
				}
				if err := app.Persist(shutdownCtx, r, cfg, logger); err != nil {
					logger.Error("persist store", zap.Error(err))
				}
			}()
			logger.Info("serving teamboard API",
				zap.String("addr", cfg.Server.Addr),
				zap.String("docs", "/docs"),
				zap.String("openapi", "/api/openapi.json"))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			<-done
			return nil
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	_ = viper.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func configCmd() *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Manage configuration"}
	cfgCmd.AddCommand(configInitCmd())
	cfgCmd.AddCommand(configShowCmd())
	return cfgCmd
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := viper.GetString("config")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}

func snapshotCmd() *cobra.Command {
	snap := &cobra.Command{Use: "snapshot", Short: "Inspect store snapshots"}
	snap.AddCommand(&cobra.Command{
		Use:   "inspect [path]",
		Short: "Show schema version and row counts of a snapshot file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				path = cfg.Snapshot.Path
			}
			if path == "" {
				return fmt.Errorf("no snapshot path given and snapshot.path is not configured")
			}
			sum, err := snapshot.Inspect(cmd.Context(), path)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(sum)
			}
			fmt.Printf("%s (schema v%d)\n", sum.Path, sum.SchemaVersion)
			names := make([]string, 0, len(sum.Rows))
			for name := range sum.Rows {
				names = append(names, name)
			}
			sort.Strings(names)
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Table", "Rows"})
			for _, name := range names {
				tw.AppendRow(table.Row{name, sum.Rows[name]})
			}
			tw.Render()
			return nil
		},
	})
	return snap
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
