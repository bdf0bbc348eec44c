package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/webmaek/aventus/api"
	"github.com/webmaek/aventus/config"
	"github.com/webmaek/aventus/database"
	"github.com/webmaek/aventus/models"
	"github.com/webmaek/aventus/ratelimit"
	"github.com/webmaek/aventus/services"
)

func main() {
	var envFile string

	root := &cobra.Command{
		Use:           "aventus",
		Short:         "Aventus project idea forum API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd.Context(), envFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), c)
		},
	}

	var skipReport bool
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema, then report column drift",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd.Context(), envFile)
			if err != nil {
				return err
			}
			db, err := database.Open(c)
			if err != nil {
				return err
			}
			if err := models.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info().Msg("Schema migrated")
			if skipReport {
				return nil
			}
			return models.WriteColumnMismatchReport(db, os.Stdout)
		},
	}
	migrateCmd.Flags().BoolVar(&skipReport, "skip-report", false, "do not print the column mismatch report")

	var outPath string
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate typed query helpers from the models",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd.Context(), envFile)
			if err != nil {
				return err
			}
			db, err := database.Open(c)
			if err != nil {
				return err
			}
			return models.GenerateModels(db, outPath)
		},
	}
	generateCmd.Flags().StringVar(&outPath, "out", "./query", "output directory for generated code")

	root.AddCommand(serveCmd, migrateCmd, generateCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// loadConfig reads the environment, overlays SSM parameters and sets up logging.
func loadConfig(ctx context.Context, envFile string) (map[string]string, error) {
	c := config.Load(envFile)
	setupLogger(c)

	if err := config.LoadSSM(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func setupLogger(c map[string]string) {
	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(c, "LOG_LEVEL", "info")))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if !config.IsProduction(c) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func serve(ctx context.Context, c map[string]string) error {
	db, err := database.Open(c)
	if err != nil {
		return err
	}
	if config.GetBool(c, "AUTO_MIGRATE", false) {
		if err := models.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	opts, cleanup, err := serverOptions(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	server, err := api.NewServer(c, database.New(db), opts...)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	errChannel := make(chan error, 2)

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(config.GetDuration(c, "SHUTDOWN_TIMEOUT", 30*time.Second))
	closeDB(db)
	return nil
}

// serverOptions wires the optional collaborators: the login limiter and avatar storage.
func serverOptions(ctx context.Context, c map[string]string) ([]func(*api.Router), func(), error) {
	var opts []func(*api.Router)
	cleanup := func() {}

	if addr := config.GetString(c, "REDIS_ADDR", ""); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.GetString(c, "REDIS_PASSWORD", ""),
			DB:       config.GetInt(c, "REDIS_DB", 0),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", addr).Msg("Redis unreachable, login limiter fails open until it recovers")
		}
		limiter := ratelimit.NewRedisLimiter(
			client,
			"aventus:ratelimit:",
			config.GetInt(c, "LOGIN_RATE_LIMIT", 5),
			config.GetDuration(c, "LOGIN_RATE_WINDOW", time.Minute),
		)
		opts = append(opts, api.WithLoginLimiter(limiter))
		cleanup = func() {
			if err := client.Close(); err != nil {
				log.Warn().Err(err).Msg("Closing redis client")
			}
		}
	} else {
		log.Warn().Msg("REDIS_ADDR not set, login attempts are not rate limited")
	}

	store, err := services.NewS3AvatarStoreFromConfig(ctx, c)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if store != nil {
		opts = append(opts, api.WithAvatarStore(store))
	} else {
		log.Warn().Msg("AVATAR_BUCKET not set, avatar uploads are disabled")
	}

	return opts, cleanup, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("Closing database pool")
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
