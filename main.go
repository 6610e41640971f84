package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hospital-app-server/internal/config"
	"hospital-app-server/internal/logger"
	"hospital-app-server/internal/middleware"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/otp"
	"hospital-app-server/internal/routes"
)

const serviceName = "hospital-server"

func main() {
	rootCmd := &cobra.Command{
		Use:   serviceName,
		Short: "Hospital management API server",
		// Running without a subcommand starts the server.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			db, err := models.Open(models.DatabaseConfig{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			if err := models.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("migrations applied", zap.String("driver", cfg.Database.Driver))
			return nil
		},
	}
}

// bootstrap loads the environment and configuration and builds the logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	// A missing .env is fine; the environment may be set by the process manager.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func runServer() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	db, err := models.InitDB(models.DatabaseConfig{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	store, err := otpStore(cfg, log)
	if err != nil {
		return err
	}
	issuer := otp.NewIssuer(store, otp.LogMailer{From: cfg.Mailer.DefaultFrom, Logger: log},
		time.Duration(cfg.OTPTTLMinutes)*time.Minute)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middlewareStack(cfg, log)...)

	routes.SetupRoutes(router, routes.Dependencies{
		DB:     db,
		Config: cfg,
		Logger: log,
		OTP:    issuer,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// otpStore connects to Redis when REDIS_ADDR is set and falls back to an
// in-process store otherwise.
func otpStore(cfg *config.Config, log *zap.Logger) (otp.Store, error) {
	if cfg.Redis.Addr == "" {
		log.Warn("REDIS_ADDR not set, keeping activation codes in memory")
		return otp.NewMemoryStore(), nil
	}

	store := otp.NewRedisStore(otp.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return store, nil
}

func middlewareStack(cfg *config.Config, log *zap.Logger) []gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}

	return []gin.HandlerFunc{
		middleware.RequestLogger(log),
		gin.Recovery(),
		cors.New(corsConfig),
	}
}
