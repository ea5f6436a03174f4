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

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/suteetoe/tenancy-service/internal/handler"
	"github.com/suteetoe/tenancy-service/internal/middleware"
	"github.com/suteetoe/tenancy-service/internal/ratelimit"
	"github.com/suteetoe/tenancy-service/internal/service"
	"github.com/suteetoe/tenancy-service/internal/sms"
	"github.com/suteetoe/tenancy-service/pkg/config"
	"github.com/suteetoe/tenancy-service/pkg/database"
	"github.com/suteetoe/tenancy-service/pkg/jwtutil"
	"github.com/suteetoe/tenancy-service/pkg/logger"
	"github.com/suteetoe/tenancy-service/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tenancy-service",
		Short:         "Tenancy complaint tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer database.Close(db)
			return database.Migrate(db, logger.GetLogger())
		},
	})
	return cmd
}

// bootstrap loads configuration, initializes the logger and opens the database
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.InitLogger(cfg.Server.Env, cfg.Log.Level); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.Info("Configuration loaded", cfg.LogConfig()...)

	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Database connection established")
	return cfg, db, nil
}

func newSender(cfg *config.Config, log *zap.Logger) sms.Sender {
	if cfg.SMS.Provider == "twilio" {
		return sms.NewTwilioSender(cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.FromNumber, cfg.SMS.CountryCode, log)
	}
	log.Warn("SMS provider is 'log'; OTP codes are written to the log")
	return sms.NewLogSender(log)
}

func serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer database.Close(db)
	log := logger.GetLogger()

	if err := database.Migrate(db, log); err != nil {
		return err
	}

	tokens, err := jwtutil.NewJWTUtil(cfg.JWT.SigningKey, cfg.JWT.Expiration)
	if err != nil {
		return err
	}

	var limiter ratelimit.Limiter = ratelimit.Noop{}
	if cfg.Redis.URL != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.Redis.URL, log)
		if err != nil {
			return err
		}
		defer client.Close()
		limiter = ratelimit.NewRedisLimiter(client, "otp:send:", cfg.OTP.SendLimit, cfg.OTP.SendWindow, log)
	} else {
		log.Info("REDIS_URL not set, OTP sends are not throttled")
	}
	if cfg.Auth.SupervisorSecretHash == "" {
		log.Info("SUPERVISOR_SECRET_HASH not set, supervisor tokens are disabled")
	}

	otpService := service.NewOTPService(db, newSender(cfg, log), limiter, tokens, cfg.OTP.TTL, log)
	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(otpService, service.NewSupervisorAuth(cfg.Auth.SupervisorSecretHash, tokens)),
		Users:      handler.NewUserHandler(service.NewUserService(db, log)),
		Complaints: handler.NewComplaintHandler(service.NewComplaintService(db, log)),
		Properties: handler.NewPropertyHandler(service.NewPropertyService(db), service.NewDashboardService(db)),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	handler.RegisterRoutes(e, db, handlers, middleware.NewAuthenticator(tokens, cfg.Auth.TrustSupervisorFlag))

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
