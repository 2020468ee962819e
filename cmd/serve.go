package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"eventhall-backend/config"
	"eventhall-backend/metrics"
	"eventhall-backend/models"
	"eventhall-backend/notify"
	"eventhall-backend/routes"
	"eventhall-backend/services"
	"eventhall-backend/utils"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the reminder scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	// running the binary without a subcommand serves
	rootCmd.RunE = runServe
	serveCmd.Flags().Bool("print-routes", false, "Log every registered route on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.OpenDatabase(cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := config.CloseDatabase(db); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}()
	if err := models.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := ensureAdmin(db, cfg.Admin, log); err != nil {
		return err
	}

	blacklist, closeBlacklist, err := newBlacklist(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeBlacklist()

	node, err := snowflake.NewNode(cfg.App.NodeID)
	if err != nil {
		return fmt.Errorf("snowflake node %d: %w", cfg.App.NodeID, err)
	}

	m := metrics.New()
	if sqlDB, err := db.DB(); err == nil {
		if err := m.RegisterDB(sqlDB, cfg.Database.Driver); err != nil {
			log.Warn("register db stats collector", zap.Error(err))
		}
	}
	finance := services.NewFinanceService(db, log, m, cfg.Finance.LaborInExpenses)
	deps := routes.Deps{
		Config:    cfg,
		DB:        db,
		Log:       log,
		Metrics:   m,
		Tokens:    utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer),
		Blacklist: blacklist,
		Finance:   finance,
		Events:    services.NewEventService(finance, node, log),
		Payments:  services.NewPaymentService(finance, node, log),
		Expenses:  services.NewExpenseService(finance),
	}

	if cfg.Reminders.Enabled {
		var notifier notify.Notifier = notify.NewLogNotifier(log)
		if cfg.Twilio.Enabled() {
			notifier = notify.NewTwilioNotifier(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken,
				cfg.Twilio.WhatsAppNumber, cfg.Twilio.PhoneNumber, log)
		}
		reminders := services.NewReminderService(db, notifier, log, m)
		if err := reminders.StartScheduler(cfg.Reminders.Schedule); err != nil {
			return err
		}
		defer reminders.StopScheduler()
	}

	r := routes.SetupRouter(deps)
	if printRoutes, _ := cmd.Flags().GetBool("print-routes"); printRoutes {
		for _, route := range r.Routes() {
			log.Info("route", zap.String("method", route.Method), zap.String("path", route.Path))
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newBlacklist uses redis when configured and an in-process store otherwise.
func newBlacklist(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (utils.TokenBlacklist, func(), error) {
	if cfg.URL == "" {
		log.Warn("redis not configured, revoked tokens are kept in memory")
		return utils.NewMemoryTokenBlacklist(), func() {}, nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return utils.NewRedisTokenBlacklist(client), func() { _ = client.Close() }, nil
}
