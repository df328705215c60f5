package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/surpriselly/authsvc/internal/auth"
	"github.com/surpriselly/authsvc/internal/config"
	"github.com/surpriselly/authsvc/internal/db"
	httpx "github.com/surpriselly/authsvc/internal/http"
	"github.com/surpriselly/authsvc/internal/notifications"
	"github.com/surpriselly/authsvc/internal/observability"
	"github.com/surpriselly/authsvc/internal/otp"
	"github.com/surpriselly/authsvc/internal/queue"
	"github.com/surpriselly/authsvc/internal/queue/redisclient"
	"github.com/surpriselly/authsvc/internal/repo/postgres"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// tracing is opt-in via OTEL_EXPORTER_OTLP_ENDPOINT

	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "authsvc", cfg.OTELEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			shCtx, cancel := config.WithTimeout(3 * time.Second)
			defer cancel()
			_ = shutdownTracer(shCtx)
		}()
	}

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	schemaCtx, cancelSchema := config.WithTimeout(5 * time.Second)

	err = db.EnsureSchema(schemaCtx, pool)
	cancelSchema()

	if err != nil {
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}

	usersRepo := postgres.NewUsersRepo(pool, prom)
	otpManager := otp.NewManager(usersRepo, cfg.OTPTTL)
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.SessionTokenTTL, cfg.ResetTokenTTL)

	// OTP delivery: redis queue when configured, otherwise an in-process
	// dispatcher. Either way the forgot-password handler never waits on mail.

	var enqueuer queue.Enqueuer

	if cfg.RedisAddr != "" {
		redisClient := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancelPing := config.WithTimeout(2 * time.Second)
		err = redisClient.Ping(pingCtx)
		cancelPing()

		if err != nil {
			log.Error("redis connect failed", "err", err)
			os.Exit(1)
		}

		defer redisClient.Close()

		enqueuer = queue.NewRedisProducer(redisClient)
		log.Info("otp delivery via redis queue", "addr", cfg.RedisAddr)
	} else {
		dispatcher := queue.NewInProcessDispatcher(notifications.NewOTPEmailHandler(buildNotifier(cfg, log)), log)
		go dispatcher.Run(ctx)

		enqueuer = dispatcher
		log.Info("otp delivery via in-process dispatcher")
	}

	router := httpx.NewRouter(log, httpx.Deps{
		Users:    usersRepo,
		OTP:      otpManager,
		JWT:      jwtManager,
		Enqueuer: enqueuer,
		Cfg:      cfg,
		Prom:     prom,
		Ping: func() error {
			pingCtx, cancel := config.WithTimeout(1 * time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		shCtx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(shCtx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// buildNotifier picks the delivery channel. OTP_DEV_MODE is the only thing
// that switches to logging; missing SMTP config in prod is a loud
// misconfiguration, not a silent downgrade.
func buildNotifier(cfg config.Config, log *slog.Logger) notifications.Notifier {
	if cfg.OTPDevMode {
		return notifications.NewLogNotifier()
	}

	if !cfg.SMTPConfigured() {
		log.Warn("SMTP not configured and OTP_DEV_MODE is off; otp delivery will fail")
	}

	return notifications.NewProtectedNotifier(
		notifications.NewSMTPNotifier(notifications.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.MailFrom,
		}),
		notifications.ProtectedNotifierConfig{},
	)
}
