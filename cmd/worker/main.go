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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/surpriselly/authsvc/internal/config"
	"github.com/surpriselly/authsvc/internal/notifications"
	"github.com/surpriselly/authsvc/internal/observability"
	"github.com/surpriselly/authsvc/internal/queue/redisclient"
	"github.com/surpriselly/authsvc/internal/queue/worker"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	if cfg.RedisAddr == "" {
		log.Error("REDIS_ADDR is required for the mail worker")
		os.Exit(1)
	}

	redisClient := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancelPing := config.WithTimeout(2 * time.Second)
	err := redisClient.Ping(pingCtx)
	cancelPing()

	if err != nil {
		log.Error("redis connect failed", "err", err)
		os.Exit(1)
	}

	defer redisClient.Close()

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	notifier := buildNotifier(cfg, log)
	handler := notifications.NewOTPEmailHandler(notifier)

	w := worker.New(worker.Config{
		Concurrency:   2,
		ShutdownGrace: 10 * time.Second,
	}, redisClient, handler, log, prom)

	// health + metrics sidecar port

	go func() {
		mux := http.NewServeMux()

		mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
			rw.WriteHeader(http.StatusOK)
			_, _ = rw.Write([]byte("ok"))
		})
		mux.Handle("/metrics", promhttp.Handler())

		addr := fmt.Sprintf(":%d", cfg.Port+1)

		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("worker health server failed", "err", err)
		}
	}()

	log.Info("mail worker started", "queue", "otp_email", "redis", cfg.RedisAddr)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	log.Info("worker shutdown complete")
}

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
