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

	"github.com/robfig/cron/v3"

	"github.com/divvyapp/divvy/internal/auth"
	"github.com/divvyapp/divvy/internal/bank"
	"github.com/divvyapp/divvy/internal/config"
	"github.com/divvyapp/divvy/internal/handler"
	"github.com/divvyapp/divvy/internal/insights"
	"github.com/divvyapp/divvy/internal/middleware"
	"github.com/divvyapp/divvy/internal/notify"
	"github.com/divvyapp/divvy/internal/service"
	"github.com/divvyapp/divvy/internal/storage/sqlite"
	"github.com/divvyapp/divvy/pkg/logging"
)

const tokenDuration = 24 * time.Hour

func main() {
	logging.Setup()

	cfg, err := config.NewConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, tokenDuration)
	mailer := notify.NewSender(cfg)
	hub := notify.NewHub()
	gateway := bank.NewHTTPGateway(cfg.BankURL)
	summarizer := insights.NewClient(cfg.InsightsURL, cfg.InsightsKey)

	h := handler.New(
		service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager),
		service.NewBillService(store, mailer, hub),
		service.NewPaymentService(store, gateway, hub),
		service.NewCreditService(store),
		service.NewInsightService(store, summarizer),
	)

	// Due-date reminder emails on the configured cron schedule.
	scheduler := cron.New()
	reminder := notify.NewReminder(store, mailer)
	if _, err := scheduler.AddFunc(cfg.ReminderSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		reminder.Run(ctx)
	}); err != nil {
		slog.Error("Failed to schedule reminder job", "schedule", cfg.ReminderSchedule, "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Reminder job scheduled", "schedule", cfg.ReminderSchedule)

	router := h.Routes(jwtManager)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      middleware.Logging(middleware.CORS(router)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}
