package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"showpro/cmd/consumers/jobs"
	"showpro/internal/config"
	"showpro/internal/consumers"
	"showpro/internal/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Starting consumers service...")

	// Override NATS client ID for consumers
	cfg.NATS.ClientID = "showpro-consumers"

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	services := consumerService.Services()
	dispatch := jobs.NewEmailDispatchJob(services.Emails, jobs.LogMailer{})
	reminders := jobs.NewPencilReminderJob(services.Bookings, services.Emails, cfg.Jobs.PencilReminderDays, cfg.Diary.Location)

	if err := consumerService.Schedule(cfg.Jobs.EmailDispatchCron, dispatch); err != nil {
		logger.Fatal("Failed to schedule job", "error", err)
	}
	if err := consumerService.Schedule(cfg.Jobs.PencilReminderCron, reminders); err != nil {
		logger.Fatal("Failed to schedule job", "error", err)
	}

	// Start consuming messages
	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	slog.Info("Consumers service started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down consumers service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(ctx); err != nil {
		slog.Error("Error during shutdown", "error", err)
	}

	slog.Info("Consumers service stopped")
}
