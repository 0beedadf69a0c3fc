package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/pverdier/go-gestion-locative/billing"
	"github.com/pverdier/go-gestion-locative/receipt"
	"github.com/pverdier/go-gestion-locative/shared/config"
	"github.com/pverdier/go-gestion-locative/shared/middleware"
	"github.com/pverdier/go-gestion-locative/shared/utils"
)

func main() {
	cfg := config.Load()

	// Initialize Redis for sessions, the dashboard cache and asynq.
	if err := utils.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer utils.CloseRedis()

	// Initialize database
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := config.MigrateDatabase(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Billing events are optional: no broker, no producer.
	var events *billing.Producer
	if cfg.KafkaBroker != "" {
		events = billing.NewProducer(cfg.KafkaBroker)
		defer func() {
			if err := events.Close(); err != nil {
				logrus.WithError(err).Error("Failed to close Kafka producer")
			}
		}()
	}

	// Receipt archiving is optional: no bucket, no archiver.
	var archiver *receipt.Archiver
	if cfg.S3Bucket != "" {
		archiver, err = receipt.NewArchiver(cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			log.Fatal("Failed to initialize receipt archiver:", err)
		}
	}

	generator := billing.NewGenerator(billing.NewGormStore(db), events)
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret, cfg.SessionTTL)

	router := setupRouter(db, cfg, authMiddleware, generator, events, archiver)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logrus.Infof("Back office API starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Nightly bill generation: an asynq scheduler enqueues the task on the
	// cron spec and a single-concurrency worker executes it.
	var scheduler *asynq.Scheduler
	var worker *asynq.Server
	if cfg.SchedulerEnabled {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}

		scheduler, err = billing.NewScheduler(redisOpt, cfg.BillingCronSpec)
		if err != nil {
			log.Fatal("Failed to set up billing scheduler:", err)
		}
		if err := scheduler.Start(); err != nil {
			log.Fatal("Failed to start billing scheduler:", err)
		}

		var mux *asynq.ServeMux
		worker, mux = billing.NewWorkerServer(redisOpt, generator)
		if err := worker.Start(mux); err != nil {
			log.Fatal("Failed to start billing worker:", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	if scheduler != nil {
		scheduler.Shutdown()
	}
	if worker != nil {
		worker.Shutdown()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("HTTP server shutdown failed")
	}
}
