package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/bootstrap"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/cache"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/config"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/events"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/kafka"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/observability"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/repair"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/transport/grpcapi"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/transport/httpapi"
)

func main() {
	cfg := config.Load()

	// Observability
	log := observability.InitLogger(cfg.ServiceName, cfg.LogLevel)
	defer log.Sync()

	if cfg.TracingEnabled {
		tp, err := observability.InitTracer(cfg.ServiceName, cfg.JaegerURL)
		if err != nil {
			log.Fatal("failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Error("failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	// Cancellable context for background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, cfg.StoreBackend, cfg.PebblePath, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("document store open failed", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer store.Close()
	log.Info("document store ready", zap.String("backend", cfg.StoreBackend))

	readiness := map[string]observability.Pinger{"store": store}

	opts := bootstrap.Options{
		Backend:     cfg.StoreBackend,
		OpTimeout:   cfg.OpTimeout,
		MaxAttempts: cfg.CASMaxAttempts,
	}

	// Redis Cache
	if cfg.RedisAddr != "" {
		indexCache := cache.New(cfg.RedisAddr, cfg.CacheTTL)
		defer indexCache.Close()
		opts.Cache = indexCache
		readiness["redis"] = indexCache
	}

	// Kafka Producer
	var producer *kafka.Producer
	if cfg.EventsEnabled {
		producer, err = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			ClientID: cfg.ServiceName,
		}, log)
		if err != nil {
			log.Fatal("kafka producer failed", zap.Error(err))
		}
		opts.Emitter = events.NewEmitter(producer, log)
	}

	app, _ := bootstrap.NewService(store, opts, log)

	// Repair Worker
	var consumer *kafka.Consumer
	if cfg.RepairWorkerEnabled {
		worker := repair.New(app, repair.WithBackoff(cfg.RepairBackoff))
		consumer, err = kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:  cfg.KafkaBrokers,
			Group:    cfg.RepairGroupID,
			Topic:    cfg.KafkaTopic,
			ClientID: cfg.ServiceName,
		}, worker)
		if err != nil {
			log.Fatal("kafka consumer failed", zap.Error(err))
		}
		consumer.Start(ctx)
		log.Info("repair worker started", zap.String("group", cfg.RepairGroupID))
	}

	// HTTP Server for Observability (Metrics & Health)
	mux := chi.NewRouter()
	mux.Use(observability.MetricsMiddleware(cfg.ServiceName))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Get("/health/live", observability.HealthLiveHandler)
	mux.Get("/health/ready", observability.HealthReadyHandler(readiness))

	go func() {
		log.Info("HTTP observability server started", zap.String("addr", cfg.ObsHTTPAddr))
		if err := http.ListenAndServe(cfg.ObsHTTPAddr, mux); err != nil {
			log.Error("HTTP observability server failed", zap.Error(err))
		}
	}()

	// API Server
	apiServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.NewHandler(app), httpapi.RouterConfig{
			ServiceName:       cfg.ServiceName,
			JWTSecret:         cfg.JWTSecret,
			JWTIssuer:         cfg.JWTIssuer,
			JWTAudience:       cfg.JWTAudience,
			RateLimitRequests: cfg.RateLimitRequests,
			RateLimitWindow:   cfg.RateLimitWindow,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("HTTP API server started", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP API server failed", zap.Error(err))
		}
	}()

	// gRPC Server
	server := grpcapi.New(app, log)
	go func() {
		if err := server.Start(cfg.GRPCAddr); err != nil {
			log.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	// Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP API shutdown failed", zap.Error(err))
	}
	server.Stop()

	if consumer != nil {
		consumer.Close()
		<-consumer.Done()
	}
	if producer != nil {
		producer.Close()
	}

	log.Info("shutdown complete")
}
