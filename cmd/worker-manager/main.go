// cmd/worker-manager/main.go
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

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	awsclients "recruitment-workers/internal/common/aws"
	"recruitment-workers/internal/common/cache"
	"recruitment-workers/internal/common/camunda"
	"recruitment-workers/internal/common/config"
	"recruitment-workers/internal/common/database"
	"recruitment-workers/internal/common/logger"
	"recruitment-workers/internal/common/messaging"
	"recruitment-workers/internal/common/observability"
	"recruitment-workers/internal/repository"
	"recruitment-workers/pkg/registry"

	ccm "recruitment-workers/internal/workers/recruitment/calculate-candidate-match"
	nr "recruitment-workers/internal/workers/recruitment/notify-recruiter"
	rc "recruitment-workers/internal/workers/recruitment/rank-candidates"
	rmr "recruitment-workers/internal/workers/recruitment/record-match-result"
	sc "recruitment-workers/internal/workers/recruitment/search-candidates"
	vmr "recruitment-workers/internal/workers/recruitment/validate-match-request"
)

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

type registeredWorker struct {
	taskType string
	handler  camunda.JobHandler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	shutdownTracer := func(context.Context) error { return nil }
	if cfg.Observability.Tracing.Enabled {
		shutdownTracer, err = observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Endpoint:       cfg.Observability.Tracing.Endpoint,
			Insecure:       cfg.Observability.Tracing.Insecure,
			SampleRatio:    cfg.Observability.Tracing.SampleRatio,
		})
		if err != nil {
			zapLog.Fatal("tracer init failed", zap.Error(err))
		}
		zapLog.Info("Tracing enabled", zap.String("endpoint", cfg.Observability.Tracing.Endpoint))
	}

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel metrics unavailable, continuing without them", zap.Error(err))
	}

	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: cfg.Camunda.UsePlaintext,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	redis := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	zapLog.Info("Redis connected successfully")

	var publisher messaging.Publisher = messaging.NoopPublisher{}
	if cfg.Messaging.NATS.Enabled {
		publisher, err = messaging.NewPublisher(cfg.Messaging.NATS, log)
		if err != nil {
			zapLog.Fatal("nats connection failed", zap.Error(err))
		}
		zapLog.Info("NATS connected successfully", zap.String("subject", cfg.Messaging.NATS.Subject))
	}

	var emailSender nr.EmailSender
	var smsSender nr.SMSSender
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		awsCfg, err := awsclients.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
		if cfg.Notifications.Email.Enabled {
			emailSender = awsclients.NewSESClient(awsCfg)
		}
		if cfg.Notifications.SMS.Enabled {
			smsSender = awsclients.NewSNSClient(awsCfg)
		}
	}

	ttl := cfg.Matching.CacheTTL()
	store := repository.NewStore(pg.DB, cache.New(redis.Client, ttl), ttl, log)

	zapLog.Info("All external service clients initialized")

	rankHandler, err := rc.NewHandler(rc.LoadConfig(cfg), store, log)
	if err != nil {
		zapLog.Fatal("failed to create rank-candidates handler", zap.Error(err))
	}
	matchHandler, err := ccm.NewHandler(ccm.LoadConfig(cfg), store, log)
	if err != nil {
		zapLog.Fatal("failed to create calculate-candidate-match handler", zap.Error(err))
	}

	workers := []registeredWorker{
		{vmr.TaskType, vmr.NewHandler(vmr.LoadConfig(cfg), log)},
		{ccm.TaskType, matchHandler},
		{sc.TaskType, sc.NewHandler(sc.LoadConfig(cfg), esClient.Client, log)},
		{rc.TaskType, rankHandler},
		{rmr.TaskType, rmr.NewHandler(rmr.LoadConfig(cfg), pg.DB, publisher, log)},
		{nr.TaskType, nr.NewHandler(nr.LoadConfig(cfg), pg.DB, emailSender, smsSender, log)},
	}

	checkRegistry(cfg, workers, zapLog)

	var running []worker.JobWorker
	for _, w := range workers {
		wcfg := config.GetWorkerConfig(cfg, w.taskType)
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", w.taskType))
			continue
		}
		running = append(running, camunda.StartWorker(zeebe.GetClient(), w.taskType, wcfg, w.handler, obs, zapLog))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(running)))

	srv := newHealthServer(cfg.Observability.MetricsPort, readinessChecks{
		"zeebe":         zeebe.HealthCheck,
		"postgres":      pg.Ping,
		"redis":         redis.Ping,
		"elasticsearch": esClient.Ping,
	})
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range running {
		w.Close()
		w.AwaitClose()
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	publisher.Close()
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := redis.Close(); err != nil {
		zapLog.Error("Error closing Redis client", zap.Error(err))
	}
	if err := pg.Close(); err != nil {
		zapLog.Error("Error closing PostgreSQL pool", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down tracer provider", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// checkRegistry warns about enabled workers the activity registry does not
// describe. A missing registry file is not fatal.
func checkRegistry(cfg *config.Config, workers []registeredWorker, log *zap.Logger) {
	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		log.Warn("activity registry not loaded", zap.String("path", cfg.Registry.Path), zap.Error(err))
		return
	}
	if err := reg.Validate(); err != nil {
		log.Warn("activity registry invalid", zap.Error(err))
	}

	var enabled []string
	for _, w := range workers {
		if config.IsWorkerEnabled(cfg, w.taskType) {
			enabled = append(enabled, w.taskType)
		}
	}
	for _, taskType := range reg.Missing(enabled) {
		log.Warn("worker missing from activity registry", zap.String("taskType", taskType))
	}

	for _, taskType := range enabled {
		activity, ok := reg.Find(taskType)
		if !ok {
			continue
		}
		wc := config.GetWorkerConfig(cfg, taskType)
		if registered, err := activity.TimeoutDuration(); err == nil && registered > 0 && registered != config.GetDuration(wc.Timeout) {
			log.Warn("worker timeout differs from activity registry",
				zap.String("taskType", taskType),
				zap.Duration("registry", registered),
				zap.Duration("configured", config.GetDuration(wc.Timeout)))
		}
		if activity.Retries != wc.MaxRetries {
			log.Warn("worker retries differ from activity registry",
				zap.String("taskType", taskType),
				zap.Int("registry", activity.Retries),
				zap.Int("configured", wc.MaxRetries))
		}
	}
}
