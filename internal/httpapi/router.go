package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"alias_gateway/internal/catalog"
	"alias_gateway/internal/config"
	"alias_gateway/internal/middleware"
	"alias_gateway/internal/queue"
	"alias_gateway/internal/ratelimit"
	"alias_gateway/internal/storage"
	"alias_gateway/internal/telemetry"
	"alias_gateway/internal/utils"
)

// Dependencies aggregates all services the HTTP layer needs.
type Dependencies struct {
	Catalog   *catalog.Catalog
	Sink      telemetry.Sink
	Worker    *telemetry.Worker
	RateLimit ratelimit.Limiter

	db     *storage.DB
	redis  *storage.RedisClient
	queue  queue.Queue
	dlq    queue.DeadLetterQueue
	writer *telemetry.FileWriter
	logger *utils.Logger
}

// NewRouter creates an HTTP router with all dependencies wired up
func NewRouter(cfg *config.Config) (*http.ServeMux, *Dependencies, error) {
	logger := utils.NewLogger("httpapi")

	// Optional Postgres catalog source. Without DATABASE_URL the built-in
	// catalog is used; with it, a failure to load is fatal.
	catalogOpts := []catalog.Option{}

	var db *storage.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = storage.NewDB(storage.DBConfig{
			DSN:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		records, err := storage.NewCatalogRepository(db).List(ctx)
		cancel()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load alias catalog: %w", err)
		}
		logger.Info("Loaded alias catalog from database", "aliases", len(records))
		catalogOpts = append(catalogOpts, catalog.WithPublicRecords(records))
	}

	cat, err := catalog.New(catalogOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build alias catalog: %w", err)
	}

	// Optional Redis: backs the telemetry queue and the rate limiter.
	var redisClient *storage.RedisClient
	useRedis := cfg.Redis.Address != ""
	if useRedis {
		redisClient, err = storage.NewRedisClient(storage.RedisConfig{
			Address:      cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
	}

	// Telemetry pipeline: queue → worker → rotating JSONL file (+ S3).
	queueCfg := queue.DefaultConfig("telemetry")
	queueCfg.UseRedis = useRedis
	queueCfg.BatchSize = 100
	queueCfg.BatchTimeout = 5 * time.Second
	queueCfg.MaxRetries = 3
	queueCfg.RetryBackoff = 1 * time.Second

	var eventQueue queue.Queue
	var eventDLQ queue.DeadLetterQueue
	if useRedis {
		queueCfg.RedisAddr = cfg.Redis.Address
		queueCfg.RedisPassword = cfg.Redis.Password
		queueCfg.RedisDB = cfg.Redis.DB
		eventQueue, err = queue.NewRedisQueue(queueCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create telemetry queue: %w", err)
		}
		eventDLQ, err = queue.NewRedisDeadLetterQueue(queueCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create telemetry DLQ: %w", err)
		}
	} else {
		eventQueue = queue.NewMemoryQueue(queueCfg)
		eventDLQ = queue.NewMemoryDeadLetterQueue()
	}

	fileWriter, err := telemetry.NewFileWriter(
		cfg.Telemetry.FilePathTemplate,
		cfg.Telemetry.MaxSize,
		cfg.Telemetry.MaxFiles,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize telemetry writer: %w", err)
	}

	var s3Writer *telemetry.S3Writer
	if cfg.Telemetry.S3Enabled {
		s3Writer, err = telemetry.NewS3Writer(
			context.Background(),
			cfg.Telemetry.S3Bucket,
			cfg.Telemetry.S3Region,
			cfg.Telemetry.S3Prefix,
			cfg.Telemetry.PodName,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize S3 writer: %w", err)
		}
	}

	worker := telemetry.NewWorker(eventQueue, eventDLQ, fileWriter, s3Writer, queueCfg)
	worker.Start(context.Background())

	// Rate limiter for log ingestion; disabled or no Redis means noop.
	var limiter ratelimit.Limiter = ratelimit.NewNoopLimiter()
	if cfg.RateLimit.Enabled && redisClient != nil {
		limiter = ratelimit.WithLimit(
			ratelimit.NewRateLimiter(redisClient.Client()),
			cfg.RateLimit.PerMinute,
		)
	}

	deps := &Dependencies{
		Catalog:   cat,
		Sink:      telemetry.NewQueueSink(eventQueue),
		Worker:    worker,
		RateLimit: limiter,
		db:        db,
		redis:     redisClient,
		queue:     eventQueue,
		dlq:       eventDLQ,
		writer:    fileWriter,
		logger:    logger,
	}

	mux := http.NewServeMux()
	registerRoutes(mux, deps, cfg)

	return mux, deps, nil
}

func registerRoutes(mux *http.ServeMux, deps *Dependencies, cfg *config.Config) {
	// Public gateway endpoints
	mux.HandleFunc("/v1/aliases", deps.handleAliases)
	mux.HandleFunc("/v1/live/config", deps.handleLiveConfig(cfg))
	mux.HandleFunc("/v1/live", deps.handleLiveProbe)

	rateLimit := middleware.RateLimitMiddleware(deps.RateLimit)
	mux.Handle("/v1/log", rateLimit(http.HandlerFunc(deps.handleLog)))

	// Health check endpoint - public
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Admin surface; login is public, the rest sits behind the JWT.
	if cfg.Admin.PasswordHash != "" {
		adminAuth := NewAdminAuthHandler(cfg)
		mux.HandleFunc("/admin/auth/login", adminAuth.Login)

		adminJWT := middleware.AdminJWTMiddleware(cfg)
		mux.Handle("/admin/catalog", adminJWT(http.HandlerFunc(deps.handleAdminCatalog)))
		mux.Handle("/admin/deadletter", adminJWT(http.HandlerFunc(deps.handleAdminDeadLetter)))
	}
}

// Shutdown stops the telemetry pipeline in dependency order: worker first so
// queued events drain, then the queue, then the writer, then connections.
func (d *Dependencies) Shutdown(ctx context.Context) {
	if d.Worker != nil {
		if err := d.Worker.Stop(); err != nil {
			d.logger.Error("Failed to stop telemetry worker", "error", err)
		}
	}
	if d.queue != nil {
		if err := d.queue.Close(); err != nil {
			d.logger.Error("Failed to close telemetry queue", "error", err)
		}
	}
	if d.dlq != nil {
		if err := d.dlq.Close(); err != nil {
			d.logger.Error("Failed to close dead letter queue", "error", err)
		}
	}
	if d.writer != nil {
		if err := d.writer.Close(); err != nil {
			d.logger.Error("Failed to close telemetry writer", "error", err)
		}
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			d.logger.Error("Failed to close Redis client", "error", err)
		}
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			d.logger.Error("Failed to close database", "error", err)
		}
	}
}
