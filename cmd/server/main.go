package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anara-skills/registrar/internal/api"
	"anara-skills/registrar/internal/auth"
	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/config"
	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/db"
	"anara-skills/registrar/internal/logging"
	"anara-skills/registrar/internal/metrics"
	"anara-skills/registrar/internal/providers"
	"anara-skills/registrar/internal/routes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid config: %v", err)
	}

	if err := logging.Init(cfg.AppEnv, cfg.LogLevel); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Registrar starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to DB with GORM
	orm, err := db.InitPostgresORM(cfg.PostgresDSN())
	if err != nil {
		logging.Fatal("Failed to connect to Postgres (GORM)", "error", err.Error())
	}
	if err := db.Migrate(orm); err != nil {
		logging.Fatal("Failed to migrate schema", "error", err.Error())
	}
	logging.Info("Connected to Postgres (GORM)")

	// sqlx pool for reporting queries
	if err := db.InitPostgres(cfg.PostgresDSN()); err != nil {
		logging.Fatal("Failed to connect to Postgres (sqlx)", "error", err.Error())
	}
	defer db.DB.Close()
	logging.Info("Connected to Postgres (sqlx)")

	var (
		cache       common.CacheInterface
		redisHealth func(context.Context) error
	)
	switch cfg.CacheBackend {
	case "redis":
		client := common.NewRedisClient(cfg.RedisAddr(), cfg.RedisPassword)
		rc, err := common.NewRedisCacheService(ctx, client)
		if err != nil {
			logging.Fatal("Failed to connect to Redis", "addr", cfg.RedisAddr(), "error", err.Error())
		}
		cache = rc
		redisHealth = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		logging.Info("Using Redis cache", "addr", cfg.RedisAddr())
	default:
		cache = common.NewCacheService(600, 300)
		logging.Info("Using in-memory cache")
	}
	defer cache.Close()

	storage, err := providers.NewS3DocumentStorage(ctx, providers.S3Config{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		logging.Fatal("Failed to configure document storage", "error", err.Error())
	}

	mailer := providers.NewSMTPEmailSender(providers.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	tokens := auth.NewTokenIssuer(map[constants.Role]string{
		constants.RoleCandidate: cfg.CandidateSecret,
		constants.RoleVolunteer: cfg.VolunteerSecret,
		constants.RoleAdmin:     cfg.AdminSecret,
	}, cfg.TokenTTL, cache)

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(api.Infra{
		ORM:         orm,
		SQL:         db.DB,
		Cache:       cache,
		Storage:     storage,
		Email:       mailer,
		Tokens:      tokens,
		Metrics:     metricsReg,
		FrontendURL: cfg.FrontendURL,
	})
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err.Error())
	}
	if redisHealth != nil {
		deps.Health["redis"] = redisHealth
	}

	router := routes.RegisterRoutes(deps, metricsReg, routes.RouterOptions{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		UpSince:        time.Now(),
		TrustProxy:     cfg.TrustProxy,
	})

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info("Server starting", "addr", cfg.HTTPAddr, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logging.Error("Server stopped with error", "error", err.Error())
		return
	}
	logging.Info("Server stopped")
}
