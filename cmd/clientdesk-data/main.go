package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clientdesk-data/internal/config"
	"clientdesk-data/internal/database"
	"clientdesk-data/internal/domain"
	httpapi "clientdesk-data/internal/http"
	"clientdesk-data/internal/repository"
	"clientdesk-data/internal/service"
	"clientdesk-data/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// devTenantID is seeded in memory mode so the API is usable without a DB.
const devTenantID = "00000000-0000-0000-0000-000000000001"

func main() {
	// Best-effort .env load for local dev; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis backs the API key resolution cache; fall back to the in-process
	// cache when it is unreachable.
	var kv store.KV
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err == nil {
		kv = store.NewRedisKV(redisClient)
	} else {
		logger.Warn("Redis unavailable, using in-memory key cache", zap.Error(err))
		kv = store.NewMemoryKV()
	}

	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			logger.Info("DB enabled for clientdesk-data")
		} else {
			logger.Warn("DB enabled but connection failed, falling back to memory repositories", zap.Error(err))
		}
	}

	var (
		contactsRepo  repository.ContactsRepository
		companiesRepo repository.CompaniesRepository
		tenantsRepo   repository.TenantsRepository
		apiKeysRepo   repository.APIKeysRepository
		pipelinesRepo repository.PipelinesRepository
		dealsRepo     repository.DealsRepository
	)
	var memTenants *repository.MemoryTenantsRepository

	if db != nil {
		contactsRepo = repository.NewPostgresContactsRepository(db)
		companiesRepo = repository.NewPostgresCompaniesRepository(db)
		tenantsRepo = repository.NewPostgresTenantsRepository(db)
		apiKeysRepo = repository.NewPostgresAPIKeysRepository(db)
		pipelinesRepo = repository.NewPostgresPipelinesRepository(db)
		dealsRepo = repository.NewPostgresDealsRepository(db)
	} else {
		contactsRepo = repository.NewMemoryContactsRepository()
		companiesRepo = repository.NewMemoryCompaniesRepository()
		memTenants = repository.NewMemoryTenantsRepository()
		tenantsRepo = memTenants
		apiKeysRepo = repository.NewMemoryAPIKeysRepository()
		pipelinesRepo = repository.NewMemoryPipelinesRepository()
		dealsRepo = repository.NewMemoryDealsRepository()
	}

	var notifier service.Notifier
	if cfg.Webhook.URL != "" {
		notifier = service.NewWebhookClient(
			cfg.Webhook.URL,
			time.Duration(cfg.Webhook.TimeoutSeconds)*time.Second,
			logger,
		)
	}

	authSvc := service.NewAuthService(apiKeysRepo, tenantsRepo, kv, logger)
	contactSvc := service.NewContactService(contactsRepo, companiesRepo, notifier, logger)
	companySvc := service.NewCompanyService(companiesRepo, logger)
	pipelineSvc := service.NewPipelineService(pipelinesRepo, dealsRepo, logger)
	tenantSvc := service.NewTenantService(tenantsRepo, logger)

	// Memory mode: seed a demo tenant and log a usable API key.
	if memTenants != nil {
		memTenants.SeedTenant(&domain.Tenant{TenantID: devTenantID, TenantName: "Demo"})
		if issued, err := authSvc.IssueKey(ctx, service.IssueKeyRequest{TenantID: devTenantID, Label: "dev"}); err == nil {
			logger.Info("Seeded demo tenant",
				zap.String("tenant_id", devTenantID),
				zap.String("api_key", issued.Secret),
			)
		}
	}

	authMW := httpapi.NewAuthMiddleware(authSvc, logger)
	router := httpapi.NewRouter(logger)
	router.RegisterHealthRoute()
	router.RegisterCRMRoutes(
		authMW,
		httpapi.NewContactsHandler(contactSvc, logger),
		httpapi.NewContactsExportHandler(contactSvc, cfg.Export.MaxRows, logger),
		httpapi.NewCompaniesHandler(companySvc, logger),
		httpapi.NewPipelinesHandler(pipelineSvc, logger),
		httpapi.NewDealsHandler(pipelineSvc, logger),
	)
	if cfg.AdminToken != "" {
		router.RegisterAdminRoutes(httpapi.NewAdminHandler(tenantSvc, authSvc, cfg.AdminToken, logger))
	}

	srv := service.NewServer(cfg.HTTP.Addr, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}
