package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"coachhub-backend/internal/config"
	infraCache "coachhub-backend/internal/infrastructure/cache"
	"coachhub-backend/internal/infrastructure/database"
	"coachhub-backend/internal/infrastructure/storage"
	"coachhub-backend/pkg/cache"

	"coachhub-backend/internal/domains/client"
	clientHandler "coachhub-backend/internal/domains/client/handler"
	clientRepo "coachhub-backend/internal/domains/client/repository"
	clientService "coachhub-backend/internal/domains/client/service"

	"coachhub-backend/internal/domains/importer"
	importHandler "coachhub-backend/internal/domains/importer/handler"
	importRepo "coachhub-backend/internal/domains/importer/repository"
	importService "coachhub-backend/internal/domains/importer/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Everything in it is a
// singleton living for the whole process.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================

	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	Storage     *storage.MinIOStorage
	AsynqClient *asynq.Client

	// ========================================
	// REPOSITORY LAYER
	// ========================================

	ClientRepo client.Repository
	ImportRepo importer.Repository

	// ========================================
	// SERVICE LAYER
	// ========================================

	ClientService client.Service
	ImportService importer.Service

	// ========================================
	// HANDLER LAYER
	// ========================================

	ClientHandler *clientHandler.ClientHandler
	ImportHandler *importHandler.ImportHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer initializes the whole dependency graph in order:
// config, then infrastructure, then repositories, services, handlers.
// A wrong order here is a nil pointer at startup.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	log.Println("🗄️  Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	log.Println("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE CACHE
	// ========================================
	log.Println("🔴 Connecting to Redis...")

	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err := redisCache.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("redis health check failed: %w", err)
	}

	c.Cache = redisCache
	log.Println("✅ Redis connected")

	// ========================================
	// STEP 4: INITIALIZE OBJECT STORAGE
	// ========================================
	log.Println("📦 Connecting to MinIO...")

	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio: %w", err)
	}

	c.Storage = minioStorage
	log.Println("✅ MinIO connected")

	// ========================================
	// STEP 5: INITIALIZE TASK QUEUE CLIENT
	// ========================================
	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	log.Println("✅ Asynq client ready")

	// ========================================
	// STEP 6: REPOSITORIES
	// ========================================
	c.ClientRepo = clientRepo.NewPostgresRepository(db.Pool)
	c.ImportRepo = importRepo.NewPostgresRepository(db.Pool)

	// ========================================
	// STEP 7: SERVICES
	// ========================================
	c.ClientService = clientService.NewClientService(c.ClientRepo, c.Cache)

	submitter := importService.NewClientSubmitter(c.ClientRepo)
	c.ImportService = importService.NewImportService(
		cfg.Import,
		submitter,
		c.ImportRepo,
		c.Storage,
		c.Cache,
		c.AsynqClient,
	)

	// ========================================
	// STEP 8: HANDLERS
	// ========================================
	c.ClientHandler = clientHandler.NewClientHandler(c.ClientService)
	c.ImportHandler = importHandler.NewImportHandler(c.ImportService, cfg.Import)

	log.Println("✅ DI Container ready")
	return c, nil
}

// Cleanup closes every connection the container owns. Call it on shutdown.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Asynq client close failed: %v", err)
		}
	}

	if closer, ok := c.Cache.(interface{ Close() error }); ok && closer != nil {
		if err := closer.Close(); err != nil {
			log.Printf("⚠️  Redis close failed: %v", err)
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}

	log.Println("✅ Cleanup done")
}
