package di

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"gorm.io/gorm"

	"taskboard/application/serviceimpl"
	"taskboard/domain/ports"
	"taskboard/domain/repositories"
	"taskboard/domain/services"
	natspkg "taskboard/infrastructure/nats"
	"taskboard/infrastructure/postgres"
	redispkg "taskboard/infrastructure/redis"
	"taskboard/infrastructure/storage"
	"taskboard/infrastructure/websocket"
	"taskboard/interfaces/api/handlers"
	"taskboard/interfaces/api/routes"
	"taskboard/pkg/config"
	"taskboard/pkg/logger"
	"taskboard/pkg/scheduler"
)

type Container struct {
	// Configuration
	Config *config.Config

	// Infrastructure
	DB             *gorm.DB
	RedisClient    *redispkg.Client // Redis client สำหรับ identity cache (optional)
	NATSClient     *natspkg.Client  // NATS connection + JetStream (optional)
	Storage        ports.StoragePort
	LocalStorage   *storage.LocalStorage // nil เมื่อใช้ s3
	EventScheduler scheduler.EventScheduler

	// Repositories
	UserRepository         repositories.UserRepository
	TaskRepository         repositories.TaskRepository
	FileDeletionRepository repositories.FileDeletionRepository

	// Services
	UserService        services.UserService
	TaskService        services.TaskService
	AttachmentService  services.AttachmentService
	FileCleanupService services.FileCleanupService

	// WebSocket & Broadcasting
	WebSocketManager     *websocket.WebSocketManager
	TaskEventBroadcaster *websocket.TaskEventBroadcaster
	NATSSubscriber       *natspkg.TaskEventSubscriber
	TaskEventPublisher   ports.TaskEventPublisherPort
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Initialize() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initLogger(); err != nil {
		return err
	}

	if err := c.initInfrastructure(); err != nil {
		return err
	}

	if err := c.initRepositories(); err != nil {
		return err
	}

	if err := c.initEvents(); err != nil {
		return err
	}

	if err := c.initServices(); err != nil {
		return err
	}

	if err := c.initScheduler(); err != nil {
		return err
	}

	return nil
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	logger.Info("Configuration loaded")
	return nil
}

func (c *Container) initLogger() error {
	logConfig := logger.Config{
		Level:      c.Config.Log.Level,
		Format:     c.Config.Log.Format,
		Output:     c.Config.Log.Output,
		FilePath:   c.Config.Log.FilePath,
		MaxSize:    c.Config.Log.MaxSize,
		MaxBackups: c.Config.Log.MaxBackups,
		MaxAge:     c.Config.Log.MaxAge,
		Compress:   c.Config.Log.Compress,
	}

	if err := logger.Init(logConfig); err != nil {
		return err
	}

	logger.Info("Logger initialized",
		"level", c.Config.Log.Level,
		"format", c.Config.Log.Format,
		"output", c.Config.Log.Output,
		"file", c.Config.Log.FilePath,
	)
	return nil
}

func (c *Container) initInfrastructure() error {
	// Initialize Database
	dbConfig := postgres.DatabaseConfig{
		Driver:     c.Config.Database.Driver,
		Host:       c.Config.Database.Host,
		Port:       c.Config.Database.Port,
		User:       c.Config.Database.User,
		Password:   c.Config.Database.Password,
		DBName:     c.Config.Database.DBName,
		SSLMode:    c.Config.Database.SSLMode,
		SQLitePath: c.Config.Database.SQLitePath,
		LogLevel:   c.Config.Log.Level,
	}

	db, err := postgres.NewDatabase(dbConfig)
	if err != nil {
		return err
	}
	c.DB = db
	logger.Info("Database connected", "driver", dbConfig.Driver, "db", c.Config.Database.DBName)

	// Run migrations
	if err := postgres.Migrate(db); err != nil {
		return err
	}
	logger.Info("Database migrated")

	// Initialize Redis Client (optional - graceful degradation)
	if c.Config.Redis.URL != "" {
		redisClient, err := redispkg.NewClient(&c.Config.Redis)
		if err != nil {
			logger.Warn("Redis client initialization failed (identity cache disabled)", "error", err)
		} else {
			c.RedisClient = redisClient
		}
	}

	// Initialize NATS Client + JetStream (optional)
	if c.Config.NATS.URL != "" {
		natsClient, err := natspkg.NewClient(natspkg.ClientConfig{URL: c.Config.NATS.URL})
		if err != nil {
			logger.Warn("NATS client initialization failed (in-process events)", "error", err)
		} else {
			c.NATSClient = natsClient
		}
	}

	// Initialize Storage (Port/Adapter pattern)
	if err := c.initStorage(); err != nil {
		return err
	}

	return nil
}

// initStorage สร้าง storage adapter ตาม config
func (c *Container) initStorage() error {
	switch c.Config.Storage.Type {
	case "s3":
		// S3-Compatible Storage (MinIO / Cloudflare R2)
		s3Config := storage.S3StorageConfig{
			Endpoint:  c.Config.Storage.S3.Endpoint,
			AccessKey: c.Config.Storage.S3.AccessKey,
			SecretKey: c.Config.Storage.S3.SecretKey,
			Bucket:    c.Config.Storage.S3.Bucket,
			UseSSL:    c.Config.Storage.S3.UseSSL,
			Region:    c.Config.Storage.S3.Region,
			PublicURL: c.Config.Storage.S3.PublicURL,
		}
		s3Storage, err := storage.NewS3Storage(s3Config)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		c.Storage = s3Storage
		logger.Info("S3 Storage initialized",
			"endpoint", c.Config.Storage.S3.Endpoint,
			"bucket", c.Config.Storage.S3.Bucket,
		)

	default:
		localConfig := storage.LocalStorageConfig{
			BasePath:       c.Config.Storage.BasePath,
			BaseURL:        c.Config.Storage.BaseURL,
			MinFreePercent: c.Config.Storage.MinFreePercent,
		}
		localStorage, err := storage.NewLocalStorage(localConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize local storage: %w", err)
		}
		c.Storage = localStorage
		c.LocalStorage = localStorage
		logger.Info("Local Storage initialized", "path", c.Config.Storage.BasePath)
	}

	logger.Info("Storage provider ready", "provider", c.Storage.GetProviderName())
	return nil
}

func (c *Container) initRepositories() error {
	c.UserRepository = postgres.NewUserRepository(c.DB)
	c.TaskRepository = postgres.NewTaskRepository(c.DB)
	c.FileDeletionRepository = postgres.NewFileDeletionRepository(c.DB)
	logger.Info("Repositories initialized")
	return nil
}

// initEvents ต่อ task events: NATS → subscriber → WebSocket หรือส่งเข้า WebSocket ตรงๆ
func (c *Container) initEvents() error {
	c.WebSocketManager = websocket.NewWebSocketManager()
	c.TaskEventBroadcaster = websocket.NewTaskEventBroadcaster(c.WebSocketManager)

	if c.NATSClient == nil {
		c.TaskEventPublisher = c.TaskEventBroadcaster
		logger.Info("Task events delivered in-process (NATS not configured)")
		return nil
	}

	c.TaskEventPublisher = natspkg.NewTaskEventPublisher(c.NATSClient)
	c.NATSSubscriber = natspkg.NewTaskEventSubscriber(c.NATSClient)

	if err := c.TaskEventBroadcaster.Start(c.NATSSubscriber); err != nil {
		logger.Warn("Failed to start task event broadcaster, falling back to in-process", "error", err)
		c.TaskEventPublisher = c.TaskEventBroadcaster
		return nil
	}

	logger.Info("Task event broadcaster started (NATS → WebSocket)")
	return nil
}

func (c *Container) initServices() error {
	var cache ports.CachePort
	if c.RedisClient != nil {
		cache = c.RedisClient
	}

	c.UserService = serviceimpl.NewUserService(
		c.UserRepository,
		c.TaskRepository,
		cache,
		serviceimpl.UserServiceConfig{
			JWTSecret:        c.Config.JWT.Secret,
			JWTTTL:           c.Config.JWT.TTL,
			AllowAdminSignup: c.Config.Auth.AllowAdminSignup,
			IdentityCacheTTL: c.Config.Redis.TTL,
		},
	)

	c.AttachmentService = serviceimpl.NewAttachmentService(
		c.Storage,
		c.FileDeletionRepository,
		serviceimpl.AttachmentConfig{
			MaxFileSize:       c.Config.Upload.MaxFileSize,
			MaxFiles:          c.Config.Upload.MaxFiles,
			AllowedExtensions: c.Config.Upload.AllowedExtensions,
		},
	)

	c.TaskService = serviceimpl.NewTaskService(
		c.TaskRepository,
		c.UserRepository,
		c.AttachmentService,
		c.TaskEventPublisher,
	)

	logger.Info("Services initialized", "identity_cache", cache != nil)
	return nil
}

func (c *Container) initScheduler() error {
	c.EventScheduler = scheduler.NewEventScheduler()

	c.FileCleanupService = serviceimpl.NewFileCleanupService(
		c.EventScheduler,
		c.FileDeletionRepository,
		c.AttachmentService,
		c.Config.Cleanup.Cron,
		c.Config.Cleanup.BatchSize,
	)

	if c.Config.Cleanup.Enabled {
		if err := c.FileCleanupService.RegisterCleanupJob(); err != nil {
			logger.Warn("Failed to register file cleanup job", "error", err)
		} else {
			logger.Info("File cleanup job registered", "cron", c.Config.Cleanup.Cron)
		}

		// เก็บกวาดไฟล์ที่ค้างจากรอบก่อนทันทีตอน start
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if removed, err := c.FileCleanupService.RunCleanup(ctx); err != nil {
			logger.Warn("Initial file cleanup failed", "error", err)
		} else if removed > 0 {
			logger.Info("Initial file cleanup done", "removed", removed)
		}
	}

	c.EventScheduler.Start()
	logger.Info("Event scheduler started")
	return nil
}

func (c *Container) Cleanup() error {
	logger.Info("Starting cleanup...")

	// Stop scheduler
	if c.EventScheduler != nil {
		if c.EventScheduler.IsRunning() {
			c.EventScheduler.Stop()
			logger.Info("Event scheduler stopped")
		}
	}

	// Stop task event broadcaster (unsubscribes from NATS)
	if c.TaskEventBroadcaster != nil {
		c.TaskEventBroadcaster.Stop()
		logger.Info("Task event broadcaster stopped")
	}

	if c.WebSocketManager != nil {
		c.WebSocketManager.Stop()
		logger.Info("WebSocket manager stopped")
	}

	// Close NATS connection
	if c.NATSClient != nil {
		if err := c.NATSClient.Close(); err != nil {
			logger.Warn("Failed to close NATS connection", "error", err)
		}
	}

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis connection", "error", err)
		} else {
			logger.Info("Redis connection closed")
		}
	}

	// Close database connection
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Warn("Failed to close database connection", "error", err)
			} else {
				logger.Info("Database connection closed")
			}
		}
	}

	logger.Info("Cleanup completed")
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

func (c *Container) GetHandlerServices() *handlers.Services {
	svc := &handlers.Services{
		UserService:      c.UserService,
		TaskService:      c.TaskService,
		WebSocketManager: c.WebSocketManager,
		NATSClient:       c.NATSClient,
	}

	if sqlDB, err := c.DB.DB(); err == nil {
		svc.DBPinger = sqlDB
	}
	return svc
}

// GetRouteOptions ค่าที่ routes ต้องใช้ (static /uploads เฉพาะ local storage)
func (c *Container) GetRouteOptions() routes.Options {
	opts := routes.Options{
		UserService:      c.UserService,
		WebSocketManager: c.WebSocketManager,
	}

	if c.LocalStorage != nil {
		opts.UploadsRoot = c.LocalStorage.BasePath()
		opts.UploadsPrefix = "/uploads"
		// BASE_URL อาจเป็น URL เต็ม ใช้เฉพาะ path
		if u, err := url.Parse(c.Config.Storage.BaseURL); err == nil && u.Path != "" {
			opts.UploadsPrefix = u.Path
		}
	}
	return opts
}
