package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/noticedesk/noticedesk-backend/internal/config"
	"github.com/noticedesk/noticedesk-backend/internal/handler"
	"github.com/noticedesk/noticedesk-backend/internal/middleware"
	"github.com/noticedesk/noticedesk-backend/internal/notify"
	"github.com/noticedesk/noticedesk-backend/internal/repository"
	"github.com/noticedesk/noticedesk-backend/internal/routes"
	"github.com/noticedesk/noticedesk-backend/internal/store"
	pkgjwt "github.com/noticedesk/noticedesk-backend/pkg/jwt"
	pkglogger "github.com/noticedesk/noticedesk-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pkglogger.InitStructured(cfg.Server.Env)
	pkglogger.Info("env=%s, loaded env files: %v", cfg.Server.Env, cfg.EnvFiles())

	// Record store: MySQL when reachable, in-memory otherwise so the
	// admin UI keeps working against fallback data.
	storeMode := "mysql"
	var client store.Client
	gormClient, err := initStore(cfg)
	if err != nil {
		pkglogger.Warn("Failed to connect to record store: %v (continuing with in-memory store)", err)
		storeMode = "memory"
		client = store.NewMemoryClient()
	} else {
		pkglogger.Info("Connected to MySQL record store")
		client = gormClient
	}

	// Redis query cache is optional; skip silently when not configured.
	if cfg.Redis.Host != "" {
		redisClient, err := store.DialCache(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize, cfg.StoreTimeout())
		if err != nil {
			pkglogger.Warn("Redis unavailable: %v (continuing without query cache)", err)
		} else {
			pkglogger.Info("Query cache enabled")
			client = store.NewCachedClient(client, redisClient, time.Duration(cfg.Store.CacheTTLSeconds)*time.Second)
		}
	}

	gen, err := store.NewGenerator(cfg.Fallback.SeedFile)
	if err != nil {
		log.Fatalf("Failed to load fallback seed: %v", err)
	}

	bus := notify.NewBus(cfg.DebounceWindow())
	eventsRepo := repository.NewEventRepository(client, bus, gen)
	postsRepo := repository.NewPostRepository(client, bus, gen)

	// Archive viewers and the calendar share these repositories; a
	// change published by any operation triggers one debounced reload.
	bus.Subscribe(notify.TopicEventsChanged, func() { _ = eventsRepo.Load(context.Background()) })
	bus.Subscribe(notify.TopicPostsChanged, func() { _ = postsRepo.Load(context.Background()) })

	// Warm the collections so the first request is served from state.
	go func() { _ = eventsRepo.Load(context.Background()) }()
	go func() { _ = postsRepo.Load(context.Background()) }()

	jwtManager := pkgjwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	if cfg.Server.Env != "local" && cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())

	routes.Setup(router, routes.Handlers{
		Events:      handler.NewEventHandler(eventsRepo),
		Posts:       handler.NewPostHandler(postsRepo),
		Attachments: handler.NewAttachmentHandler(client, gen),
		Health:      handler.NewHealthHandler(storeMode),
	}, jwtManager)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.Info("Listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func initStore(cfg *config.Config) (*store.GormClient, error) {
	if cfg.Database.Host == "" {
		return nil, fmt.Errorf("no database host configured")
	}
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	client := store.NewGormClient(db, cfg.StoreTimeout())
	if err := client.Migrate(); err != nil {
		return nil, err
	}
	return client, nil
}
