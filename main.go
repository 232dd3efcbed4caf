package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/creditbazaar/marketplace-api/auth"
	"github.com/creditbazaar/marketplace-api/cache"
	"github.com/creditbazaar/marketplace-api/config"
	chatControllers "github.com/creditbazaar/marketplace-api/controllers/chat"
	orderControllers "github.com/creditbazaar/marketplace-api/controllers/order"
	productcontroller "github.com/creditbazaar/marketplace-api/controllers/product"
	userControllers "github.com/creditbazaar/marketplace-api/controllers/user"
	"github.com/creditbazaar/marketplace-api/events"
	"github.com/creditbazaar/marketplace-api/logger"
	"github.com/creditbazaar/marketplace-api/models"
	"github.com/creditbazaar/marketplace-api/routes"
)

func main() {
	cfg := config.Load()
	logger.Initialize(cfg.AppEnv)
	defer logger.Log.Sync()

	auth.SetJWTSecret(cfg.JWTSecret)

	db := initDatabase(cfg)

	if err := db.AutoMigrate(
		&models.Credential{},
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Deal{},
		&models.DealProduct{},
		&models.ChatConversation{},
		&models.ChatMessage{},
	); err != nil {
		logger.Log.Fatal("auto-migrate failed", zap.Error(err))
	}

	bus := events.NewBus(logger.Log)
	store := newCacheStore(cfg)

	// Catalog writes go through the bus so the cache never serves stale
	// stock or status after an admin edit.
	bus.Subscribe(events.TopicInventoryChanged, func(_ any) {
		productcontroller.InvalidateProductCache(store)
	})

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, routes.Deps{
		DB:         db,
		Cache:      store,
		CacheTTL:   cfg.CacheTTL,
		Bus:        bus,
		OrderStore: orderControllers.NewGormStore(db),
		Directory:  userControllers.NewGormDirectory(db),
		OrderHub:   orderControllers.NewWSHub(bus),
		ChatHub:    chatControllers.NewWSHub(bus),
	})

	logger.Log.Info("listening", zap.String("addr", cfg.HTTPAddr))
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Log.Fatal("server exited", zap.Error(err))
	}
}

func initDatabase(cfg config.Config) *gorm.DB {
	// TranslateError maps driver unique-violation errors to
	// gorm.ErrDuplicatedKey, which the handlers rely on.
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Log.Fatal("database connection failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Log.Fatal("database handle unavailable", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db
}

func newCacheStore(cfg config.Config) cache.Store {
	if cfg.RedisURL == "" {
		return cache.NewMemoryStore()
	}
	client, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Log.Warn("redis unavailable, falling back to in-memory cache", zap.Error(err))
		return cache.NewMemoryStore()
	}
	logger.Log.Info("using redis cache")
	return cache.NewRedisStore(client)
}
