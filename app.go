package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// stores bundles the repositories selected by configuration.
type stores struct {
	db       *gorm.DB
	products repositories.ProductRepository
	settings repositories.SettingRepository
	orders   repositories.OrderRepository
	users    repositories.UserRepository
	carts    repositories.CartStore
}

// openDatabase connects to the SQL database and migrates the schema.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.DBDriver, err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}, &models.Setting{}, &models.User{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return db, nil
}

// openStores builds every repository. Orders and users always live in SQL; the catalog and
// settings move to MongoDB with CATALOG_BACKEND=mongo and carts to Redis with CART_BACKEND=redis.
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, func(), error) {
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("closing store", zap.Error(err))
			}
		}
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, sqlDB.Close)

	st := &stores{
		db:       db,
		products: repositories.NewGORMProductRepository(db),
		settings: repositories.NewGORMSettingRepository(db),
		orders:   repositories.NewGORMOrderRepository(db),
		users:    repositories.NewGORMUserRepository(db),
		carts:    repositories.NewMemoryCartStore(),
	}

	if cfg.CatalogBackend == "mongo" {
		mdb, err := repositories.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() error { return mdb.Client().Disconnect(context.Background()) })

		products := repositories.NewMongoProductRepository(mdb)
		if err := products.CreateIndexes(ctx); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to create product indexes: %w", err)
		}
		st.products = products
		st.settings = repositories.NewMongoSettingRepository(mdb)
		log.Info("catalog backed by MongoDB", zap.String("database", cfg.MongoDBName))
	}

	if cfg.CartBackend == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			client.Close()
			closeAll()
			return nil, nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
		}
		closers = append(closers, client.Close)
		st.carts = repositories.NewRedisCartStore(client, cfg.CartTTL)
		log.Info("carts backed by Redis", zap.String("addr", cfg.RedisAddr))
	}

	return st, closeAll, nil
}

// newApp wires services and handlers into a Fiber app.
func newApp(cfg *config.Config, st *stores, publisher services.EventPublisher, log *zap.Logger) (*fiber.App, *services.AuthService) {
	settingService := services.NewSettingService(st.settings, log)
	productService := services.NewProductService(st.products, settingService, log)
	searchService := services.NewSearchService(st.products, settingService, log)
	cartService := services.NewCartService(st.carts, st.products, settingService, log)
	orderService := services.NewOrderService(st.orders, st.products, st.carts, settingService, publisher, cfg.TaxRate, log)
	paymentService := services.NewPaymentService(st.orders, publisher, cfg.PaymentVerifyTimeout, log)
	authService := services.NewAuthService(st.users, cfg.JWTSecret, log)

	catalogHandler := handlers.NewCatalogHandler(searchService, productService, log)
	settingHandler := handlers.NewSettingHandler(settingService, log)
	cartHandler := handlers.NewCartHandler(cartService, cfg.CartTTL, log)
	authHandler := handlers.NewAuthHandler(authService, log)
	orderHandler := handlers.NewOrderHandler(orderService, cfg.CartTTL, log)
	paymentHandler := handlers.NewPaymentHandler(paymentService, log)
	productHandler := handlers.NewProductHandler(productService, log)

	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: errorHandler(log),
	})
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		code := fiber.StatusOK
		if sqlDB, err := st.db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	apiV1 := app.Group("/api/v1")

	// Public routes
	catalogHandler.RegisterRoutes(apiV1)
	settingHandler.RegisterRoutes(apiV1)
	cartHandler.RegisterRoutes(apiV1)
	authHandler.RegisterRoutes(apiV1)

	// Admin routes
	admin := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminRequired())
	productHandler.RegisterAdminRoutes(admin)
	settingHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)

	// Routes for signed-in customers
	protected := apiV1.Group("", middleware.AuthRequired(authService))
	orderHandler.RegisterRoutes(protected)
	paymentHandler.RegisterRoutes(protected)

	return app, authService
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{
			"message": utils.StatusMessage(code),
			"error":   err.Error(),
		})
	}
}
