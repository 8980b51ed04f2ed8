package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/pet-care-backend/internal/address"
	"github.com/wichananm65/pet-care-backend/internal/cart"
	"github.com/wichananm65/pet-care-backend/internal/category"
	"github.com/wichananm65/pet-care-backend/internal/checkout"
	"github.com/wichananm65/pet-care-backend/internal/clinic"
	"github.com/wichananm65/pet-care-backend/internal/config"
	"github.com/wichananm65/pet-care-backend/internal/database"
	"github.com/wichananm65/pet-care-backend/internal/events"
	"github.com/wichananm65/pet-care-backend/internal/favorite"
	"github.com/wichananm65/pet-care-backend/internal/logging"
	"github.com/wichananm65/pet-care-backend/internal/order"
	"github.com/wichananm65/pet-care-backend/internal/payment"
	"github.com/wichananm65/pet-care-backend/internal/policy"
	"github.com/wichananm65/pet-care-backend/internal/product"
	"github.com/wichananm65/pet-care-backend/internal/recommended"
	"github.com/wichananm65/pet-care-backend/internal/storage"
	"github.com/wichananm65/pet-care-backend/internal/user"
)

type repositories struct {
	users      user.Repository
	products   product.Repository
	addresses  address.Repository
	localities address.LocalityRepository
	payments   payment.Repository
	orders     order.Repository
	clinics    clinic.Repository
}

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	if cfg.JWTSecret == "" {
		logger.Fatal().Msg("JWT_SECRET is not set")
	}

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		if err := database.Migrate(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("run migrations")
		}
		var err error
		db, err = database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect database")
		}
		defer db.Close()
	} else {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory repositories with sample data")
	}

	repos := newRepositories(db)
	store := newStore(ctx, cfg, db, logger)

	var forward events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka := events.NewKafkaPublisher(cfg.KafkaBrokers)
		defer kafka.Close()
		forward = kafka
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Msg("forwarding events to kafka")
	}
	bus := events.NewBus(forward)
	defer events.Audit(bus, logger, events.AllTopics...)()

	table, err := policy.LoadFile(cfg.PolicyFile)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.PolicyFile).Msg("load access policy")
	}

	productService := product.NewService(repos.products)
	userService := user.NewService(repos.users)
	addressService := address.NewService(repos.addresses, repos.localities)
	paymentService := payment.NewService(repos.payments)
	cartService := cart.NewService(cart.NewStoreRepository(store), productService, bus)
	favoriteService := favorite.NewService(favorite.NewStoreRepository(store), productService, bus)
	orderService := order.NewService(repos.orders, productService, paymentService, decimal.NewFromFloat(cfg.TaxRate), bus)
	clinicService := clinic.NewService(repos.clinics, bus)
	checkouts := checkout.NewManager(cartService, addressService, paymentService, orderService)

	userHandler := user.NewHandler(userService, cfg.JWTSecret)
	productHandler := product.NewHandler(productService)
	addressHandler := address.NewHandler(addressService)
	clinicHandler := clinic.NewHandler(clinicService)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(logging.Middleware(logger))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	userHandler.RegisterPublicRoutes(app)
	category.NewHandler(category.NewService(productService)).RegisterPublicRoutes(app)
	recommended.NewHandler(recommended.NewService(productService)).RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	addressHandler.RegisterPublicRoutes(app)
	clinicHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{SigningKey: []byte(cfg.JWTSecret)}))
	app.Use(policy.Middleware(table))

	userHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)
	clinicHandler.RegisterProtectedRoutes(app)
	cart.NewHandler(cartService).RegisterProtectedRoutes(app)
	favorite.NewHandler(favoriteService).RegisterProtectedRoutes(app)
	payment.NewHandler(paymentService).RegisterProtectedRoutes(app)
	order.NewHandler(orderService).RegisterProtectedRoutes(app)
	checkout.NewHandler(checkouts).RegisterProtectedRoutes(app)

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("http server listening")
		if err := app.Listen(cfg.Addr); err != nil {
			logger.Fatal().Err(err).Msg("http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func newRepositories(db *sql.DB) repositories {
	if db == nil {
		return repositories{
			users:      user.NewInMemoryRepository(nil),
			products:   product.NewInMemoryRepository(product.SampleCatalog()),
			addresses:  address.NewInMemoryRepository(nil),
			localities: address.SampleLocalities(),
			payments:   payment.NewInMemoryRepository(nil),
			orders:     order.NewInMemoryRepository(),
			clinics:    clinic.NewInMemoryRepository(clinic.SampleData()),
		}
	}
	addresses := address.NewPostgresRepository(db)
	return repositories{
		users:      user.NewPostgresRepository(db),
		products:   product.NewPostgresRepository(db),
		addresses:  addresses,
		localities: addresses,
		payments:   payment.NewPostgresRepository(db),
		orders:     order.NewPostgresRepository(db),
		clinics:    clinic.NewPostgresRepository(db),
	}
}

// newStore picks where carts and wishlists live: redis when configured,
// else the kv_entries table, else process memory.
func newStore(ctx context.Context, cfg config.Config, db *sql.DB, logger zerolog.Logger) storage.Store {
	if cfg.RedisAddr != "" {
		client, err := storage.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err == nil {
			logger.Info().Str("addr", cfg.RedisAddr).Msg("cart storage: redis")
			return storage.NewRedisStore(client, "petcare:", 30*24*time.Hour)
		}
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, falling back")
	}
	if db != nil {
		logger.Info().Msg("cart storage: postgres")
		return storage.NewPostgresStore(db)
	}
	logger.Info().Msg("cart storage: memory")
	return storage.NewMemoryStore()
}
