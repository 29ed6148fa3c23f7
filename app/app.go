// Package app wires configuration, storage, services and HTTP routes into a
// ready gin engine.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/config"
	"storefront/controllers"
	"storefront/libs"
	"storefront/middleware"
	"storefront/repositories"
	"storefront/routes"
	"storefront/services"
	"storefront/views"
)

const productCacheTTL = 5 * time.Minute

type App struct {
	Config *config.Config
	Logger *zap.Logger
	Router *gin.Engine

	redis         *redis.Client
	pool          *pgxpool.Pool
	producer      sarama.SyncProducer
	notifications *services.NotificationService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := libs.NewLogger(cfg.IsProduction())
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger}
	if err := a.build(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg, logger := a.Config, a.Logger

	if cfg.RedisConfigured() {
		client, err := config.ConnectRedis(ctx, cfg)
		switch {
		case err == nil:
			a.redis = client
			logger.Info("redis connected")
		case cfg.StoreDriver == config.DriverRedis:
			return err
		default:
			logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		}
	}

	if cfg.StoreDriver == config.DriverPostgres {
		if err := config.RunMigrations(cfg); err != nil {
			return err
		}
		pool, err := config.ConnectDB(ctx, cfg)
		if err != nil {
			return err
		}
		a.pool = pool
		logger.Info("database connected")
	}

	kv, err := a.keyValueStore()
	if err != nil {
		return err
	}

	var products repositories.ProductRepository = repositories.NewMemoryProductRepository(repositories.DefaultCatalog()...)
	if a.pool != nil {
		products = repositories.NewPostgresProductRepository(a.pool)
	}
	if a.redis != nil {
		cached := repositories.NewCachedProductRepository(products, a.redis, productCacheTTL)
		// the listing may predate the migrations just applied
		if err := cached.Invalidate(ctx); err != nil {
			logger.Warn("product cache invalidation failed", zap.Error(err))
		}
		products = cached
	}

	submitter, err := a.orderSubmitter()
	if err != nil {
		return err
	}

	renderer, err := views.NewRenderer(cfg.CurrencyLabel)
	if err != nil {
		return err
	}

	a.notifications = services.NewNotificationService(cfg.NotificationTTL, cfg.NotificationFade, logger)
	cartService := services.NewCartService(kv, a.notifications, submitter, logger,
		services.WithDefaultImage(cfg.DefaultImage),
		services.WithAddedMessage(cfg.AddedMessage),
		services.WithCheckoutRedirect(services.DefaultRedirectTo, cfg.CheckoutRedirectDelay),
	)
	productService := services.NewProductService(products)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORSMiddleware(cfg.OriginURL))
	router.SetHTMLTemplate(renderer.Templates())

	session := middleware.SessionMiddleware(middleware.SessionConfig{
		Secret: cfg.JWTSecret,
		TTL:    cfg.SessionTTL,
		Secure: cfg.IsProduction(),
		Logger: logger,
	})

	routes.SetupRoutes(router, routes.Controllers{
		Page:         controllers.NewPageController(cartService, productService, a.notifications, renderer, logger),
		Cart:         controllers.NewCartController(cartService, productService, a.notifications, renderer, logger),
		Product:      controllers.NewProductController(productService),
		Notification: controllers.NewNotificationController(a.notifications),
		Health:       controllers.NewHealthController(cartService),
	}, session, cfg.StaticDir)

	a.Router = router
	logger.Info("application ready",
		zap.String("env", cfg.AppEnv),
		zap.String("store_driver", cfg.StoreDriver),
		zap.Bool("env_file", cfg.EnvFileLoaded),
	)
	return nil
}

func (a *App) keyValueStore() (repositories.KeyValueStore, error) {
	switch a.Config.StoreDriver {
	case config.DriverMemory, "":
		return repositories.NewMemoryStore(), nil
	case config.DriverRedis:
		return repositories.NewRedisStore(a.redis, a.Config.CartTTL), nil
	case config.DriverPostgres:
		return repositories.NewPostgresStore(a.pool), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", a.Config.StoreDriver)
}

func (a *App) orderSubmitter() (services.OrderSubmitter, error) {
	cfg := a.Config
	var submitters services.MultiOrderSubmitter

	if cfg.KafkaBroker != "" {
		producer, err := libs.NewKafkaProducer(cfg.KafkaBroker, a.Logger)
		if err != nil {
			return nil, err
		}
		a.producer = producer
		submitters = append(submitters, services.NewKafkaOrderSubmitter(producer, cfg.KafkaTopic, a.Logger))
	}

	if mailer := libs.NewMailer(cfg); mailer != nil {
		submitters = append(submitters, services.NewEmailOrderSubmitter(mailer, cfg.SMTPFrom, cfg.OrderEmailTo, cfg.CurrencyLabel))
	}

	if len(submitters) == 0 {
		return services.NoopOrderSubmitter{}, nil
	}
	return submitters, nil
}

func (a *App) Close() {
	if a.notifications != nil {
		a.notifications.Shutdown()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.Logger.Warn("close kafka producer", zap.Error(err))
		}
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	a.Logger.Sync()
}
