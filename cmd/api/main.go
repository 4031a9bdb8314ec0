package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"ocrdocs/docs"
	"ocrdocs/internal/config"
	"ocrdocs/internal/database"
	"ocrdocs/internal/database/migration"
	handlers "ocrdocs/internal/http/handler"
	"ocrdocs/internal/http/middleware"
	"ocrdocs/internal/logging"
	"ocrdocs/internal/otel"
	"ocrdocs/internal/repository"
	"ocrdocs/internal/repository/mongodb"
	"ocrdocs/internal/repository/postgres"
	"ocrdocs/internal/service"
	"ocrdocs/internal/storage"
)

// uploads carry no size limit of their own; fiber needs some cap
const bodyLimit = 1 << 30

// @title OCR Document API
// @version 1.0
// @BasePath /
func main() {
	// .env is auto-loaded if present
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log := logging.New(cfg.LogLevel, time.Local)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx := context.Background()

	if cfg.NeedsSecrets() {
		sm, err := config.NewSecretsClient(cfg.AWSRegion)
		if err != nil {
			log.WithError(err).Fatal("failed to create secrets client")
		}
		if err := config.ResolveSecrets(ctx, cfg, sm); err != nil {
			log.WithError(err).Fatal("failed to resolve secrets")
		}
	}

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize tracing")
	}
	defer shutdownTracing(context.Background())

	docRepo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize repository")
	}
	defer closeRepo()

	blobStore, err := openStorage(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize blob storage")
	}

	docSvc := service.NewDocumentService(blobStore, docRepo, cfg.Storage.URLPrefix)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    bodyLimit,
	})

	metrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.WithError(err).Fatal("failed to register metrics")
	}

	// Register global middleware
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
	// tracing first so the request log can carry trace_id
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(metrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, docRepo, docSvc, blobStore, cfg.Storage.URLPrefix)

	mountSwagger(app, cfg.AppHost)

	addr := ":" + cfg.Port
	log.WithFields(logrus.Fields{
		"component":      "server",
		"event":          "listening",
		"addr":           addr,
		"db_driver":      cfg.DBDriver,
		"storage_driver": cfg.Storage.Driver,
	}).Info("server starting")

	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}

// openRepository connects the configured document backend. The returned func releases it.
func openRepository(ctx context.Context, cfg *config.AppConfig, log logrus.FieldLogger) (repository.DocumentRepository, func(), error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Database.Migrate {
			if err := migration.EnsureMigrated(db, log, cfg.Database.Host); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}
		return postgres.NewDocumentPostgres(db), func() { _ = db.Close() }, nil

	case config.DriverMongo:
		client, err := database.NewMongo(cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		repo := mongodb.NewDocumentMongo(client, client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection))
		ictx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := repo.EnsureIndexes(ictx); err != nil {
			log.WithFields(logrus.Fields{"component": "database", "event": "mongo_index_failed"}).
				WithError(err).Warn("could not ensure indexes")
		}
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil
	}
	return nil, nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
}

func openStorage(cfg *config.AppConfig) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageLocal:
		return storage.NewLocal(cfg.Storage.UploadDir)
	case config.StorageMinIO:
		return storage.NewMinIO(cfg.MinIO)
	case config.StorageAzure:
		return storage.NewAzure(cfg.Azure)
	}
	return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
}

// mountSwagger pins the advertised host before serving so handlers only read the shared doc.
// An empty scheme list lets the UI use the scheme of the page it was loaded from.
func mountSwagger(app *fiber.App, host string) {
	docs.SwaggerInfo.Host = host
	app.Get("/swagger/*", swagger.HandlerDefault)
}
