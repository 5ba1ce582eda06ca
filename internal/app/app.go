package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"time"

	"securecheck/internal/auth"
	"securecheck/internal/catalog"
	"securecheck/internal/config"
	"securecheck/internal/db"
	"securecheck/internal/entry"
	"securecheck/internal/health"
	"securecheck/internal/kafka"
	"securecheck/internal/logger"
	"securecheck/internal/messaging"
	"securecheck/internal/metrics"
	"securecheck/internal/middleware"
	"securecheck/internal/officer"
	"securecheck/internal/predict"
	"securecheck/internal/stop"
	"securecheck/internal/telemetry"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	EventsNATS  = "nats"
	EventsKafka = "kafka"
)

// EventProducer is what the entry workflow publishes through.
type EventProducer interface {
	entry.Producer
	io.Closer
}

type App struct {
	config        *config.Config
	router        chi.Router
	server        *http.Server
	logger        *slog.Logger
	db            *bun.DB
	producer      EventProducer
	meterProvider *sdkmetric.MeterProvider
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application", "git_commit", GitCommit, "build_time", BuildTime)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	ctx := context.Background()

	app := &App{
		config: cfg,
		logger: slogLogger,
	}

	if cfg.Telemetry.Enabled {
		provider, err := telemetry.InitMeterProvider(ctx, cfg.Telemetry.Endpoint, ServiceName, Version, slogLogger)
		if err != nil {
			slogLogger.Warn("failed to initialize OTel metrics", "error", err)
		} else {
			app.meterProvider = provider
		}
	}

	m, err := metrics.New(ServiceName, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize metrics, continuing without", "error", err)
		m = metrics.NewMock()
	}

	app.db = db.New(cfg.Database)
	if err := m.Database.RegisterDB(app.db.DB, otel.Meter(ServiceName)); err != nil {
		slogLogger.Warn("failed to register pool metrics", "error", err)
	}

	if err := db.Migrate(ctx, app.db); err != nil {
		log.Fatal("failed to run migrations:", err)
	}
	seeded, err := officer.NewRepository(app.db, m).Seed(ctx, officer.SampleSeeds)
	if err != nil {
		log.Fatal("failed to seed officers:", err)
	}
	slogLogger.Info("officers seeded", "inserted", seeded)

	app.producer = NewEventProducer(cfg.Events, slogLogger, m)

	app.router = NewRouter(cfg, app.db, app.producer, slogLogger, m)

	slogLogger.Info("application initialized successfully")

	return app
}

// NewEventProducer connects the configured broker. A broker that cannot be
// reached disables events instead of failing startup.
func NewEventProducer(cfg config.EventsConfig, logger *slog.Logger, m *metrics.Metrics) EventProducer {
	switch cfg.Driver {
	case EventsNATS:
		p, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, logger, m)
		if err != nil {
			logger.Warn("failed to initialize NATS producer", "error", err)
			return nil
		}
		logger.Info("NATS producer initialized successfully")
		return p
	case EventsKafka:
		p, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger, m)
		if err != nil {
			logger.Warn("failed to initialize Kafka producer", "error", err)
			return nil
		}
		logger.Info("Kafka producer initialized successfully")
		return p
	case "":
		logger.Info("record events disabled")
		return nil
	default:
		logger.Warn("unknown events driver, record events disabled", "driver", cfg.Driver)
		return nil
	}
}

// NewRouter builds the HTTP surface on top of an open database. producer may
// be nil.
func NewRouter(cfg *config.Config, database *bun.DB, producer EventProducer, logger *slog.Logger, m *metrics.Metrics) chi.Router {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	health.NewHandler(database, logger).RegisterRoutes(router)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	authService := auth.NewService(officer.NewRepository(database, m), tokens, logger, m)
	secureCookie := cfg.Env != "local" && cfg.Env != "test"

	records := stop.NewService(stop.NewRepository(database, m), logger, m)
	estimator := predict.NewEstimator(predict.NewSource(database, m), logger, m)

	var events entry.Producer
	if producer != nil {
		events = producer
	}
	entries := entry.NewService(records, estimator, events, logger, m)

	router.Group(func(r chi.Router) {
		r.Use(auth.SessionMiddleware(authService, logger))

		auth.NewHandler(authService, logger, secureCookie).RegisterRoutes(r)

		r.Route("/api", func(r chi.Router) {
			catalog.NewHandler(catalog.New(database, logger, m), logger).RegisterRoutes(r)
			stop.NewHandler(records, logger).RegisterRoutes(r)
			predict.NewHandler(estimator, logger).RegisterRoutes(r)
			entry.NewHandler(entries, logger).RegisterRoutes(r)
		})
	})

	return router
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, then releases the producer, the database
// and the meter provider.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error
	if a.server != nil {
		errs = append(errs, a.server.Shutdown(ctx))
	}
	if a.producer != nil {
		errs = append(errs, a.producer.Close())
	}
	db.Close(a.db)
	errs = append(errs, telemetry.Shutdown(ctx, a.meterProvider, a.logger))

	return errors.Join(errs...)
}
