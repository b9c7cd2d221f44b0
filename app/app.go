package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/Black-And-White-Club/curling-club/app/eventbus"
	"github.com/Black-And-White-Club/curling-club/app/modules/auth"
	authhandlers "github.com/Black-And-White-Club/curling-club/app/modules/auth/infrastructure/handlers"
	"github.com/Black-And-White-Club/curling-club/app/modules/event"
	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	eventdb "github.com/Black-And-White-Club/curling-club/app/modules/event/infrastructure/repositories"
	eventseed "github.com/Black-And-White-Club/curling-club/app/modules/event/infrastructure/seed"
	"github.com/Black-And-White-Club/curling-club/app/modules/user"
	userdb "github.com/Black-And-White-Club/curling-club/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/curling-club/app/shared/attr"
	"github.com/Black-And-White-Club/curling-club/app/shared/metrics"
	"github.com/Black-And-White-Club/curling-club/config"
	"github.com/Black-And-White-Club/curling-club/db/bundb"
	"github.com/ThreeDotsLabs/watermill"
	wmmetrics "github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "curling-club"

// App holds the wired application.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	DB          *bundb.DBService
	EventBus    eventbus.Bus
	Router      *message.Router
	HTTPRouter  chi.Router
	Registry    *prometheus.Registry
	AuthModule  *auth.Module
	UserModule  *user.Module
	EventModule *event.Module

	userRepo  userdb.Repository
	eventRepo eventdb.Repository
}

// NewApp wires storage, the event bus and every module.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		Config:   cfg,
		Logger:   NewLogger(cfg.Observability),
		Registry: prometheus.NewRegistry(),
	}
	logger := app.Logger
	tracer := otel.Tracer(serviceName)

	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	opMetrics, err := metrics.NewPrometheus(app.Registry, "curling_club")
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	if err := app.initStorage(ctx); err != nil {
		return nil, err
	}
	if err := app.seedEvents(ctx); err != nil {
		_ = app.closeStorage()
		return nil, err
	}

	if err := app.initEventBus(ctx); err != nil {
		_ = app.closeStorage()
		return nil, err
	}

	if err := app.initModules(ctx, tracer, opMetrics); err != nil {
		_ = app.Close()
		return nil, err
	}

	logger.InfoContext(ctx, "Application initialized",
		attr.String("storage", cfg.Storage.Driver),
		attr.Bool("nats", cfg.NATS.URL != ""),
		attr.String("timezone", cfg.Location().String()),
	)
	return app, nil
}

// NewLogger builds the process logger: JSON outside development, text in
// development.
func NewLogger(cfg config.ObservabilityConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Environment, "development") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(attr.String("service", serviceName))
}

func (app *App) initStorage(ctx context.Context) error {
	cfg := app.Config
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres.DSN, cfg.Location())
		if err != nil {
			return err
		}
		app.DB = dbService
		app.userRepo = dbService.UserDB
		app.eventRepo = dbService.EventDB
	default:
		users := userdb.NewMemoryRepository()
		app.userRepo = users
		app.eventRepo = eventdb.NewMemoryRepository(cfg.Location(), memberLookup(users))
	}
	return nil
}

// memberLookup resolves event attendees against the user store when both
// live in memory.
func memberLookup(users userdb.Repository) eventdb.MemberLookup {
	return func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]eventdomain.Person, error) {
		found, err := users.GetUsersByIDs(ctx, nil, ids)
		if err != nil {
			return nil, err
		}
		people := make(map[uuid.UUID]eventdomain.Person, len(found))
		for _, u := range found {
			people[u.ID] = eventdomain.Person{
				ID:       u.ID,
				Name:     u.Name,
				Email:    u.Email,
				JoinedAt: u.CreatedAt,
			}
		}
		return people, nil
	}
}

func (app *App) seedEvents(ctx context.Context) error {
	path := app.Config.Storage.SeedFile
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	records, err := eventseed.Load(f, app.Config.Location())
	if err != nil {
		return fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	created, err := eventseed.Apply(ctx, app.eventRepo, app.idb(), records)
	if err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}
	app.Logger.InfoContext(ctx, "Seeded events",
		attr.String("file", path),
		attr.Int("created", created),
		attr.Int("skipped", len(records)-created),
	)
	return nil
}

func (app *App) initEventBus(ctx context.Context) error {
	cfg := app.Config
	if cfg.NATS.URL == "" {
		app.EventBus = eventbus.NewInMemoryBus(app.Logger)
	} else {
		bus, err := eventbus.NewNATSBus(ctx, eventbus.Config{
			URL:              cfg.NATS.URL,
			QueueGroupPrefix: serviceName,
		}, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to create event bus: %w", err)
		}
		app.EventBus = bus
	}

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.HTTP.ShutdownTimeout,
	}, watermill.NewSlogLogger(app.Logger))
	if err != nil {
		_ = app.EventBus.Close()
		return fmt.Errorf("failed to create message router: %w", err)
	}
	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)
	wmmetrics.NewPrometheusMetricsBuilder(app.Registry, "curling_club", "bus").AddPrometheusRouterMetrics(router)

	app.Router = router
	return nil
}

func (app *App) initModules(ctx context.Context, tracer trace.Tracer, opMetrics metrics.OperationMetrics) error {
	cfg := app.Config
	logger := app.Logger
	validate := validator.New()

	app.AuthModule = auth.NewModule(ctx, cfg, logger, tracer, app.userRepo, validate)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(correlationMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(authhandlers.AllowOrigins(cfg.HTTP.AllowedOrigins))
	r.Use(app.AuthModule.SessionMiddleware())

	r.Get("/healthz", healthz)
	if cfg.Observability.MetricsAddress == "" {
		r.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))
	}

	app.AuthModule.RegisterRoutes(r)

	userModule, err := user.NewUserModule(ctx, logger, tracer, opMetrics, app.userRepo, app.bunDB(), app.EventBus, app.Router, r)
	if err != nil {
		return err
	}
	app.UserModule = userModule

	eventModule, err := event.NewEventModule(ctx, cfg, logger, tracer, opMetrics, app.eventRepo, app.bunDB(), app.EventBus, app.Router, validate, r)
	if err != nil {
		return err
	}
	app.EventModule = eventModule

	app.HTTPRouter = r
	return nil
}

// correlationMiddleware carries the request id into the context so log
// lines and published messages share it.
func correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chimiddleware.GetReqID(r.Context())
		if id == "" {
			id = watermill.NewUUID()
		}
		next.ServeHTTP(w, r.WithContext(attr.WithCorrelationID(r.Context(), id)))
	})
}

// idb returns the database handle for repository calls. It is a nil
// interface for in-memory storage.
func (app *App) idb() bun.IDB {
	if app.DB == nil {
		return nil
	}
	return app.DB.GetDB()
}

func (app *App) bunDB() *bun.DB {
	if app.DB == nil {
		return nil
	}
	return app.DB.GetDB()
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
