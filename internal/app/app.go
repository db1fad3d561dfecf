package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"pollscope/internal/config"
	apierrors "pollscope/internal/errors"
	"pollscope/internal/fetcher"
	"pollscope/internal/infrastructure"
	customMiddleware "pollscope/internal/middleware"
	"pollscope/internal/services"
	handlers "pollscope/internal/transport/http"
	ws "pollscope/internal/websocket"
	"pollscope/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler

	PollService   *services.PollService
	HealthService *services.HealthService
	Scheduler     *services.Scheduler
	WebSocketHub  *ws.Hub

	fetcher fetcher.Fetcher
}

// Option customizes NewApplication
type Option func(*Application)

// WithLogger replaces the logger built from the logging config
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application) { a.Logger = logger }
}

// WithFetcher replaces the fetcher built from the source config
func WithFetcher(f fetcher.Fetcher) Option {
	return func(a *Application) { a.fetcher = f }
}

// NewApplication wires every component from cfg
func NewApplication(cfg *config.Config, opts ...Option) (*Application, error) {
	a := &Application{Config: cfg}
	for _, opt := range opts {
		opt(a)
	}

	if a.Logger == nil {
		logger, err := infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.Logger = logger
	}

	a.Logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("source_format", cfg.Source.Format),
		slog.String("source", cfg.Source.Origin()))

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	a.OTelProviders = providers

	if a.Metrics, err = infrastructure.CreateBusinessMetrics(providers.Meter); err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()

	return a, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	if a.fetcher == nil {
		client := &http.Client{
			Timeout:   a.Config.Source.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
		f, err := fetcher.New(a.Config.Source, client)
		if err != nil {
			return fmt.Errorf("failed to create fetcher: %w", err)
		}
		a.fetcher = f
	}

	a.PollService = services.NewPollService(a.fetcher, a.Logger,
		services.WithOrigin(a.Config.Source.Origin()),
		services.WithRefreshTimeout(a.Config.Source.Timeout),
		services.WithMetrics(a.Metrics),
	)

	a.WebSocketHub = ws.NewHub(a.Logger, a.Metrics)
	a.PollService.OnRefresh(a.WebSocketHub.BroadcastDataUpdate)

	a.Scheduler = services.NewScheduler(a.PollService,
		a.Config.Source.RefreshInterval,
		a.Config.Source.FetchOnStart,
		a.Logger)

	a.HealthService = services.NewHealthService(contracts.Version, a.PollService, a.WebSocketHub, a.Logger)
	a.ErrorHandler = handlers.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	return nil
}

// setupRouter builds the chi router.
// Order: RequestID → RealIP → OTel → Logger → Recoverer → Timeout
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// The upgrade needs the raw ResponseWriter, so /ws skips the wrapping middleware
	r.Get(config.WebSocketEndpoint, ws.Handler(a.WebSocketHub, a.Config.WebSocket, a.allowedOrigins(), a.Logger))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	health := handlers.NewHealthHandler(a.HealthService, a.Logger)
	polls := handlers.NewPollsHandler(a.PollService, customMiddleware.NewValidator(a.Logger), a.Logger, a.ErrorHandler)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(a.ErrorHandler.RecoveryMiddleware)
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}

		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
		}

		r.Use(customMiddleware.Compress(5, "application/json", "text/csv"))

		r.Route(config.APIBasePath, func(r chi.Router) {
			r.Mount("/health", health.Routes())
			r.Get("/version", health.Version)
			r.Mount("/polls", polls.Routes())
		})
	})

	a.Router = r
}

func (a *Application) allowedOrigins() []string {
	if !a.Config.Security.EnableCORS {
		return nil
	}
	return a.Config.Security.AllowedOrigins
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// every component down.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln together with the WebSocket hub and the
// refresh scheduler. It returns after a graceful shutdown.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.WebSocketHub.Run(gctx)
	})

	g.Go(func() error {
		return a.Scheduler.Run(gctx)
	})

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening", slog.String("address", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})

	err := g.Wait()
	a.Logger.Info("Application shutdown complete")
	return err
}

// shutdown gracefully stops the server and flushes telemetry
func (a *Application) shutdown() error {
	a.Logger.Info("Shutting down application")

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.WebSocketHub.Stop()

	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.Error("Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}
	return errors.Join(errs...)
}
