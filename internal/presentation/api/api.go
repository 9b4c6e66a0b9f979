package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hilthontt/breakout/internal/infrastructure/configs"
	"github.com/hilthontt/breakout/internal/infrastructure/logging"
	"github.com/hilthontt/breakout/internal/infrastructure/metrics"
	"github.com/hilthontt/breakout/internal/infrastructure/ratelimiter"
	audioHandler "github.com/hilthontt/breakout/internal/presentation/handler/audio"
	auditHandler "github.com/hilthontt/breakout/internal/presentation/handler/audit"
	eventsHandler "github.com/hilthontt/breakout/internal/presentation/handler/events"
	healthHandler "github.com/hilthontt/breakout/internal/presentation/handler/health"
	meetingsHandler "github.com/hilthontt/breakout/internal/presentation/handler/meetings"
	roomHandler "github.com/hilthontt/breakout/internal/presentation/handler/rooms"
	transfersHandler "github.com/hilthontt/breakout/internal/presentation/handler/transfers"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Handlers struct {
	Meetings  *meetingsHandler.Handler
	Rooms     *roomHandler.Handler
	Transfers *transfersHandler.Handler
	Audio     *audioHandler.Handler
	Events    *eventsHandler.Handler
	Health    *healthHandler.Handler
	// Audit is nil when the audit log is disabled.
	Audit *auditHandler.Handler
}

type Application struct {
	config      configs.Config
	handlers    Handlers
	logger      logging.Logger
	ratelimiter ratelimiter.Limiter
	metrics     *metrics.Metrics
}

func NewApplication(
	config configs.Config,
	handlers Handlers,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
	metrics *metrics.Metrics,
) *Application {
	return &Application{
		config:      config,
		handlers:    handlers,
		logger:      logger,
		ratelimiter: ratelimiter,
		metrics:     metrics,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(app.enableCors)
	r.Use(app.prometheusMiddleware)

	h := app.handlers

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health.GetHealth)
		r.Get("/healthz", h.Health.GetHealth)
		r.Get("/live", h.Health.GetHealth)
		r.Get("/ready", h.Health.GetReady)

		// Streams outlive any request timeout.
		r.With(app.rateLimiterMiddleware).Get("/meetings/{meetingId}/events", h.Events.StreamHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.rateLimiterMiddleware)
			r.Use(middleware.Timeout(requestTimeout))

			r.Route("/meetings", func(r chi.Router) {
				r.Post("/", h.Meetings.StartMeetingHandler)

				r.Route("/{meetingId}", func(r chi.Router) {
					r.Delete("/", h.Meetings.EndMeetingHandler)
					r.Post("/audio", h.Audio.ConnectHandler)

					r.Get("/breakouts", h.Rooms.FindBreakoutsHandler)
					r.Post("/breakouts", h.Rooms.CreateBreakoutsHandler)
					r.Delete("/breakouts", h.Rooms.EndAllBreakoutsHandler)
					r.Put("/breakouts/time", h.Rooms.SetBreakoutsTimeHandler)
					r.Get("/breakouts/time/check", h.Rooms.CheckBreakoutsTimeHandler)

					if h.Audit != nil {
						r.Get("/audit", h.Audit.ListHandler)
					}
				})
			})

			r.Route("/breakouts", func(r chi.Router) {
				r.Get("/join", h.Rooms.RedeemJoinURLHandler)
				r.Post("/{breakoutId}/join-url", h.Rooms.RequestJoinURLHandler)
			})

			r.Get("/users/me/breakout", h.Rooms.MyBreakoutHandler)

			r.Route("/transfers", func(r chi.Router) {
				r.Post("/", h.Transfers.TransferHandler)
				r.Get("/me", h.Transfers.MyTransferHandler)
				r.Delete("/me", h.Transfers.CancelMyTransferHandler)
				r.Post("/{transferId}/confirm", h.Transfers.ConfirmTransferHandler)
			})

			r.Route("/audio", func(r chi.Router) {
				r.Get("/me", h.Audio.MyLegsHandler)
				r.Delete("/me", h.Audio.DisconnectHandler)
			})
		})
	})

	r.Handle("/metrics", app.metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return otelhttp.NewHandler(r, "breakout-api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (app *Application) Run(ctx context.Context, mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error, 1)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "shutting down server", map[logging.ExtraKey]any{
			"addr": srv.Addr,
		})

		shutdown <- srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdown; err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}
