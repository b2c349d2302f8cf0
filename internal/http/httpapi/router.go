package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/slemppa/storized/internal/http/handlers"
	"github.com/slemppa/storized/internal/http/views"
	"github.com/slemppa/storized/internal/middleware"
)

// Options configures the middleware stack.
type Options struct {
	Logger        zerolog.Logger
	Sessions      middleware.SessionLoader
	DefaultLocale string
	CountryLookup middleware.CountryLookup
	// AuthRateLimit is the number of auth submits allowed per client IP per
	// minute. Zero disables the limit.
	AuthRateLimit int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	// Health
	r.Get("/v1/healthz", app.Health)
	r.Handle("/static/*", http.StripPrefix("/static/", views.Static()))
	r.Get("/landing", app.Landing)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(opts.Sessions))

		r.Get("/", app.Home)
		r.Get("/auth", app.AuthPage)
		r.With(middleware.RateLimit(opts.AuthRateLimit, time.Minute, http.HandlerFunc(app.AuthRateLimited))).
			Post("/auth", app.AuthSubmit)
		r.Post("/logout", app.Logout)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", app.Dashboard)
			r.Post("/refresh", app.RefreshContent)
			r.Get("/content/{id}", app.ViewContent)
			r.Get("/modal/close", app.CloseModal)
		})
	})

	return r
}
