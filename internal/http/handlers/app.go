package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"
	"github.com/rs/zerolog"

	"github.com/slemppa/storized/internal/authform"
	"github.com/slemppa/storized/internal/dashboard"
	"github.com/slemppa/storized/internal/http/views"
	"github.com/slemppa/storized/internal/middleware"
	"github.com/slemppa/storized/internal/session"
)

const siteName = "Storized"

// App holds the dependencies shared by the HTTP handlers.
type App struct {
	Logger       zerolog.Logger
	Views        *views.Renderer
	Sessions     *session.Manager
	AuthForm     *authform.Service
	Content      *dashboard.Loader
	Store        Pinger
	CookieSecure bool
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) page(r *http.Request, title string) views.Page {
	if title == "" {
		title = siteName
	} else {
		title = title + " | " + siteName
	}
	return views.Page{Title: title, Locale: middleware.LocaleFromContext(r.Context())}
}

// render writes component with status, for responses RenderPage does not cover.
func (a *App) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	templ.Handler(c, templ.WithStatus(status)).ServeHTTP(w, r)
}

// logger returns the request-scoped logger when the logging middleware ran.
func (a *App) logger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}
