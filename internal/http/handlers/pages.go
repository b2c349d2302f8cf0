package handlers

import (
	"net/http"

	"github.com/slemppa/storized/internal/authform"
	"github.com/slemppa/storized/internal/http/views"
	"github.com/slemppa/storized/internal/middleware"
)

// Home renders the dashboard for a resolved user and the sign-in form
// otherwise.
func (a *App) Home(w http.ResponseWriter, r *http.Request) {
	state := middleware.SessionFromContext(r.Context())
	if !state.Authenticated() {
		a.dropRevoked(w, r, state)
		p := views.AuthPage{Page: a.page(r, ""), Form: authform.New(authform.ModeSignIn)}
		views.RenderPage(w, r, nil, a.Views.AuthPage(p), p.Title)
		return
	}
	a.renderDashboard(w, r, state, r.URL.Query().Get("platform"), false)
}

func (a *App) Landing(w http.ResponseWriter, r *http.Request) {
	p := views.LandingPage{Page: a.page(r, "")}
	views.RenderPage(w, r, nil, a.Views.Landing(p), p.Title)
}
