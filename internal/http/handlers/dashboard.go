package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slemppa/storized/internal/dashboard"
	"github.com/slemppa/storized/internal/http/views"
	"github.com/slemppa/storized/internal/middleware"
	"github.com/slemppa/storized/internal/session"
)

// Dashboard renders the content list filtered by the platform query label.
// A full page load re-fetches the list; HTMX filter clicks derive the view
// from the session's cached copy.
func (a *App) Dashboard(w http.ResponseWriter, r *http.Request) {
	state, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	a.renderDashboard(w, r, state, r.URL.Query().Get("platform"), false)
}

const unavailableMessage = "Palvelu ei juuri nyt vastaa. Yritä hetken kuluttua uudelleen."

// RefreshContent re-fetches the list from the backend, replacing the cache.
func (a *App) RefreshContent(w http.ResponseWriter, r *http.Request) {
	state, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	a.renderDashboard(w, r, state, r.URL.Query().Get("platform"), true)
}

// ViewContent opens the detail modal for one item.
func (a *App) ViewContent(w http.ResponseWriter, r *http.Request) {
	state, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	d := a.loadDashboard(r, state, false)
	if !d.ViewItem(chi.URLParam(r, "id")) {
		http.NotFound(w, r)
		return
	}
	p := views.NewDashboardPage(a.page(r, d.Modal.Item().Idea), d)
	views.RenderPage(w, r, a.Views.Modal(p), a.Views.Dashboard(p), p.Title)
}

// CloseModal answers the close button, the backdrop and the Escape key. The
// open item and the key arrive as query parameters and go through the
// dashboard's modal state machine. An empty HTMX response removes the modal
// and its key listener; a modal that stays open is rendered again.
func (a *App) CloseModal(w http.ResponseWriter, r *http.Request) {
	if !views.IsHTMXRequest(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	state, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	d := a.loadDashboard(r, state, false)
	q := r.URL.Query()
	d.ViewItem(q.Get("id"))
	if key := q.Get("key"); key != "" {
		d.HandleKey(key)
	} else {
		d.CloseModal()
	}
	if !d.Modal.ListensForKeys() {
		w.WriteHeader(http.StatusOK)
		return
	}
	p := views.NewDashboardPage(a.page(r, d.Modal.Item().Idea), d)
	a.render(w, r, http.StatusOK, a.Views.Modal(p))
}

// requireUser returns the resolved session. Without a user the browser is
// sent to "/", and a revoked session is ended and its cookie cleared. A
// transient failure during an HTMX request answers 503 and keeps the
// session so the page stays usable.
func (a *App) requireUser(w http.ResponseWriter, r *http.Request) (session.State, bool) {
	state := middleware.SessionFromContext(r.Context())
	if state.Authenticated() {
		return state, true
	}
	if state.SessionID != "" && !state.Revoked() && views.IsHTMXRequest(r) {
		http.Error(w, unavailableMessage, http.StatusServiceUnavailable)
		return state, false
	}
	a.dropRevoked(w, r, state)
	views.Redirect(w, r, "/")
	return state, false
}

// dropRevoked ends a session the backend will not accept again and clears
// its cookie. Other failures leave both in place.
func (a *App) dropRevoked(w http.ResponseWriter, r *http.Request, state session.State) {
	if state.SessionID == "" || !state.Revoked() {
		return
	}
	if err := a.Sessions.End(r.Context(), state.SessionID); err != nil {
		a.logger(r).Error().Err(err).Msg("end revoked session")
	}
	session.ClearCookie(w, a.CookieSecure)
}

// loadDashboard builds the dashboard for state. Full page loads mount with a
// fresh fetch; HTMX fragments reuse the cached list unless refresh is set.
func (a *App) loadDashboard(r *http.Request, state session.State, refresh bool) *dashboard.Dashboard {
	ctx := state.Context(r.Context())
	user := *state.User
	var items = a.Content.Mount
	if refresh || !views.IsHTMXRequest(r) {
		items = a.Content.Refresh
	}
	return dashboard.New(user, items(ctx, state.SessionID, user))
}

func (a *App) renderDashboard(w http.ResponseWriter, r *http.Request, state session.State, platform string, refresh bool) {
	d := a.loadDashboard(r, state, refresh)
	d.SelectPlatform(platform)
	p := views.NewDashboardPage(a.page(r, ""), d)
	views.RenderPage(w, r, a.Views.DashboardBody(p), a.Views.Dashboard(p), p.Title)
}
