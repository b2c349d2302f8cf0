package handlers

import (
	"context"
	"net/http"

	"github.com/slemppa/storized/internal/authform"
	"github.com/slemppa/storized/internal/domain"
	"github.com/slemppa/storized/internal/http/views"
	"github.com/slemppa/storized/internal/middleware"
	"github.com/slemppa/storized/internal/session"
)

const rateLimitedMessage = "Liian monta yritystä. Odota hetki ja yritä uudelleen."

// AuthPage renders the form in the requested mode. Switching modes keeps the
// entered email and name and drops any error.
func (a *App) AuthPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromContext(r.Context()).Authenticated() {
		views.Redirect(w, r, "/")
		return
	}
	q := r.URL.Query()
	form := authform.New(authform.ParseMode(q.Get("mode")))
	form.Email = q.Get("email")
	form.FullName = q.Get("full_name")
	a.renderAuth(w, r, http.StatusOK, form)
}

// AuthSubmit signs in or registers. On success the backend session is stored
// under a new opaque id and the browser is sent to the dashboard.
func (a *App) AuthSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.renderAuth(w, r, http.StatusBadRequest, authform.Form{Error: "Virheellinen lomake"})
		return
	}
	form := authform.Form{
		Mode:     authform.ParseMode(r.PostFormValue("mode")),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		FullName: r.PostFormValue("full_name"),
	}

	signedIn := false
	result := a.AuthForm.Submit(r.Context(), form, func(ctx context.Context, s *domain.AuthSession) error {
		id, err := a.Sessions.Begin(ctx, s)
		if err != nil {
			return err
		}
		a.endPrevious(ctx, r)
		session.WriteCookie(w, id, a.Sessions.TTL(), a.CookieSecure)
		signedIn = true
		return nil
	})
	if signedIn {
		views.Redirect(w, r, "/")
		return
	}
	a.renderAuth(w, r, http.StatusOK, result)
}

// AuthRateLimited answers auth submits rejected by the rate limiter.
func (a *App) AuthRateLimited(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	form := authform.Form{
		Mode:     authform.ParseMode(r.PostFormValue("mode")),
		Email:    r.PostFormValue("email"),
		FullName: r.PostFormValue("full_name"),
		Error:    rateLimitedMessage,
	}
	status := http.StatusTooManyRequests
	if views.IsHTMXRequest(r) {
		status = http.StatusOK
	}
	a.renderAuth(w, r, status, form)
}

// Logout ends the backend session, drops the local session and cached
// content, and sends the browser back to the sign-in form.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := session.ReadCookie(r); ok {
		if err := a.Sessions.End(r.Context(), id); err != nil {
			a.logger(r).Error().Err(err).Msg("end session")
		}
	}
	session.ClearCookie(w, a.CookieSecure)
	views.Redirect(w, r, "/")
}

func (a *App) endPrevious(ctx context.Context, r *http.Request) {
	id, ok := session.ReadCookie(r)
	if !ok {
		return
	}
	if err := a.Sessions.End(ctx, id); err != nil {
		a.logger(r).Error().Err(err).Msg("end previous session")
	}
}

func (a *App) renderAuth(w http.ResponseWriter, r *http.Request, status int, form authform.Form) {
	p := views.AuthPage{Page: a.page(r, form.Title()), Form: form}
	if views.IsHTMXRequest(r) {
		a.render(w, r, status, a.Views.AuthForm(p))
		return
	}
	a.render(w, r, status, a.Views.AuthPage(p))
}
