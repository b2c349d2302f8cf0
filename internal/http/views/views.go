// Package views renders the HTML pages and HTMX fragments.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/slemppa/storized/internal/authform"
	"github.com/slemppa/storized/internal/dashboard"
	"github.com/slemppa/storized/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// PreviewMediaCount is how many thumbnails a card shows before "+N".
const PreviewMediaCount = 3

// Page carries what the layout needs.
type Page struct {
	Title  string
	Locale string
}

type LandingPage struct {
	Page
}

type AuthPage struct {
	Page
	Form authform.Form
}

type DashboardPage struct {
	Page
	Dashboard *dashboard.Dashboard
	Platforms []dashboard.Platform
}

// NewDashboardPage wraps d with the sidebar table.
func NewDashboardPage(page Page, d *dashboard.Dashboard) DashboardPage {
	return DashboardPage{Page: page, Dashboard: d, Platforms: dashboard.Platforms[:]}
}

// Renderer holds the parsed template sets, one per page.
type Renderer struct {
	landing   *template.Template
	auth      *template.Template
	dashboard *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	funcs := templateFuncs()
	parse := func(files ...string) (*template.Template, error) {
		paths := append([]string{"templates/layout.html"}, files...)
		return template.New("layout").Funcs(funcs).ParseFS(templateFS, paths...)
	}

	landing, err := parse("templates/landing.html")
	if err != nil {
		return nil, fmt.Errorf("parse landing: %w", err)
	}
	auth, err := parse("templates/auth.html")
	if err != nil {
		return nil, fmt.Errorf("parse auth: %w", err)
	}
	dash, err := parse("templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("parse dashboard: %w", err)
	}
	return &Renderer{landing: landing, auth: auth, dashboard: dash}, nil
}

// Static serves the embedded stylesheet.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

func (r *Renderer) Landing(p LandingPage) templ.Component {
	return component(r.landing, "layout", p)
}

func (r *Renderer) AuthPage(p AuthPage) templ.Component {
	return component(r.auth, "layout", p)
}

func (r *Renderer) AuthForm(p AuthPage) templ.Component {
	return component(r.auth, "auth_form", p)
}

func (r *Renderer) Dashboard(p DashboardPage) templ.Component {
	return component(r.dashboard, "layout", p)
}

// DashboardBody is the sidebar and content grid swapped by filter and refresh.
func (r *Renderer) DashboardBody(p DashboardPage) templ.Component {
	return component(r.dashboard, "dashboard_body", p)
}

// Modal renders the detail modal, or nothing when it is closed.
func (r *Renderer) Modal(p DashboardPage) templ.Component {
	return component(r.dashboard, "modal", p)
}

func component(t *template.Template, name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, name, data)
	})
}

var helsinki = loadHelsinki()

func loadHelsinki() *time.Location {
	loc, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		return time.UTC
	}
	return loc
}

var tierCaser = cases.Upper(language.Finnish)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"tierBadge":     TierBadge,
		"fiDate":        FormatDate,
		"previewMedia":  PreviewMedia,
		"mediaOverflow": MediaOverflow,
		"inc":           func(i int) int { return i + 1 },
	}
}

// TierBadge upper-cases the subscription tier for the header badge.
func TierBadge(tier domain.SubscriptionTier) string {
	return tierCaser.String(string(tier))
}

// FormatDate formats t the way fi-FI dates are written: d.m.yyyy.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(helsinki)
	return fmt.Sprintf("%d.%d.%d", t.Day(), int(t.Month()), t.Year())
}

// PreviewMedia returns the thumbnails shown on a card.
func PreviewMedia(urls []string) []string {
	if len(urls) > PreviewMediaCount {
		return urls[:PreviewMediaCount]
	}
	return urls
}

// MediaOverflow is the number of media items not shown on a card.
func MediaOverflow(urls []string) int {
	if len(urls) > PreviewMediaCount {
		return len(urls) - PreviewMediaCount
	}
	return 0
}
