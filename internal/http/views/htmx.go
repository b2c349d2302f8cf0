package views

import (
	"bytes"
	"html"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// RequestHeader is the header HTMX sets on the requests it issues.
const RequestHeader = "HX-Request"

// IsHTMXRequest reports whether the request was initiated by HTMX.
func IsHTMXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get(RequestHeader), "true")
}

// Redirect sends the browser to target. HTMX requests get an HX-Redirect
// header so the whole page is replaced; others get a 303.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMXRequest(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// RenderPage renders fragment for HTMX requests and full otherwise. A nil
// fragment falls back to the <main> content of full.
func RenderPage(w http.ResponseWriter, r *http.Request, fragment, full templ.Component, title string) {
	if !IsHTMXRequest(r) {
		if full == nil {
			full = fragment
		}
		if full != nil {
			templ.Handler(full).ServeHTTP(w, r)
		}
		return
	}

	if fragment != nil {
		templ.Handler(fragment).ServeHTTP(w, r)
		return
	}
	if full == nil {
		return
	}

	var buf bytes.Buffer
	if err := full.Render(r.Context(), &buf); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	body := buf.Bytes()
	if main, ok := extractMainContent(body); ok {
		body = main
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if title = strings.TrimSpace(title); title != "" {
		_, _ = w.Write([]byte("<title>" + html.EscapeString(title) + "</title>"))
	}
	_, _ = w.Write(body)
}

func extractMainContent(body []byte) ([]byte, bool) {
	start := bytes.Index(body, []byte("<main"))
	if start < 0 {
		return nil, false
	}
	openClose := bytes.Index(body[start:], []byte(">"))
	if openClose < 0 {
		return nil, false
	}
	contentStart := start + openClose + 1
	end := bytes.Index(body[contentStart:], []byte("</main>"))
	if end < 0 {
		return nil, false
	}
	return body[contentStart : contentStart+end], true
}
