// Package authform holds the sign-in / sign-up form model and its submit flow.
package authform

import (
	"net/mail"
	"strings"
)

// Mode selects between signing in and registering.
type Mode string

const (
	ModeSignIn Mode = "signin"
	ModeSignUp Mode = "signup"
)

// MinPasswordLength mirrors the auth service's default password policy.
const MinPasswordLength = 6

// ParseMode returns the mode named by s, defaulting to sign-in.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeSignUp {
		return ModeSignUp
	}
	return ModeSignIn
}

// Form is the state of the auth form between requests. Password is never
// rendered back to the browser.
type Form struct {
	Mode     Mode
	Email    string
	Password string
	FullName string
	Error    string
	Notice   string
}

// New returns an empty form in mode.
func New(mode Mode) Form {
	return Form{Mode: mode}
}

// IsSignUp reports whether the form registers a new account.
func (f Form) IsSignUp() bool {
	return f.Mode == ModeSignUp
}

// Toggled switches mode and clears the error.
func (f Form) Toggled() Form {
	if f.IsSignUp() {
		f.Mode = ModeSignIn
	} else {
		f.Mode = ModeSignUp
	}
	f.Error = ""
	f.Notice = ""
	return f
}

// OtherMode is the mode the switch link leads to.
func (f Form) OtherMode() Mode {
	return f.Toggled().Mode
}

func (f Form) Title() string {
	if f.IsSignUp() {
		return "Rekisteröidy"
	}
	return "Kirjaudu sisään"
}

func (f Form) SwitchPrompt() string {
	if f.IsSignUp() {
		return "Onko sinulla jo tili?"
	}
	return "Eikö sinulla ole tiliä?"
}

func (f Form) SwitchLabel() string {
	return f.Toggled().Title()
}

// Validate re-checks the constraints the browser enforces natively and
// returns the first violation as a user-facing message.
func (f Form) Validate() string {
	email := strings.TrimSpace(f.Email)
	if email == "" {
		return "Sähköposti on pakollinen"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "Sähköpostiosoite on virheellinen"
	}
	if f.Password == "" {
		return "Salasana on pakollinen"
	}
	if len([]rune(f.Password)) < MinPasswordLength {
		return "Salasanan on oltava vähintään 6 merkkiä"
	}
	if f.IsSignUp() && strings.TrimSpace(f.FullName) == "" {
		return "Koko nimi on pakollinen"
	}
	return ""
}
