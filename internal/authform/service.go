package authform

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/slemppa/storized/internal/domain"
)

const (
	genericFailure      = "Palvelu ei juuri nyt vastaa. Yritä hetken kuluttua uudelleen."
	confirmEmailMessage = "Tili luotu. Vahvista sähköpostiosoitteesi ja kirjaudu sitten sisään."
)

// SuccessFunc is invoked once the backend accepted the credentials and the
// profile row exists (or its creation was attempted).
type SuccessFunc func(ctx context.Context, session *domain.AuthSession) error

// Service runs the auth form submit flow against the backend.
type Service struct {
	auth   domain.AuthService
	users  domain.UserRepository
	logger zerolog.Logger
}

// NewService wires the form to the auth service and the profile table.
func NewService(auth domain.AuthService, users domain.UserRepository, logger zerolog.Logger) *Service {
	return &Service{auth: auth, users: users, logger: logger}
}

// Submit validates the form, authenticates and ensures the profile row. The
// returned form carries the error or notice to render; it is returned
// unchanged apart from those when onSuccess ran.
func (s *Service) Submit(ctx context.Context, form Form, onSuccess SuccessFunc) Form {
	form.Error = ""
	form.Notice = ""
	form.Email = strings.TrimSpace(form.Email)
	form.FullName = strings.TrimSpace(form.FullName)

	if msg := form.Validate(); msg != "" {
		form.Error = msg
		return form
	}

	var (
		session *domain.AuthSession
		err     error
	)
	if form.IsSignUp() {
		session, err = s.signUp(ctx, form)
	} else {
		session, err = s.signIn(ctx, form)
	}
	if err != nil {
		form.Error = s.message(err)
		return form
	}

	if !session.Active() {
		form.Notice = confirmEmailMessage
		form.Mode = ModeSignIn
		form.Password = ""
		return form
	}

	if onSuccess != nil {
		if err := onSuccess(ctx, session); err != nil {
			s.logger.Error().Err(err).Str("auth_user_id", session.User.ID).Msg("auth success callback")
			form.Error = genericFailure
		}
	}
	return form
}

func (s *Service) signIn(ctx context.Context, form Form) (*domain.AuthSession, error) {
	session, err := s.auth.SignIn(ctx, form.Email, form.Password)
	if err != nil {
		return nil, err
	}
	ctx = domain.ContextWithAccessToken(ctx, session.AccessToken)

	_, err = s.users.GetByAuthUserID(ctx, session.User.ID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		s.createProfile(ctx, session.User, session.User.FullName(), form.Email)
	default:
		s.logger.Error().Err(err).Str("auth_user_id", session.User.ID).Msg("lookup profile after sign in")
	}
	return session, nil
}

func (s *Service) signUp(ctx context.Context, form Form) (*domain.AuthSession, error) {
	session, err := s.auth.SignUp(ctx, form.Email, form.Password, map[string]any{"full_name": form.FullName})
	if err != nil {
		return nil, err
	}
	if session.User.ID != "" {
		ctx = domain.ContextWithAccessToken(ctx, session.AccessToken)
		s.createProfile(ctx, session.User, form.FullName, form.Email)
	}
	return session, nil
}

// createProfile inserts the default profile row. Failures are logged only.
func (s *Service) createProfile(ctx context.Context, identity domain.Identity, fullName, email string) {
	if identity.Email == "" {
		identity.Email = email
	}
	if _, err := s.users.Create(ctx, domain.NewProfile(identity, fullName)); err != nil {
		s.logger.Error().Err(err).Str("auth_user_id", identity.ID).Msg("create profile")
	}
}

// message turns a backend error into the single string shown on the form.
// Credential and input rejections carry the backend's own text.
func (s *Service) message(err error) string {
	if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrInvalidRequest) {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			return msg
		}
	}
	s.logger.Error().Err(err).Msg("auth request failed")
	return genericFailure
}
