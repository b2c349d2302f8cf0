package domain

import (
	"strings"
	"time"
)

// SubscriptionTier enumerates billing tiers stored on the profile row.
type SubscriptionTier string

const (
	SubscriptionFree       SubscriptionTier = "free"
	SubscriptionPro        SubscriptionTier = "pro"
	SubscriptionEnterprise SubscriptionTier = "enterprise"
)

// Valid reports whether the tier is one of the known values.
func (t SubscriptionTier) Valid() bool {
	switch t {
	case SubscriptionFree, SubscriptionPro, SubscriptionEnterprise:
		return true
	}
	return false
}

// User is the profile row stored in the users table. It is distinct from the
// raw authentication identity and linked to it through AuthUserID.
type User struct {
	ID                  string           `json:"id"`
	AuthUserID          string           `json:"auth_user_id"`
	Email               string           `json:"email"`
	FullName            string           `json:"full_name"`
	SubscriptionStatus  SubscriptionTier `json:"subscription_status"`
	OnboardingCompleted bool             `json:"onboarding_completed"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// NewProfile builds the default profile row for a freshly authenticated identity.
func NewProfile(identity Identity, fullName string) *User {
	return &User{
		AuthUserID:          identity.ID,
		Email:               identity.Email,
		FullName:            fullName,
		SubscriptionStatus:  SubscriptionFree,
		OnboardingCompleted: false,
	}
}

// DisplayName returns the full name, falling back to the email address.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	return u.Email
}

// Tier returns the subscription tier, defaulting to free for empty rows.
func (u User) Tier() SubscriptionTier {
	if u.SubscriptionStatus == "" {
		return SubscriptionFree
	}
	return u.SubscriptionStatus
}

// Identity is the authentication service's view of a user.
type Identity struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// FullName returns the full_name stored in the identity metadata, if any.
func (i Identity) FullName() string {
	if i.UserMetadata == nil {
		return ""
	}
	name, _ := i.UserMetadata["full_name"].(string)
	return name
}

// AuthSession is a backend session returned by sign-in, sign-up or refresh.
// AccessToken is empty when sign-up is waiting for email confirmation.
type AuthSession struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         Identity
}

// Active reports whether the session carries credentials usable for requests.
func (s AuthSession) Active() bool {
	return s.AccessToken != ""
}
