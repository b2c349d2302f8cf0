// Command usertier changes the subscription tier stored on a profile row.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/slemppa/storized/internal/domain"
	"github.com/slemppa/storized/internal/infra"
	"github.com/slemppa/storized/internal/sqlinline"
)

func main() {
	var (
		idFlag         string
		emailFlag      string
		tierFlag       string
		onboardedFlag  bool
		markOnboarding bool
	)

	flag.StringVar(&idFlag, "id", "", "profile ID to update (UUID)")
	flag.StringVar(&emailFlag, "email", "", "profile email to update")
	flag.StringVar(&tierFlag, "tier", string(domain.SubscriptionPro), "tier to assign (free, pro, enterprise)")
	flag.BoolVar(&onboardedFlag, "onboarded", false, "value for onboarding_completed, applied only with -set-onboarding")
	flag.BoolVar(&markOnboarding, "set-onboarding", false, "also overwrite onboarding_completed")
	flag.Parse()

	_ = godotenv.Load()

	userID := strings.TrimSpace(idFlag)
	email := strings.TrimSpace(emailFlag)
	tier := domain.SubscriptionTier(strings.ToLower(strings.TrimSpace(tierFlag)))

	if userID == "" && email == "" {
		exitWithError(errors.New("either -id or -email must be provided"))
	}
	if !tier.Valid() {
		exitWithError(fmt.Errorf("unsupported tier %q", tier))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli", os.Getenv("LOG_LEVEL")).With().Str("cmd", "usertier").Logger()
	runner := infra.NewSQLRunner(pool, logger)

	var current struct {
		ID    string
		Email string
		Tier  string
	}
	query, arg := sqlinline.QSelectUserTierByID, userID
	if userID == "" {
		query, arg = sqlinline.QSelectUserTierByEmail, email
	}
	if err := runner.QueryRow(ctx, query, arg).Scan(&current.ID, &current.Email, &current.Tier); err != nil {
		if infra.IsNoRows(err) {
			exitWithError(fmt.Errorf("profile not found: %w", domain.ErrNotFound))
		}
		exitWithError(fmt.Errorf("failed to load profile: %w", err))
	}

	var onboarding *bool
	if markOnboarding {
		onboarding = &onboardedFlag
	}

	var (
		updatedID    string
		updatedEmail string
		updatedTier  string
		onboarded    bool
	)
	row := runner.QueryRow(ctx, sqlinline.QUpdateUserTier, current.ID, string(tier), onboarding)
	if err := row.Scan(&updatedID, &updatedEmail, &updatedTier, &onboarded); err != nil {
		exitWithError(fmt.Errorf("failed to update tier: %w", err))
	}

	fmt.Printf("Profile %s (%s) moved from %s to %s\n", updatedID, updatedEmail, current.Tier, updatedTier)
	fmt.Printf("onboarding_completed=%t\n", onboarded)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
