package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"caravan/internal/ports"
)

// DefaultStartingCaps is granted when no amount is configured.
const DefaultStartingCaps = 500

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
	// WelcomeBonusGranted is false when the account already received its starting caps.
	WelcomeBonusGranted bool
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts     ports.AccountPort
	bonuses      ports.WelcomeBonusPort
	rng          *rand.Rand
	startingCaps int64
}

// NewService constructs an onboarding service with required ports.
// accounts/bonuses must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, bonuses ports.WelcomeBonusPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts:     accounts,
		bonuses:      bonuses,
		rng:          rng,
		startingCaps: DefaultStartingCaps,
	}
}

// WithStartingCaps overrides the one-time grant. Non-positive amounts are ignored.
func (s *Service) WithStartingCaps(amount int64) *Service {
	if amount > 0 {
		s.startingCaps = amount
	}
	return s
}

// OnboardNewUser gives a new account a display name and its starting caps.
// A failed profile update is reported in Result; a failed grant is an error.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.bonuses == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{}
	displayName := s.generateFriendlyName()
	if err := s.accounts.UpdateProfile(ctx, userID, displayName, displayName); err != nil {
		result.ProfileUpdateErr = err
	}

	granted, err := s.bonuses.GrantWelcomeBonusOnce(ctx, userID, s.startingCaps, map[string]interface{}{
		"reason": "starting_caps",
	})
	if err != nil {
		return result, fmt.Errorf("failed to grant starting caps: %w", err)
	}
	result.WelcomeBonusGranted = granted
	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Dusty", "Lucky", "Rad", "Wary", "Grim", "Swift", "Sly", "Lone", "Bold", "Wild"}
	nouns := []string{"Courier", "Ranger", "Trader", "Drifter", "Gecko", "Brahmin", "Scout", "Gambler", "Nomad", "Wanderer"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
