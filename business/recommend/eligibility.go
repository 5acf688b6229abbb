package recommend

import (
	"context"

	"aiImageStudio/domain"
)

// EligibilityChecker decides if a candidate may be shown to a user
// (entitlements, regional availability, moderation holds).
type EligibilityChecker interface {
	IsEligible(ctx context.Context, userID uint, candidate domain.Candidate) (bool, error)
}

// NoopEligibilityChecker is the default implementation that allows everything.
type NoopEligibilityChecker struct{}

func (NoopEligibilityChecker) IsEligible(ctx context.Context, userID uint, candidate domain.Candidate) (bool, error) {
	return true, nil
}
