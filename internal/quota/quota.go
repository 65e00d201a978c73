// Package quota maps subscription tiers to resource-count limits.
package quota

import (
	"errors"

	"github.com/emergent-labs/emergent-server/internal/models"
)

// ErrPlanLimitReached denies a creation that would exceed the plan limit.
var ErrPlanLimitReached = errors.New("quota: plan limit reached")

// Project limits per subscription tier.
const (
	// FreeProjectLimit caps free-tier projects.
	FreeProjectLimit = 3
	// StandardProjectLimit caps standard-tier projects.
	StandardProjectLimit = 10
)

// ProjectLimit returns the project cap for a plan and whether the plan is
// unbounded. Unknown plans fall back to the free limit.
func ProjectLimit(plan models.SubscriptionPlan) (limit int64, unbounded bool) {
	switch plan {
	case models.PlanPro:
		return 0, true
	case models.PlanStandard:
		return StandardProjectLimit, false
	default:
		return FreeProjectLimit, false
	}
}

// CheckProjectCreation decides whether a user on the given plan may create
// another project given their current project count.
func CheckProjectCreation(plan models.SubscriptionPlan, currentCount int64) error {
	limit, unbounded := ProjectLimit(plan)
	if unbounded {
		return nil
	}
	if currentCount >= limit {
		return ErrPlanLimitReached
	}
	return nil
}
