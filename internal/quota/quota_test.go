package quota

import (
	"errors"
	"testing"

	"github.com/emergent-labs/emergent-server/internal/models"
)

func TestProjectLimit(t *testing.T) {
	if limit, unbounded := ProjectLimit(models.PlanFree); unbounded || limit != FreeProjectLimit {
		t.Fatalf("free plan: got (%d, %v)", limit, unbounded)
	}
	if limit, unbounded := ProjectLimit(models.PlanStandard); unbounded || limit != StandardProjectLimit {
		t.Fatalf("standard plan: got (%d, %v)", limit, unbounded)
	}
	if _, unbounded := ProjectLimit(models.PlanPro); !unbounded {
		t.Fatal("pro plan should be unbounded")
	}
	// Unknown plans degrade to the free limit rather than denying outright.
	if limit, unbounded := ProjectLimit(models.SubscriptionPlan("enterprise")); unbounded || limit != FreeProjectLimit {
		t.Fatalf("unknown plan: got (%d, %v)", limit, unbounded)
	}
}

func TestCheckProjectCreation(t *testing.T) {
	cases := []struct {
		name  string
		plan  models.SubscriptionPlan
		count int64
		want  error
	}{
		{"free below limit", models.PlanFree, 2, nil},
		{"free at limit", models.PlanFree, 3, ErrPlanLimitReached},
		{"free over limit", models.PlanFree, 7, ErrPlanLimitReached},
		{"standard below limit", models.PlanStandard, 9, nil},
		{"standard at limit", models.PlanStandard, 10, ErrPlanLimitReached},
		{"pro never limited", models.PlanPro, 100000, nil},
		{"unknown plan uses free limit", models.SubscriptionPlan("mystery"), 3, ErrPlanLimitReached},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CheckProjectCreation(tc.plan, tc.count)
			if !errors.Is(got, tc.want) {
				t.Fatalf("CheckProjectCreation(%q, %d) = %v, want %v", tc.plan, tc.count, got, tc.want)
			}
		})
	}
}
