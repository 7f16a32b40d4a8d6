package featureflag

import "strings"

// RequiredPlan restricts a flag to tenants on a given subscription plan
// or higher. The zero value means the flag is available to every plan.
type RequiredPlan string

const (
	// RequiredPlanNone means the flag has no plan restriction
	RequiredPlanNone RequiredPlan = ""
	// RequiredPlanFree requires at least the free plan
	RequiredPlanFree RequiredPlan = "free"
	// RequiredPlanBasic requires at least the basic plan
	RequiredPlanBasic RequiredPlan = "basic"
	// RequiredPlanPro requires at least the pro plan
	RequiredPlanPro RequiredPlan = "pro"
	// RequiredPlanEnterprise requires the enterprise plan
	RequiredPlanEnterprise RequiredPlan = "enterprise"
)

// planRank orders plans from lowest to highest tier. Unknown tenant
// plans rank as free so a restricted flag stays off for them.
var planRank = map[RequiredPlan]int{
	RequiredPlanFree:       0,
	RequiredPlanBasic:      1,
	RequiredPlanPro:        2,
	RequiredPlanEnterprise: 3,
}

// AllRequiredPlans returns all valid required plan values
func AllRequiredPlans() []RequiredPlan {
	return []RequiredPlan{
		RequiredPlanNone,
		RequiredPlanFree,
		RequiredPlanBasic,
		RequiredPlanPro,
		RequiredPlanEnterprise,
	}
}

// IsValid returns true if the plan is a known value
func (p RequiredPlan) IsValid() bool {
	if p == RequiredPlanNone {
		return true
	}
	_, ok := planRank[p]
	return ok
}

// String returns the string representation of the plan
func (p RequiredPlan) String() string {
	return string(p)
}

// MeetsPlanRequirement returns true if a tenant on the given plan may
// use a flag restricted to this plan. The comparison is by tier, so a
// higher plan always satisfies a lower requirement.
func (p RequiredPlan) MeetsPlanRequirement(tenantPlan string) bool {
	if p == RequiredPlanNone {
		return true
	}
	required, ok := planRank[p]
	if !ok {
		return true
	}
	tenant, ok := planRank[RequiredPlan(strings.ToLower(tenantPlan))]
	if !ok {
		tenant = planRank[RequiredPlanFree]
	}
	return tenant >= required
}
