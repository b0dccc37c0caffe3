package orders

// Plan is one tier of the SaaS subscription catalog.
type Plan struct {
	Key      string     `json:"key"`
	Name     string     `json:"name"`
	Price    float64    `json:"price"`
	Features []string   `json:"features"`
	Limits   PlanLimits `json:"limits"`
}

// PlanLimits are the per-plan usage caps. -1 means unlimited.
type PlanLimits struct {
	MaxSites         int `json:"maxSites"`
	MaxKeywords      int `json:"maxKeywords"`
	MaxReports       int `json:"maxReports"`
	APICallsPerMonth int `json:"apiCallsPerMonth"`
}

// Plan keys
const (
	PlanStarter      = "starter"
	PlanProfessional = "professional"
	PlanEnterprise   = "enterprise"
)

var planCatalog = map[string]Plan{
	PlanStarter: {
		Key:   PlanStarter,
		Name:  "Starter",
		Price: 49,
		Features: []string{
			"Manage up to 10 WordPress sites",
			"Basic local market research",
			"Standard Reddit content mining",
			"Email support",
			"Basic analytics dashboard",
		},
		Limits: PlanLimits{MaxSites: 10, MaxKeywords: 500, MaxReports: 10, APICallsPerMonth: 10000},
	},
	PlanProfessional: {
		Key:   PlanProfessional,
		Name:  "Professional",
		Price: 149,
		Features: []string{
			"Manage up to 100 WordPress sites",
			"Advanced local market research",
			"Advanced Reddit content mining & filtering",
			"PBN link analysis",
			"Priority support",
			"Advanced analytics & reporting",
			"API access",
			"White-label options",
		},
		Limits: PlanLimits{MaxSites: 100, MaxKeywords: 5000, MaxReports: 100, APICallsPerMonth: 100000},
	},
	PlanEnterprise: {
		Key:   PlanEnterprise,
		Name:  "Enterprise",
		Price: 399,
		Features: []string{
			"Unlimited WordPress sites",
			"Complete market research suite",
			"Advanced Reddit & social mining",
			"Full PBN management tools",
			"Dedicated account manager",
			"Custom integrations",
			"Advanced API access",
			"Full white-label solution",
			"Custom training & onboarding",
		},
		Limits: PlanLimits{MaxSites: -1, MaxKeywords: -1, MaxReports: -1, APICallsPerMonth: 1000000},
	},
}

// LookupPlan resolves a plan key, falling back to the professional tier for
// unknown keys the way the landing pages expect.
func LookupPlan(key string) Plan {
	if plan, ok := planCatalog[key]; ok {
		return plan
	}
	return planCatalog[PlanProfessional]
}

// Maps Booster service catalog entries.
const (
	serviceMonthlyPrice = 500
	serviceName         = "Maps Booster Deluxe"
)

var serviceInclusions = []string{
	"Complete Google Business Profile optimization",
	"Strategic review management & acquisition",
	"Local SEO keyword optimization",
	"Citation building & NAP consistency",
	"Google Posts management",
	"Photo optimization & management",
	"Competitor analysis & monitoring",
	"Monthly ranking reports",
	"Direct phone & email support",
}

var serviceNextSteps = []string{
	"Initial consultation call within 24 hours",
	"Google Business Profile audit",
	"Optimization strategy development",
	"Implementation begins within 72 hours",
}
