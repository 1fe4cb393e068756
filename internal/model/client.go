package model

import "strings"

type Plan string

const (
	PlanBasic      Plan = "basic"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

func (p Plan) String() string { return string(p) }

// ParsePlan normalizes input; empty => basic.
// Returns (value, true) if valid; otherwise (basic, false).
func ParsePlan(s string) (Plan, bool) {
	switch Plan(strings.ToLower(strings.TrimSpace(s))) {
	case "", PlanBasic:
		return PlanBasic, true
	case PlanPro:
		return PlanPro, true
	case PlanEnterprise:
		return PlanEnterprise, true
	default:
		return PlanBasic, false
	}
}

// PlanDetails is the monthly price (in rand) and feature list of a plan.
type PlanDetails struct {
	Name     Plan
	Price    int
	Features []string
}

var plans = []PlanDetails{
	{Name: PlanBasic, Price: 500, Features: []string{"Auto-replies", "100 messages/month", "1 admin"}},
	{Name: PlanPro, Price: 1500, Features: []string{"Auto-replies", "Unlimited messages", "3 admins", "Analytics"}},
	{Name: PlanEnterprise, Price: 3000, Features: []string{"Everything in Pro", "Custom integrations", "Priority support"}},
}

// Plans returns all plans, cheapest first.
func Plans() []PlanDetails {
	out := make([]PlanDetails, len(plans))
	copy(out, plans)
	return out
}

func (p Plan) Details() PlanDetails {
	for _, d := range plans {
		if d.Name == p {
			return d
		}
	}
	return plans[0]
}

func (p Plan) Price() int { return p.Details().Price }

type ClientStatus string

const (
	ClientActive    ClientStatus = "active"
	ClientCancelled ClientStatus = "cancelled"
)

// Client is a paying business customer of the assistant.
type Client struct {
	ID       int          `json:"id"`
	Business string       `json:"business"`
	Contact  string       `json:"contact"`
	Phone    string       `json:"phone"`
	Plan     Plan         `json:"plan"`
	Price    int          `json:"price"`
	JoinDate string       `json:"join_date"` // YYYY-MM-DD
	Status   ClientStatus `json:"status"`
}
