// Package roles holds the per-role personalization profiles: which domains,
// story types and KPIs a persona cares about, and which story types that
// persona has the authority to turn into decisions.
package roles

import (
	"errors"
	"fmt"

	"github.com/vantage-intel/vantage/internal/model"
)

// ErrUnknownRole is returned for roles outside the fixed persona set.
// There is deliberately no silent fallback to a default persona: a typo'd
// role surfaces as an error instead of quietly scoring as a CFO.
var ErrUnknownRole = errors.New("roles: unknown role")

// Profile describes one persona's interests and authority.
type Profile struct {
	Role        model.Role
	Domains     []string
	Types       []string
	KPIKeywords []string
	Authority   string // "executive" or "full"
	Scope       string

	// AuthorityTypes is the allow-list of story types this role may turn
	// into decisions when authority checking is enabled.
	AuthorityTypes []string
}

// Story types the pipeline knows how to act on.
const (
	TypeCashFlow        = "cash_flow"
	TypeMarginPressure  = "margin_pressure"
	TypeRevenueAnomaly  = "revenue_anomaly"
	TypeHeadcountCost   = "headcount_cost"
	TypeChurnRisk       = "churn_risk"
	TypeMarketingROI    = "marketing_roi"
	TypeCampaign        = "campaign_performance"
	TypeCompetitorMove  = "competitor_move"
	TypeMarketOpening   = "market_opportunity"
	TypeSupplyChain     = "supply_chain"
	TypeInventoryRisk   = "inventory_risk"
	TypeOpsEfficiency   = "operational_efficiency"
)

// profiles is the fixed persona table. One entry per role; lookups outside
// this table fail with ErrUnknownRole.
var profiles = map[model.Role]Profile{
	model.RoleCFO: {
		Role:        model.RoleCFO,
		Domains:     []string{"finance", "operations"},
		Types:       []string{TypeCashFlow, TypeMarginPressure, TypeRevenueAnomaly, TypeHeadcountCost, TypeInventoryRisk},
		KPIKeywords: []string{"cash", "margin", "revenue", "dso", "working capital", "cost", "ebitda"},
		Authority:   "executive",
		Scope:       "finance",
		AuthorityTypes: []string{
			TypeCashFlow, TypeMarginPressure, TypeRevenueAnomaly, TypeHeadcountCost, TypeInventoryRisk,
		},
	},
	model.RoleCMO: {
		Role:        model.RoleCMO,
		Domains:     []string{"marketing", "sales"},
		Types:       []string{TypeChurnRisk, TypeMarketingROI, TypeCampaign, TypeCompetitorMove, TypeMarketOpening},
		KPIKeywords: []string{"cac", "roas", "conversion", "churn", "brand", "engagement", "pipeline"},
		Authority:   "executive",
		Scope:       "marketing",
		AuthorityTypes: []string{
			TypeChurnRisk, TypeMarketingROI, TypeCampaign, TypeCompetitorMove, TypeMarketOpening,
		},
	},
	model.RoleCOO: {
		Role:        model.RoleCOO,
		Domains:     []string{"operations", "supply_chain"},
		Types:       []string{TypeSupplyChain, TypeInventoryRisk, TypeOpsEfficiency, TypeHeadcountCost},
		KPIKeywords: []string{"throughput", "utilization", "lead time", "on-time", "inventory", "fulfillment"},
		Authority:   "executive",
		Scope:       "operations",
		AuthorityTypes: []string{
			TypeSupplyChain, TypeInventoryRisk, TypeOpsEfficiency, TypeHeadcountCost,
		},
	},
	model.RoleCEO: {
		Role:        model.RoleCEO,
		Domains:     []string{"finance", "marketing", "operations", "strategy"},
		Types:       []string{TypeCashFlow, TypeRevenueAnomaly, TypeChurnRisk, TypeCompetitorMove, TypeMarketOpening, TypeSupplyChain},
		KPIKeywords: []string{"revenue", "growth", "market share", "churn", "cash"},
		Authority:   "full",
		Scope:       "company",
		AuthorityTypes: []string{
			TypeCashFlow, TypeMarginPressure, TypeRevenueAnomaly, TypeHeadcountCost,
			TypeChurnRisk, TypeMarketingROI, TypeCampaign, TypeCompetitorMove, TypeMarketOpening,
			TypeSupplyChain, TypeInventoryRisk, TypeOpsEfficiency,
		},
	},
}

// knownTypes is the closed set of story types the pipeline acts on.
// Stories outside it still score, but only through baseline relevance.
var knownTypes = map[string]bool{
	TypeCashFlow: true, TypeMarginPressure: true, TypeRevenueAnomaly: true,
	TypeHeadcountCost: true, TypeChurnRisk: true, TypeMarketingROI: true,
	TypeCampaign: true, TypeCompetitorMove: true, TypeMarketOpening: true,
	TypeSupplyChain: true, TypeInventoryRisk: true, TypeOpsEfficiency: true,
}

// urgentTypes get a flat urgency bonus: these deteriorate fast when ignored.
var urgentTypes = map[string]bool{
	TypeCashFlow:      true,
	TypeChurnRisk:     true,
	TypeSupplyChain:   true,
	TypeInventoryRisk: true,
}

// Lookup returns the profile for role, or ErrUnknownRole.
func Lookup(role model.Role) (Profile, error) {
	p, ok := profiles[role]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return p, nil
}

// All returns every known role, for validation and documentation endpoints.
func All() []model.Role {
	return []model.Role{model.RoleCFO, model.RoleCMO, model.RoleCOO, model.RoleCEO}
}

// KnownType reports whether storyType is one of the canonical story types.
func KnownType(storyType string) bool {
	return knownTypes[storyType]
}

// IsUrgentType reports whether storyType carries the urgent-type bonus.
func IsUrgentType(storyType string) bool {
	return urgentTypes[storyType]
}

// InterestedInDomain reports whether the profile covers the given domain.
func (p Profile) InterestedInDomain(domain string) bool {
	for _, d := range p.Domains {
		if d == domain {
			return true
		}
	}
	return false
}

// InterestedInType reports whether the profile covers the given story type.
func (p Profile) InterestedInType(storyType string) bool {
	for _, t := range p.Types {
		if t == storyType {
			return true
		}
	}
	return false
}

// HasAuthority reports whether this role may turn storyType into a decision.
func (p Profile) HasAuthority(storyType string) bool {
	for _, t := range p.AuthorityTypes {
		if t == storyType {
			return true
		}
	}
	return false
}
