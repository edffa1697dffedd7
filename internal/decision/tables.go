package decision

import (
	"github.com/vantage-intel/vantage/internal/model"
	"github.com/vantage-intel/vantage/internal/roles"
)

// actionTable maps a story type to its recommended primary action.
// Types outside the table fall back to genericAction.
var actionTable = map[string]model.PrimaryAction{
	roles.TypeCashFlow: {
		Title:       "OPTIMIZE COLLECTION CYCLES",
		Description: "Tighten receivables: shorten payment terms for the slowest cohort and escalate invoices past 45 days.",
		Impact:      "Frees working capital within one quarter",
		Confidence:  0.82,
	},
	roles.TypeMarginPressure: {
		Title:       "REPRICE LOW-MARGIN LINES",
		Description: "Raise prices or cut cost-to-serve on the bottom-quartile margin SKUs before the pressure compounds.",
		Impact:      "Recovers 1-2 margin points on affected lines",
		Confidence:  0.74,
	},
	roles.TypeRevenueAnomaly: {
		Title:       "INVESTIGATE REVENUE DEVIATION",
		Description: "Trace the anomaly to segment and channel, then correct the driver or adjust the forecast.",
		Impact:      "Restores forecast accuracy",
		Confidence:  0.70,
	},
	roles.TypeHeadcountCost: {
		Title:       "REBALANCE HEADCOUNT SPEND",
		Description: "Freeze backfills in over-indexed functions and redeploy toward revenue-generating teams.",
		Impact:      "Cuts run-rate cost without layoffs",
		Confidence:  0.68,
	},
	roles.TypeChurnRisk: {
		Title:       "LAUNCH RETENTION PLAY",
		Description: "Trigger the save-desk motion for the at-risk cohort before renewal windows close.",
		Impact:      "Protects recurring revenue",
		Confidence:  0.76,
	},
	roles.TypeMarketingROI: {
		Title:       "REALLOCATE CAMPAIGN BUDGET",
		Description: "Shift spend from under-performing channels to the top-quartile ROAS channels.",
		Impact:      "Improves blended ROAS within two cycles",
		Confidence:  0.78,
	},
	roles.TypeCampaign: {
		Title:       "SCALE WINNING CREATIVE",
		Description: "Double budget on the breakout variant and pause the losers.",
		Impact:      "Captures momentum while the creative is fresh",
		Confidence:  0.72,
	},
	roles.TypeCompetitorMove: {
		Title:       "COUNTER COMPETITOR POSITIONING",
		Description: "Ship the comparative messaging update and brief the sales team on objection handling.",
		Impact:      "Defends pipeline in contested deals",
		Confidence:  0.64,
	},
	roles.TypeMarketOpening: {
		Title:       "FAST-TRACK MARKET ENTRY",
		Description: "Stand up a pilot offer for the opening segment before competitors react.",
		Impact:      "First-mover share capture",
		Confidence:  0.66,
	},
	roles.TypeSupplyChain: {
		Title:       "ACTIVATE BACKUP SUPPLIERS",
		Description: "Qualify the secondary supplier lane and split upcoming orders to hedge the disruption.",
		Impact:      "Holds fulfillment SLAs through the disruption",
		Confidence:  0.75,
	},
	roles.TypeInventoryRisk: {
		Title:       "REBALANCE INVENTORY POSITIONS",
		Description: "Transfer overstocked units toward high-velocity locations and mark down the tail.",
		Impact:      "Reduces carrying cost and stockout exposure",
		Confidence:  0.71,
	},
	roles.TypeOpsEfficiency: {
		Title:       "STANDARDIZE THE BOTTLENECK PROCESS",
		Description: "Roll out the best-performing site's process to the lagging sites.",
		Impact:      "Lifts throughput at current cost",
		Confidence:  0.69,
	},
}

// genericAction covers story types the table does not know.
var genericAction = model.PrimaryAction{
	Title:       "REVIEW AND ASSIGN OWNER",
	Description: "Review the observation with the responsible team and assign a follow-up owner.",
	Impact:      "Keeps the signal from going stale",
	Confidence:  0.55,
}

// outcomeTable maps a story type to the predicted result of acting.
var outcomeTable = map[string]model.Outcome{
	roles.TypeCashFlow:       {Impact: "$500K savings", Confidence: 0.80, Risk: "low", Timeline: "90 days"},
	roles.TypeMarginPressure: {Impact: "$350K margin recovery", Confidence: 0.72, Risk: "medium", Timeline: "1 quarter"},
	roles.TypeRevenueAnomaly: {Impact: "$250K revenue protected", Confidence: 0.68, Risk: "medium", Timeline: "60 days"},
	roles.TypeHeadcountCost:  {Impact: "$400K run-rate reduction", Confidence: 0.70, Risk: "medium", Timeline: "2 quarters"},
	roles.TypeChurnRisk:      {Impact: "$600K ARR retained", Confidence: 0.74, Risk: "medium", Timeline: "1 quarter"},
	roles.TypeMarketingROI:   {Impact: "$300K efficiency gain", Confidence: 0.76, Risk: "low", Timeline: "60 days"},
	roles.TypeCampaign:       {Impact: "$150K incremental revenue", Confidence: 0.70, Risk: "low", Timeline: "30 days"},
	roles.TypeCompetitorMove: {Impact: "$450K pipeline defended", Confidence: 0.60, Risk: "high", Timeline: "1 quarter"},
	roles.TypeMarketOpening:  {Impact: "$1.2M new segment revenue", Confidence: 0.58, Risk: "high", Timeline: "2 quarters"},
	roles.TypeSupplyChain:    {Impact: "$700K disruption cost avoided", Confidence: 0.72, Risk: "medium", Timeline: "45 days"},
	roles.TypeInventoryRisk:  {Impact: "$280K carrying cost saved", Confidence: 0.70, Risk: "low", Timeline: "60 days"},
	roles.TypeOpsEfficiency:  {Impact: "$320K annualized savings", Confidence: 0.66, Risk: "low", Timeline: "1 quarter"},
}

var genericOutcome = model.Outcome{
	Impact: "Measurable improvement on the affected KPI", Confidence: 0.50, Risk: "medium", Timeline: "1 quarter",
}

// agentTable assigns each story type an execution agent. Two decisions in
// one batch mapping to the same agent is the conflict signal.
var agentTable = map[string]string{
	roles.TypeCashFlow:       "cfo-cash-optimizer",
	roles.TypeMarginPressure: "cfo-margin-guardian",
	roles.TypeRevenueAnomaly: "cfo-revenue-analyst",
	roles.TypeHeadcountCost:  "cfo-cost-controller",
	roles.TypeChurnRisk:      "cmo-retention-engine",
	roles.TypeMarketingROI:   "cmo-spend-allocator",
	roles.TypeCampaign:       "cmo-campaign-tuner",
	roles.TypeCompetitorMove: "cmo-market-watch",
	roles.TypeMarketOpening:  "ceo-growth-scout",
	roles.TypeSupplyChain:    "coo-supply-sentinel",
	roles.TypeInventoryRisk:  "coo-inventory-balancer",
	roles.TypeOpsEfficiency:  "coo-process-optimizer",
}

const genericAgent = "ops-generalist"

// contextTable holds the role-specific "why this matters" narratives.
var contextTable = map[model.Role]map[string]string{
	model.RoleCFO: {
		roles.TypeCashFlow:       "Collection cycles drive your working capital position; every day of DSO is cash off the balance sheet.",
		roles.TypeMarginPressure: "Margin erosion compounds quietly; catching it this quarter protects full-year EBITDA guidance.",
		roles.TypeRevenueAnomaly: "Unexplained revenue moves undermine forecast credibility with the board.",
		roles.TypeHeadcountCost:  "People cost is your largest controllable line; drift here crowds out strategic spend.",
		roles.TypeInventoryRisk:  "Inventory ties up cash you could deploy elsewhere; the carrying cost hits your P&L either way.",
	},
	model.RoleCMO: {
		roles.TypeChurnRisk:      "Retained revenue is the cheapest revenue; saving this cohort beats any acquisition play on CAC.",
		roles.TypeMarketingROI:   "Budget sitting in under-performing channels is growth you are paying for and not getting.",
		roles.TypeCampaign:       "Creative momentum decays in days; scaling the winner now is the whole upside.",
		roles.TypeCompetitorMove: "Contested deals are decided by whoever frames the comparison first.",
		roles.TypeMarketOpening:  "Early share in an opening segment compounds; waiting hands it to a competitor.",
	},
	model.RoleCOO: {
		roles.TypeSupplyChain:   "A single-sourced lane failing mid-quarter puts every downstream SLA at risk.",
		roles.TypeInventoryRisk: "Misplaced inventory means stockouts in one region while another pays to warehouse the same units.",
		roles.TypeOpsEfficiency: "The gap between your best and worst site is free capacity you already paid for.",
		roles.TypeHeadcountCost: "Labor allocation is the biggest lever on unit cost you control week to week.",
	},
	model.RoleCEO: {
		roles.TypeCashFlow:       "Cash runway shapes every strategic option on the table.",
		roles.TypeRevenueAnomaly: "Revenue surprises in either direction change the story you tell investors.",
		roles.TypeCompetitorMove: "Competitive position shifts are cheapest to counter early.",
		roles.TypeMarketOpening:  "New segments are where the next growth curve starts.",
	},
}

const genericReason = "This signal is material to your scope and is moving faster than the regular review cadence."

// defaultActions is the ordered action menu attached to every decision.
var defaultActions = []string{"execute", "simulate", "delegate", "dismiss"}

// timeToAct maps an urgency level to the acting window shown to the user.
var timeToAct = map[model.UrgencyLevel]string{
	model.UrgencyHigh:   "7 days",
	model.UrgencyMedium: "2 weeks",
	model.UrgencyLow:    "1 month",
}
