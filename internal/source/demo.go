package source

import (
	"time"

	"github.com/vantage-intel/vantage/internal/model"
)

// Demo returns the built-in story collection served when no external source
// is configured. Timestamps are expressed relative to now so freshness decay
// behaves the same on every startup.
func Demo(now time.Time) []model.Story {
	return []model.Story{
		{
			ID:     "story-cash-001",
			Domain: "finance",
			Type:   "cash_flow",
			Impact: model.StoryImpact{
				Financial: "$2.3M collections opportunity",
				Amount:    &model.MoneyAmount{Amount: 2.3, Currency: "USD", Unit: "M"},
				KPI:       "DSO up 12% quarter over quarter",
				Risk:      model.RiskHigh,
			},
			Timestamp: now.Add(-6 * time.Hour),
			RawData:   map[string]any{"anomaly_score": 0.87, "segment": "enterprise"},
		},
		{
			ID:     "story-margin-002",
			Domain: "finance",
			Type:   "margin_pressure",
			Impact: model.StoryImpact{
				Financial: "$840K margin erosion",
				Amount:    &model.MoneyAmount{Amount: 840, Currency: "USD", Unit: "K"},
				KPI:       "gross margin down 3.2%",
				Risk:      model.RiskMedium,
			},
			Timestamp: now.Add(-30 * time.Hour),
			RawData:   map[string]any{"anomaly_score": 0.61},
		},
		{
			ID:     "story-churn-003",
			Domain: "marketing",
			Type:   "churn_risk",
			Impact: model.StoryImpact{
				Financial: "$1.1M ARR at risk",
				Amount:    &model.MoneyAmount{Amount: 1.1, Currency: "USD", Unit: "M"},
				KPI:       "churn rate up 18% in mid-market",
				Risk:      model.RiskHigh,
			},
			Timestamp: now.Add(-12 * time.Hour),
			RawData:   map[string]any{"anomaly_score": 0.74, "cohort": "mid-market"},
		},
		{
			ID:     "story-campaign-004",
			Domain: "marketing",
			Type:   "campaign_performance",
			Impact: model.StoryImpact{
				Financial:   "$420K incremental pipeline",
				Amount:      &model.MoneyAmount{Amount: 420, Currency: "USD", Unit: "K"},
				KPI:         "conversion rate up 9%",
				Risk:        model.RiskLow,
				Opportunity: true,
			},
			Timestamp: now.Add(-48 * time.Hour),
		},
		{
			ID:     "story-supply-005",
			Domain: "operations",
			Type:   "supply_chain",
			Impact: model.StoryImpact{
				Financial: "$3.4M exposure from port delays",
				Amount:    &model.MoneyAmount{Amount: 3.4, Currency: "USD", Unit: "M"},
				KPI:       "on-time delivery down 14%",
				Risk:      model.RiskHigh,
			},
			Timestamp: now.Add(-4 * time.Hour),
			RawData:   map[string]any{"anomaly_score": 0.92, "region": "apac"},
		},
		{
			ID:     "story-inventory-006",
			Domain: "operations",
			Type:   "inventory_risk",
			Impact: model.StoryImpact{
				Financial: "$670K excess stock",
				Amount:    &model.MoneyAmount{Amount: 670, Currency: "USD", Unit: "K"},
				KPI:       "inventory turns down 11%",
				Risk:      model.RiskMedium,
			},
			Timestamp: now.Add(-72 * time.Hour),
		},
		{
			ID:     "story-pricing-007",
			Domain: "strategy",
			Type:   "market_opportunity",
			Impact: model.StoryImpact{
				Financial:   "$1.8M upside from tier restructure",
				Amount:      &model.MoneyAmount{Amount: 1.8, Currency: "USD", Unit: "M"},
				KPI:         "win rate flat at 22%",
				Risk:        model.RiskLow,
				Opportunity: true,
			},
			Timestamp: now.Add(-24 * time.Hour),
		},
		{
			ID:     "story-expansion-008",
			Domain: "strategy",
			Type:   "competitor_move",
			Impact: model.StoryImpact{
				Financial:   "$5M addressable segment",
				Amount:      &model.MoneyAmount{Amount: 5, Currency: "USD", Unit: "M"},
				KPI:         "competitor exiting APAC, category growth 31% YoY",
				Risk:        model.RiskMedium,
				Opportunity: true,
			},
			Timestamp: now.Add(-90 * time.Hour),
			Pinned:    true,
		},
	}
}
