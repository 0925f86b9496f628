package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexString handles JSON values that may be a string, number, boolean or
// null. The model is instructed to emit strings but is not trustworthy, so
// every report field is coerced to an opaque display string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexString(strconv.FormatFloat(num, 'f', -1, 64))
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexString(strconv.FormatBool(b))
		return nil
	}
	if strings.TrimSpace(string(data)) == "null" {
		*f = ""
		return nil
	}
	// Objects and arrays are kept verbatim
	*f = FlexString(data)
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// StockReport is the typed form of the JSON report the model is asked to
// produce. Every field is optional: the renderer substitutes a placeholder
// for anything the model forgot. Section and key names are shared verbatim
// with the prompt builder.
type StockReport struct {
	CompanyOverview         *CompanyOverview         `json:"Company Overview,omitempty"`
	StockPerformance        map[string]FlexString    `json:"Stock Performance,omitempty"`
	RecentNews              []ReportNewsItem         `json:"Recent News,omitempty"`
	AnalystRatings          *AnalystRatings          `json:"Analyst Ratings,omitempty"`
	TechnicalTrend          map[string]FlexString    `json:"Technical Trend Analysis,omitempty"`
	FinalRecommendation     *FinalRecommendation     `json:"Final Buy/Hold/Sell Recommendation,omitempty"`
	RiskFactors             []FlexString             `json:"risk_factors,omitempty"`
	BullCase                *CaseScenario            `json:"bull_case,omitempty"`
	BearCase                *CaseScenario            `json:"bear_case,omitempty"`
	InvestorRecommendations *InvestorRecommendations `json:"investor_recommendations,omitempty"`
}

// CompanyOverview holds the "Company Overview" section
type CompanyOverview struct {
	MarketCap     FlexString     `json:"Market Cap,omitempty"`
	Sector        FlexString     `json:"Sector,omitempty"`
	Industry      FlexString     `json:"Industry,omitempty"`
	KeyFinancials *KeyFinancials `json:"Key Financials,omitempty"`
}

// KeyFinancials is nested one level under "Company Overview"
type KeyFinancials struct {
	RevenueTTM   FlexString `json:"Revenue (TTM),omitempty"`
	NetIncomeTTM FlexString `json:"Net Income (TTM),omitempty"`
	EPSTTM       FlexString `json:"EPS (TTM),omitempty"`
}

// ReportNewsItem is one entry of the "Recent News" sequence. The headline key
// varies per item ("News 1", "News 2", ...), so decoding captures any key
// with that prefix into Headline.
type ReportNewsItem struct {
	Headline        FlexString
	Summary         FlexString
	DetailedSummary FlexString
	Source          FlexString
	SourceLink      FlexString
}

func (n *ReportNewsItem) UnmarshalJSON(data []byte) error {
	var raw map[string]FlexString
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("news item: %w", err)
	}

	for key, value := range raw {
		switch key {
		case "Summary":
			n.Summary = value
		case "Detailed Summary":
			n.DetailedSummary = value
		case "Source":
			n.Source = value
		case "Source Link":
			n.SourceLink = value
		default:
			if strings.HasPrefix(key, "News") {
				n.Headline = value
			}
		}
	}
	return nil
}

// AnalystRatings holds the "Analyst Ratings" section
type AnalystRatings struct {
	Consensus          FlexString        `json:"Analyst Consensus,omitempty"`
	AveragePriceTarget FlexString        `json:"Average Price Target,omitempty"`
	Breakdown          *RatingsBreakdown `json:"Breakdown,omitempty"`
}

// RatingsBreakdown holds buy/hold/sell percentages
type RatingsBreakdown struct {
	BuyPercentage  FlexString `json:"Buy Percentage,omitempty"`
	HoldPercentage FlexString `json:"Hold Percentage,omitempty"`
	SellPercentage FlexString `json:"Sell Percentage,omitempty"`
}

// FinalRecommendation holds the "Final Buy/Hold/Sell Recommendation" section
type FinalRecommendation struct {
	Recommendation FlexString `json:"Recommendation,omitempty"`
	Reasoning      FlexString `json:"Reasoning,omitempty"`
}

// CaseScenario holds a bull or bear case
type CaseScenario struct {
	Scenario    FlexString `json:"scenario,omitempty"`
	PriceTarget FlexString `json:"price_target,omitempty"`
}

// InvestorRecommendations holds per-investor-type recommendations
type InvestorRecommendations struct {
	Conservative FlexString `json:"conservative_investors,omitempty"`
	Moderate     FlexString `json:"moderate_investors,omitempty"`
	Aggressive   FlexString `json:"aggressive_investors,omitempty"`
}

// AnalyzeResponse is the payload returned by POST /api/analyze on success.
// RawJSON is present only when the strict-parse path succeeded.
type AnalyzeResponse struct {
	Result     string                 `json:"result"`
	RawJSON    map[string]interface{} `json:"raw_json,omitempty"`
	PlotData   *ChartSeries           `json:"plot_data"`
	Disclaimer string                 `json:"disclaimer"`
}
