package analysis

import (
	"html/template"
	"sort"
	"strings"

	"github.com/stockbrief/stockbrief/internal/models"
)

// placeholder substituted at every missing field path.
const placeholder = "N/A"

// defaultSourceLink is used when a news item has no "Source Link" field.
const defaultSourceLink = "#"

// reportTemplate renders the structured document. Every interpolated value
// is escaped by the template engine; only the fixed style block and headings
// are trusted markup. Section order is fixed and mirrors the schema the
// prompt asks for.
var reportTemplate = template.Must(template.New("report").Parse(`<style>
    .container {
        display: flex;
        gap: 30px;
        justify-content: space-between;
        flex-wrap: wrap;
    }
    .box {
        border: 1px solid #ccc;
        padding: 15px;
        border-radius: 8px;
        box-shadow: 2px 2px 10px rgba(0, 0, 0, 0.1);
        flex: 1 1 calc(25% - 20px);
        min-width: 250px;
        text-align: center;
        box-sizing: border-box;
    }
    h2, h3 {
        text-align: center;
    }
</style>
<div class="container">
    <div class="box">
        <h2>COMPANY OVERVIEW</h2>
        <p><strong>Market Cap:</strong> {{.MarketCap}}</p>
        <p><strong>Sector:</strong> {{.Sector}}</p>
        <p><strong>Industry:</strong> {{.Industry}}</p>
    </div>
    <div class="box">
        <h2>Key Financials</h2>
        <p><strong>Revenue (TTM):</strong> {{.RevenueTTM}}</p>
        <p><strong>Net Income (TTM):</strong> {{.NetIncomeTTM}}</p>
        <p><strong>EPS (TTM):</strong> {{.EPSTTM}}</p>
    </div>
    <div class="box">
        <h2>STOCK PERFORMANCE</h2>
{{- range .Performance}}
        <p><strong>{{.Key}}:</strong> {{.Value}}</p>
{{- end}}
    </div>
    <div class="box">
        <h2>ANALYST RATINGS &amp; TECHNICAL TREND ANALYSIS</h2>
        <p><strong>Analyst Consensus:</strong> {{.Consensus}}</p>
        <p><strong>Average Price Target:</strong> {{.AveragePriceTarget}}</p>
        <p><strong>Buy Percentage:</strong> {{.BuyPct}}</p>
        <p><strong>Hold Percentage:</strong> {{.HoldPct}}</p>
        <p><strong>Sell Percentage:</strong> {{.SellPct}}</p>
{{- range .Technical}}
        <p><strong>{{.Key}}:</strong> {{.Value}}</p>
{{- end}}
    </div>
</div>
<h2>RECENT NEWS</h2>
{{- range .News}}
<h3>News {{.Index}}</h3>
<p><strong>Summary:</strong> {{.Summary}}</p>
{{- if .DetailedSummary}}
<p><strong>Detailed Summary:</strong> {{.DetailedSummary}}</p>
{{- end}}
<p><strong>Source:</strong> <a href="{{.SourceLink}}" target="_blank">{{.Source}}</a></p>
{{- end}}
<h2>FINAL BUY/HOLD/SELL RECOMMENDATION</h2>
<p><strong>Recommendation:</strong> {{.Recommendation}}</p>
<p><strong>Reasoning:</strong> {{.Reasoning}}</p>
<h2>RISK FACTORS</h2>
{{- range .RiskFactors}}
<p>&bull; {{.}}</p>
{{- end}}
<h2>BULL CASE SCENARIO</h2>
<div class="box">
    <p><strong>Scenario:</strong> {{.BullScenario}}</p>
    <p><strong>Price Target:</strong> {{.BullTarget}}</p>
</div>
<h2>BEAR CASE SCENARIO</h2>
<div class="box">
    <p><strong>Scenario:</strong> {{.BearScenario}}</p>
    <p><strong>Price Target:</strong> {{.BearTarget}}</p>
</div>
<h2>INVESTOR RECOMMENDATIONS</h2>
<div class="container">
    <div class="box">
        <h3>Conservative Investors</h3>
        <p>{{.Conservative}}</p>
    </div>
    <div class="box">
        <h3>Moderate Investors</h3>
        <p>{{.Moderate}}</p>
    </div>
    <div class="box">
        <h3>Aggressive Investors</h3>
        <p>{{.Aggressive}}</p>
    </div>
</div>
`))

type kv struct {
	Key   string
	Value string
}

type newsView struct {
	Index           int
	Summary         string
	DetailedSummary string
	Source          string
	SourceLink      string
}

type reportView struct {
	MarketCap, Sector, Industry        string
	RevenueTTM, NetIncomeTTM, EPSTTM   string
	Performance                        []kv
	Consensus, AveragePriceTarget      string
	BuyPct, HoldPct, SellPct           string
	Technical                          []kv
	News                               []newsView
	Recommendation, Reasoning          string
	RiskFactors                        []string
	BullScenario, BullTarget           string
	BearScenario, BearTarget           string
	Conservative, Moderate, Aggressive string
}

// RenderReport walks the parsed report in fixed schema order and produces
// the document markup. Every lookup has a default, so rendering never fails
// for a well-formed report; re-rendering the same report yields identical
// output.
func RenderReport(report *models.StockReport) string {
	view := buildView(report)

	var sb strings.Builder
	if err := reportTemplate.Execute(&sb, view); err != nil {
		// Cannot happen for a fully-defaulted view; degrade to nothing
		// rather than panic.
		return ""
	}
	return sb.String()
}

// buildView applies per-field defaulting over the optional-field report.
func buildView(report *models.StockReport) *reportView {
	if report == nil {
		report = &models.StockReport{}
	}

	view := &reportView{
		MarketCap:          placeholder,
		Sector:             placeholder,
		Industry:           placeholder,
		RevenueTTM:         placeholder,
		NetIncomeTTM:       placeholder,
		EPSTTM:             placeholder,
		Consensus:          placeholder,
		AveragePriceTarget: placeholder,
		BuyPct:             placeholder,
		HoldPct:            placeholder,
		SellPct:            placeholder,
		Recommendation:     placeholder,
		Reasoning:          placeholder,
		BullScenario:       placeholder,
		BullTarget:         placeholder,
		BearScenario:       placeholder,
		BearTarget:         placeholder,
		Conservative:       placeholder,
		Moderate:           placeholder,
		Aggressive:         placeholder,
	}

	if co := report.CompanyOverview; co != nil {
		view.MarketCap = orPlaceholder(co.MarketCap)
		view.Sector = orPlaceholder(co.Sector)
		view.Industry = orPlaceholder(co.Industry)
		if kf := co.KeyFinancials; kf != nil {
			view.RevenueTTM = orPlaceholder(kf.RevenueTTM)
			view.NetIncomeTTM = orPlaceholder(kf.NetIncomeTTM)
			view.EPSTTM = orPlaceholder(kf.EPSTTM)
		}
	}

	view.Performance = sortedPairs(report.StockPerformance)
	view.Technical = sortedPairs(report.TechnicalTrend)

	if ar := report.AnalystRatings; ar != nil {
		view.Consensus = orPlaceholder(ar.Consensus)
		view.AveragePriceTarget = orPlaceholder(ar.AveragePriceTarget)
		if b := ar.Breakdown; b != nil {
			view.BuyPct = orPlaceholder(b.BuyPercentage)
			view.HoldPct = orPlaceholder(b.HoldPercentage)
			view.SellPct = orPlaceholder(b.SellPercentage)
		}
	}

	// Render exactly the news items present, numbered from 1. The schema
	// asks for 3, but the model is not trusted to comply.
	for i, item := range report.RecentNews {
		nv := newsView{
			Index:           i + 1,
			Summary:         orPlaceholder(item.Summary),
			DetailedSummary: item.DetailedSummary.String(),
			Source:          orPlaceholder(item.Source),
			SourceLink:      defaultSourceLink,
		}
		if item.SourceLink != "" {
			nv.SourceLink = item.SourceLink.String()
		}
		view.News = append(view.News, nv)
	}

	if fr := report.FinalRecommendation; fr != nil {
		view.Recommendation = orPlaceholder(fr.Recommendation)
		view.Reasoning = orPlaceholder(fr.Reasoning)
	}

	for _, factor := range report.RiskFactors {
		view.RiskFactors = append(view.RiskFactors, factor.String())
	}

	if bc := report.BullCase; bc != nil {
		view.BullScenario = orPlaceholder(bc.Scenario)
		view.BullTarget = orPlaceholder(bc.PriceTarget)
	}
	if bc := report.BearCase; bc != nil {
		view.BearScenario = orPlaceholder(bc.Scenario)
		view.BearTarget = orPlaceholder(bc.PriceTarget)
	}

	if ir := report.InvestorRecommendations; ir != nil {
		view.Conservative = orPlaceholder(ir.Conservative)
		view.Moderate = orPlaceholder(ir.Moderate)
		view.Aggressive = orPlaceholder(ir.Aggressive)
	}

	return view
}

// sortedPairs flattens a free-form section mapping into deterministic order.
// JSON objects carry no ordering, so keys are sorted to keep re-rendering
// idempotent.
func sortedPairs(section map[string]models.FlexString) []kv {
	if len(section) == 0 {
		return nil
	}
	keys := make([]string, 0, len(section))
	for key := range section {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]kv, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, kv{Key: key, Value: orPlaceholder(section[key])})
	}
	return pairs
}

func orPlaceholder(v models.FlexString) string {
	if strings.TrimSpace(v.String()) == "" {
		return placeholder
	}
	return v.String()
}
