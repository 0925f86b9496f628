package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stockbrief/stockbrief/internal/models"
)

// reportSkeleton is the literal JSON shape the model must fill in. Key names
// are shared verbatim with the renderer; changing one side without the other
// is a contract bug. The three %s slots carry pre-seeded live data: revenue,
// net income, and the stock performance block.
const reportSkeleton = `{
    "Company Overview": {
        "Market Cap": "",
        "Sector": "",
        "Industry": "",
        "Key Financials": {
            "Revenue (TTM)": "%s",
            "Net Income (TTM)": "%s",
            "EPS (TTM)": ""
        }
    },
    "Stock Performance": {
%s
        "52-Week Range": "",
        "Market Cap": ""
    },
    "Recent News": [
        {
            "News 1": "",
            "Summary": "",
            "Source": "",
            "Source Link": ""
        },
        {
            "News 2": "",
            "Summary": "",
            "Source": "",
            "Source Link": ""
        },
        {
            "News 3": "",
            "Summary": "",
            "Source": "",
            "Source Link": ""
        }
    ],
    "Analyst Ratings": {
        "Analyst Consensus": "",
        "Average Price Target": "",
        "Breakdown": {
            "Buy Percentage": "",
            "Hold Percentage": "",
            "Sell Percentage": ""
        }
    },
    "Technical Trend Analysis": {
        "50-Day Moving Average": "",
        "200-Day Moving Average": ""
    },
    "Final Buy/Hold/Sell Recommendation": {
        "Recommendation": "",
        "Reasoning": ""
    },
    "risk_factors": [
        "Risk Factor 1",
        "Risk Factor 2",
        "Risk Factor 3"
    ],
    "bull_case": {
        "scenario": "",
        "price_target": ""
    },
    "bear_case": {
        "scenario": "",
        "price_target": ""
    },
    "investor_recommendations": {
        "conservative_investors": "",
        "moderate_investors": "",
        "aggressive_investors": ""
    }
}`

// BuildPrompt assembles the full instruction text for the model: behavioral
// directives, pre-seeded live market data, and the literal report skeleton.
// Recent headlines, when available, are appended as reference material so the
// model grounds the news section in real articles.
func BuildPrompt(ticker string, snapshot *models.MarketSnapshot, news []*models.NewsItem) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return "", ErrInvalidTicker
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are a stock analysis AI. Your job is to analyze %s and generate a structured stock report, following this exact format every time.\n\n", ticker))

	sb.WriteString("Instructions:\n")
	sb.WriteString("- Use the market data provided below for stock prices. Do not use web search results for prices; use them only for stock-related news.\n")
	sb.WriteString("- If real-time price is missing, use the last closing price with a note: \"Note: Real-time price data unavailable. Using last closing price instead.\"\n")
	sb.WriteString("- Ensure the Recent News section always follows the exact format with numbered news items, headlines, summaries, and sources as website links.\n")
	sb.WriteString("- Each Recent News summary must be a minimum of ten lines.\n")
	sb.WriteString("- News sources must be plain https links without brackets; never invent a link.\n")
	sb.WriteString("- Assess major risk factors and potential headwinds.\n")
	sb.WriteString("- Develop a bull case scenario with price targets for 7, 15, 30, 60 and 90 day intervals, based on the previous 3 years of market trend.\n")
	sb.WriteString("- Develop a bear case scenario with price targets for the same intervals.\n")
	sb.WriteString("- Create recommendations for conservative, moderate and aggressive investor types.\n\n")

	sb.WriteString("Market data:\n")
	sb.WriteString(priceMessage(snapshot))
	sb.WriteString("\n")

	if len(news) > 0 {
		sb.WriteString("Recent headlines for reference:\n")
		for _, item := range news {
			sb.WriteString(fmt.Sprintf("- %s (%s) %s\n", item.Title, item.Source, item.URL))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Strictly return your response in clean JSON format.\n")
	sb.WriteString("Do not change any key names in the JSON, and do not include any other keys.\n\n")
	sb.WriteString("Expected JSON format:\n\n")
	sb.WriteString(fmt.Sprintf(reportSkeleton,
		formatSeededFloat(snapshot.RevenueTTM),
		formatSeededFloat(snapshot.NetIncomeTTM),
		performanceSeed(snapshot),
	))
	sb.WriteString("\n\nNote: do not output any other information outside of the JSON response.")

	return sb.String(), nil
}

// priceMessage builds the live-price summary interpolated into the prompt.
// Falls back to the previous close when the real-time price is absent, and
// states unavailability when neither exists.
func priceMessage(snapshot *models.MarketSnapshot) string {
	if snapshot == nil {
		return "Stock price unavailable.\n"
	}

	var sb strings.Builder
	if price, ok := snapshot.DisplayPrice(); ok {
		sb.WriteString(fmt.Sprintf("Live stock price: $%.2f\n", price))
	} else {
		sb.WriteString("Stock price unavailable.\n")
	}
	if snapshot.AfterHoursPrice != nil {
		sb.WriteString(fmt.Sprintf("After-hours price: $%.2f\n", *snapshot.AfterHoursPrice))
	}
	if snapshot.Volume != nil {
		sb.WriteString(fmt.Sprintf("Volume: %d\n", *snapshot.Volume))
	}
	return sb.String()
}

// performanceSeed renders the pre-seeded lines of the "Stock Performance"
// skeleton block: the live price entry, an optional after-hours entry, and
// the average volume.
func performanceSeed(snapshot *models.MarketSnapshot) string {
	var lines []string

	if snapshot != nil {
		if price, ok := snapshot.DisplayPrice(); ok {
			lines = append(lines, fmt.Sprintf("        \"Live Stock Price\": \"$%.2f\",", price))
		} else {
			lines = append(lines, "        \"Live Stock Price\": \"Stock Price Unavailable\",")
		}
		if snapshot.AfterHoursPrice != nil {
			lines = append(lines, fmt.Sprintf("        \"After-Hours Price\": \"$%.2f\",", *snapshot.AfterHoursPrice))
		}
		lines = append(lines, fmt.Sprintf("        \"Volume (Avg.)\": \"%s\",", formatSeededInt(snapshot.Volume)))
	} else {
		lines = append(lines, "        \"Live Stock Price\": \"Stock Price Unavailable\",")
		lines = append(lines, "        \"Volume (Avg.)\": \"\",")
	}

	return strings.Join(lines, "\n")
}

func formatSeededFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatSeededInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
