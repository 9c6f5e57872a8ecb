package notifier

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"

	"CanSlimHunter/internal/model"
)

const notAvailable = "N/A"

// SlackText is a Block Kit text object.
type SlackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// SlackBlock is a Block Kit layout block.
type SlackBlock struct {
	Type string     `json:"type"`
	Text *SlackText `json:"text,omitempty"`
}

// SlackMessage is the chat.postMessage body minus the channel.
type SlackMessage struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

func section(md string) SlackBlock {
	return SlackBlock{Type: "section", Text: &SlackText{Type: "mrkdwn", Text: md}}
}

func divider() SlackBlock { return SlackBlock{Type: "divider"} }

// FormatSlack renders an alert as Block Kit blocks plus a plain-text fallback.
func FormatSlack(a *model.Alert) SlackMessage {
	title := fmt.Sprintf("%s - %s", a.Symbol, a.CompanyName)
	price := fmt.Sprintf("*Current price:* $%.2f", a.CurrentPrice)
	metrics := metricsText(a, "*", "• ")
	exit := exitText(a, "*", "• ")
	company := companyText(a, "*", "• ")

	var news strings.Builder
	news.WriteString("📰 *Latest news*\n")
	if len(a.News) == 0 {
		news.WriteString("• No recent news\n")
	}
	for _, n := range a.News {
		news.WriteString(fmt.Sprintf("• <%s|%s>\n", n.URL, n.Title))
	}
	links := fmt.Sprintf("🔗 *Links*\n• <%s|Yahoo Finance>\n• <%s|TradingView>", yahooURL(a.Symbol), tradingViewURL(a.Symbol))

	plain := fmt.Sprintf("🎯 *%s* | $%.2f\n\n%s\n\n%s\n\n%s\n\n%s\n%s",
		title, a.CurrentPrice, metrics, exit, company, news.String(), links)

	return SlackMessage{
		Text: plain,
		Blocks: []SlackBlock{
			{Type: "header", Text: &SlackText{Type: "plain_text", Text: title, Emoji: true}},
			section(price),
			divider(),
			section(metrics),
			divider(),
			section(exit),
			divider(),
			section(company),
			section(news.String()),
			section(links),
		},
	}
}

// FormatText renders an alert as plain text for LINE and dry runs.
func FormatText(a *model.Alert) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🎯 %s - %s | $%.2f\n\n", a.Symbol, a.CompanyName, a.CurrentPrice))
	b.WriteString(metricsText(a, "", "・"))
	b.WriteString("\n\n")
	b.WriteString(exitText(a, "", "・"))
	b.WriteString("\n\n")
	b.WriteString(companyText(a, "", "・"))
	if len(a.News) > 0 {
		b.WriteString("\n\n📰 Latest news")
		for _, n := range a.News {
			b.WriteString("\n・" + n.Title)
			if !n.PublishedAt.IsZero() {
				b.WriteString(" (" + humanize.Time(n.PublishedAt) + ")")
			}
			b.WriteString("\n  " + n.URL)
		}
	}
	if a.ChartPath != "" {
		b.WriteString("\n\n📈 Chart: " + a.ChartPath)
	}
	b.WriteString("\n\n" + yahooURL(a.Symbol))
	return b.String()
}

func metricsText(a *model.Alert, bold, bullet string) string {
	var b strings.Builder
	b.WriteString("📊 " + bold + "Metrics" + bold + "\n")
	b.WriteString(bullet + "Quarterly EPS growth: " + percent(a.Metrics.EPSGrowthQ) + "\n")
	b.WriteString(bullet + "Quarterly revenue growth: " + percent(a.Metrics.RevenueGrowthQ) + "\n")
	b.WriteString(bullet + "ROE: " + percent(a.Metrics.ROE) + "\n")
	b.WriteString(bullet + "Relative strength: " + orNA(a.RelativeStrength) + "\n")
	b.WriteString(bullet + "50-day avg volume: " + humanize.Comma(int64(a.AvgVolume50)))
	return b.String()
}

func exitText(a *model.Alert, bold, bullet string) string {
	e := a.Exit
	var b strings.Builder
	b.WriteString("🎯 " + bold + "Exit strategy" + bold + "\n")
	b.WriteString(bold + "Take profit:" + bold + "\n")
	b.WriteString(fmt.Sprintf("%sTarget: $%.2f\n", bullet, e.ProfitTargetPrice))
	b.WriteString(bullet + "Condition: " + e.ProfitCondition + "\n")
	b.WriteString(bullet + "Reason: " + e.ProfitReason + "\n\n")
	b.WriteString(bold + "Stop loss:" + bold + "\n")
	b.WriteString(fmt.Sprintf("%sStop: $%.2f\n", bullet, e.StopLossPrice))
	b.WriteString(bullet + "Condition: " + e.StopLossCondition + "\n")
	b.WriteString(bullet + "Reason: " + e.StopLossReason)
	return b.String()
}

func companyText(a *model.Alert, bold, bullet string) string {
	return fmt.Sprintf("🏢 %sCompany%s\n%sSector: %s\n%sIndustry: %s",
		bold, bold, bullet, orNA(a.Metrics.Sector), bullet, orNA(a.Metrics.Industry))
}

func percent(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func yahooURL(symbol string) string {
	return "https://finance.yahoo.com/quote/" + url.PathEscape(symbol)
}

func tradingViewURL(symbol string) string {
	return "https://www.tradingview.com/symbols/" + url.PathEscape(symbol)
}
