package collector

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"CanSlimHunter/internal/model"
)

// YahooNews fetches recent headlines from the Yahoo Finance search endpoint.
type YahooNews struct {
	client *resty.Client
}

// NewYahooNews creates a news client. An empty baseURL uses DefaultYahooBaseURL.
// Requests go through proxyURL when it is set.
func NewYahooNews(baseURL, proxyURL string, timeout time.Duration) *YahooNews {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooNews{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetTransport(proxyTransport(proxyURL)).
			SetHeader("User-Agent", "Mozilla/5.0").
			SetHeader("Accept", "application/json"),
	}
}

type searchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Link                string `json:"link"`
		Publisher           string `json:"publisher"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// FetchNews returns at most max headlines. Items without a title or link are dropped.
func (n *YahooNews) FetchNews(ctx context.Context, symbol string, max int) ([]model.NewsItem, error) {
	if max <= 0 {
		return nil, nil
	}
	var out searchResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":           symbol,
			"quotesCount": "0",
			"newsCount":   strconv.Itoa(max),
		}).
		SetResult(&out).
		Get("/v1/finance/search")
	if err != nil {
		return nil, fmt.Errorf("yahoo news %s: %w", symbol, classifyErr(err))
	}
	if err := classifyStatus(resp.StatusCode(), resp.String()); err != nil {
		return nil, fmt.Errorf("yahoo news %s: %w", symbol, err)
	}

	items := make([]model.NewsItem, 0, max)
	for _, a := range out.News {
		if a.Title == "" || a.Link == "" {
			continue
		}
		item := model.NewsItem{Title: a.Title, URL: a.Link}
		if a.ProviderPublishTime > 0 {
			item.PublishedAt = time.Unix(a.ProviderPublishTime, 0)
		}
		items = append(items, item)
		if len(items) == max {
			break
		}
	}
	return items, nil
}
