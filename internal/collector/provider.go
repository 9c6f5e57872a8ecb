package collector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"CanSlimHunter/internal/model"
)

// Sentinel errors returned at the market-data boundary. Callers classify with errors.Is.
var (
	ErrNotFound    = errors.New("data not found")
	ErrTimeout     = errors.New("request timed out")
	ErrRateLimited = errors.New("rate limited by provider")
)

// PriceProvider supplies daily price history.
type PriceProvider interface {
	FetchPriceSeries(ctx context.Context, symbol string, lookbackDays int) (*model.PriceSeries, error)
}

// FundamentalProvider supplies the fundamental snapshot for a symbol.
type FundamentalProvider interface {
	FetchFinancialData(ctx context.Context, symbol string) (*model.FinancialMetrics, error)
}

// ProfileProvider supplies the display name of a company.
type ProfileProvider interface {
	FetchCompanyName(ctx context.Context, symbol string) (string, error)
}

// NewsProvider supplies recent headlines.
type NewsProvider interface {
	FetchNews(ctx context.Context, symbol string, max int) ([]model.NewsItem, error)
}

// Provider is a complete market-data source.
type Provider interface {
	PriceProvider
	FundamentalProvider
	ProfileProvider
	Name() string
}

// proxyTransport returns a transport that routes through proxyURL when it is set and parses.
func proxyTransport(proxyURL string) *http.Transport {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return transport
}

// classifyStatus maps an HTTP status to a sentinel error, or nil for 2xx.
func classifyStatus(status int, body string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", ErrNotFound, status)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, status)
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return fmt.Errorf("%w: status %d", ErrTimeout, status)
	default:
		return fmt.Errorf("status %d, body: %s", status, truncate(body, 200))
	}
}

// classifyErr maps transport errors to sentinel errors. Third-party clients that
// only report status codes in their messages are matched on the text.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimited) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "too many requests"):
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	case strings.Contains(msg, "404") || strings.Contains(msg, "not found") || strings.Contains(msg, "no data"):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case strings.Contains(msg, "timeout"):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
