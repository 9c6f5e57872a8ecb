package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"CanSlimHunter/internal/model"
)

// lineMaxText is the Messaging API limit for one text message, in characters.
const lineMaxText = 5000

// Line pushes alerts as text messages through the LINE Messaging API.
type Line struct {
	client     *resty.Client
	to         string
	logger     *zap.Logger
	MaxRetries int
	RetryBase  time.Duration
}

// NewLine creates a LINE notifier with optional proxy support.
func NewLine(baseURL, channelToken, to, proxyURL string, logger *zap.Logger) *Line {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &Line{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second).
			SetTransport(transport).
			SetAuthToken(channelToken),
		to:         to,
		logger:     logger,
		MaxRetries: 3,
		RetryBase:  time.Second,
	}
}

func (l *Line) Name() string { return "line" }

func (l *Line) Notify(ctx context.Context, alert *model.Alert) error {
	text := truncateRunes(FormatText(alert), lineMaxText)
	err := SendWithRetry(ctx, l.logger, "line push "+alert.Symbol, l.MaxRetries, l.RetryBase, func(ctx context.Context) error {
		return l.push(ctx, text)
	})
	if err != nil {
		return err
	}
	l.logger.Info("line message pushed", zap.String("symbol", alert.Symbol))
	return nil
}

func (l *Line) push(ctx context.Context, text string) error {
	resp, err := l.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"to": l.to,
			"messages": []map[string]string{
				{"type": "text", "text": text},
			},
		}).
		Post("/v2/bot/message/push")
	if err != nil {
		return fmt.Errorf("line push: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("line API error: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
