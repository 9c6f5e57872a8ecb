package notifier

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"CanSlimHunter/internal/model"
)

// SlackError is an ok:false response from the Slack Web API.
type SlackError struct {
	Method string
	Code   string
}

func (e *SlackError) Error() string { return fmt.Sprintf("slack %s: %s", e.Method, e.Code) }

// Permanent reports whether retrying cannot help.
func (e *SlackError) Permanent() bool {
	switch e.Code {
	case "invalid_auth", "not_authed", "account_inactive", "token_revoked",
		"channel_not_found", "not_in_channel", "missing_scope":
		return true
	}
	return false
}

type slackResponse struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error"`
	TS        string `json:"ts"`
	UploadURL string `json:"upload_url"`
	FileID    string `json:"file_id"`
}

// Slack posts alerts through the Slack Web API.
type Slack struct {
	client     *resty.Client
	channel    string
	logger     *zap.Logger
	MaxRetries int
	RetryBase  time.Duration
}

// NewSlack creates a Slack notifier with optional proxy support.
func NewSlack(baseURL, botToken, channel, proxyURL string, logger *zap.Logger) *Slack {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetTransport(transport).
		SetAuthToken(botToken)
	return &Slack{
		client:     client,
		channel:    channel,
		logger:     logger,
		MaxRetries: 3,
		RetryBase:  time.Second,
	}
}

func (s *Slack) Name() string { return "slack" }

// Notify uploads the chart when one exists, then posts the formatted message.
func (s *Slack) Notify(ctx context.Context, alert *model.Alert) error {
	if alert.ChartPath != "" {
		err := SendWithRetry(ctx, s.logger, "slack upload "+alert.Symbol, s.MaxRetries, s.RetryBase, func(ctx context.Context) error {
			return s.uploadChart(ctx, alert)
		})
		if err != nil {
			return fmt.Errorf("upload chart: %w", err)
		}
	}

	msg := FormatSlack(alert)
	var ts string
	err := SendWithRetry(ctx, s.logger, "slack post "+alert.Symbol, s.MaxRetries, s.RetryBase, func(ctx context.Context) error {
		var err error
		ts, err = s.postMessage(ctx, msg)
		return err
	})
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	s.logger.Info("slack message posted", zap.String("symbol", alert.Symbol), zap.String("ts", ts))
	return nil
}

func (s *Slack) postMessage(ctx context.Context, msg SlackMessage) (string, error) {
	body := map[string]any{
		"channel": s.channel,
		"text":    msg.Text,
		"blocks":  msg.Blocks,
	}
	var out slackResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json; charset=utf-8").
		SetBody(body).
		SetResult(&out).
		Post("/chat.postMessage")
	if err := s.check("chat.postMessage", resp, err, &out); err != nil {
		return "", err
	}
	return out.TS, nil
}

// uploadChart uses the external upload flow: reserve an URL, send the bytes, then share.
func (s *Slack) uploadChart(ctx context.Context, alert *model.Alert) error {
	data, err := os.ReadFile(alert.ChartPath)
	if err != nil {
		return fmt.Errorf("read chart: %w", err)
	}
	name := filepath.Base(alert.ChartPath)

	var reserve slackResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"filename": name,
			"length":   strconv.Itoa(len(data)),
		}).
		SetResult(&reserve).
		Post("/files.getUploadURLExternal")
	if err := s.check("files.getUploadURLExternal", resp, err, &reserve); err != nil {
		return err
	}

	resp, err = s.client.R().
		SetContext(ctx).
		SetFileReader("file", name, bytes.NewReader(data)).
		Post(reserve.UploadURL)
	if err != nil {
		return fmt.Errorf("slack upload: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("slack upload: status %d", resp.StatusCode())
	}

	var done slackResponse
	resp, err = s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"files":           []map[string]string{{"id": reserve.FileID, "title": alert.Symbol + " chart"}},
			"channel_id":      s.channel,
			"initial_comment": alert.Symbol + " price chart",
		}).
		SetResult(&done).
		Post("/files.completeUploadExternal")
	return s.check("files.completeUploadExternal", resp, err, &done)
}

func (s *Slack) check(method string, resp *resty.Response, err error, out *slackResponse) error {
	if err != nil {
		return fmt.Errorf("slack %s: %w", method, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("slack %s: status %d, body: %s", method, resp.StatusCode(), resp.String())
	}
	if !out.OK {
		return &SlackError{Method: method, Code: out.Error}
	}
	return nil
}
