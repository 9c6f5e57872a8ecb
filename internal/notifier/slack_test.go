package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type slackServer struct {
	mu       sync.Mutex
	calls    []string
	posted   map[string]any
	uploaded []byte
	postResp string
}

func (s *slackServer) handler(srvURL *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.calls = append(s.calls, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/files.getUploadURLExternal":
			w.Write([]byte(`{"ok":true,"upload_url":"` + *srvURL + `/upload","file_id":"F123"}`))
		case "/upload":
			f, _, err := r.FormFile("file")
			if err == nil {
				s.uploaded, _ = io.ReadAll(f)
			}
			w.Write([]byte(`OK`))
		case "/files.completeUploadExternal":
			w.Write([]byte(`{"ok":true}`))
		case "/chat.postMessage":
			json.NewDecoder(r.Body).Decode(&s.posted)
			if s.postResp != "" {
				w.Write([]byte(s.postResp))
				return
			}
			w.Write([]byte(`{"ok":true,"ts":"1700000000.000100"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestSlack(t *testing.T, s *slackServer) *Slack {
	t.Helper()
	var srvURL string
	srv := httptest.NewServer(s.handler(&srvURL))
	srvURL = srv.URL
	t.Cleanup(srv.Close)
	sl := NewSlack(srv.URL, "xoxb-test", "C0123", "", zap.NewNop())
	sl.RetryBase = time.Millisecond
	return sl
}

func TestSlack_NotifyWithChart(t *testing.T) {
	s := &slackServer{}
	sl := newTestSlack(t, s)

	chart := filepath.Join(t.TempDir(), "chart_NVDA.pdf")
	require.NoError(t, os.WriteFile(chart, []byte("%PDF-1.3 fake"), 0o644))
	a := testAlert()
	a.ChartPath = chart

	require.NoError(t, sl.Notify(context.Background(), a))
	assert.Equal(t, []string{
		"/files.getUploadURLExternal",
		"/upload",
		"/files.completeUploadExternal",
		"/chat.postMessage",
	}, s.calls)
	assert.Equal(t, "%PDF-1.3 fake", string(s.uploaded))
	assert.Equal(t, "C0123", s.posted["channel"])
	blocks, ok := s.posted["blocks"].([]any)
	require.True(t, ok)
	assert.Len(t, blocks, 10)
}

func TestSlack_NotifyWithoutChart(t *testing.T) {
	s := &slackServer{}
	sl := newTestSlack(t, s)

	require.NoError(t, sl.Notify(context.Background(), testAlert()))
	assert.Equal(t, []string{"/chat.postMessage"}, s.calls)
}

func TestSlack_PermanentErrorNotRetried(t *testing.T) {
	s := &slackServer{postResp: `{"ok":false,"error":"channel_not_found"}`}
	sl := newTestSlack(t, s)

	err := sl.Notify(context.Background(), testAlert())
	var se *SlackError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "channel_not_found", se.Code)
	assert.Len(t, s.calls, 1)
}

func TestSlack_TransientErrorRetried(t *testing.T) {
	s := &slackServer{postResp: `{"ok":false,"error":"ratelimited"}`}
	sl := newTestSlack(t, s)
	sl.MaxRetries = 2

	err := sl.Notify(context.Background(), testAlert())
	require.Error(t, err)
	assert.Len(t, s.calls, 3)
}
