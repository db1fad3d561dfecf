package app

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pollscope/internal/config"
	apierrors "pollscope/internal/errors"
	"pollscope/internal/fetcher"
	"pollscope/internal/shared/testutil"
	"pollscope/pkg/contracts/events"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Source.RefreshInterval = 0
	cfg.Source.FetchOnStart = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*Application, *testutil.SheetServer) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	sheet := testutil.NewSheetServer(t, testutil.PollCSV)

	a, err := NewApplication(cfg,
		WithLogger(logger),
		WithFetcher(fetcher.NewCSVFetcher(sheet.URL, sheet.Client(), "pollscope-test")),
	)
	require.NoError(t, err)
	return a, sheet
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestNewApplication_Router(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	srv := httptest.NewServer(a.Router)
	defer srv.Close()

	resp, body := getJSON(t, srv.URL+"/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "not_ready", body["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, body = getJSON(t, srv.URL+"/api/polls/sources")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, apierrors.TypeNotLoaded, body["type"])

	_, err := a.PollService.Refresh(context.Background())
	require.NoError(t, err)

	resp, body = getJSON(t, srv.URL+"/api/polls/sources")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["sources"], 2)

	resp, body = getJSON(t, srv.URL+"/api/version")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["version"])

	resp, body = getJSON(t, srv.URL+"/api/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apierrors.TypeNotFound, body["type"])

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	text, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), "poll_refresh_total")
	assert.Contains(t, string(text), "http_requests_total")
}

func TestNewApplication_UnsupportedSource(t *testing.T) {
	cfg := testConfig()
	cfg.Source.Format = "parquet"
	logger, _ := testutil.NewTestLogger(t)

	_, err := NewApplication(cfg, WithLogger(logger))
	assert.ErrorContains(t, err, "failed to create fetcher")
}

func TestApplication_Serve(t *testing.T) {
	cfg := testConfig()
	cfg.Source.FetchOnStart = true
	a, sheet := newTestApp(t, cfg)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	require.Eventually(t, a.PollService.Loaded, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, 1, sheet.Hits())

	wsURL := "ws" + strings.TrimPrefix(base, "http") + config.WebSocketEndpoint
	conn, _, err := gorilla.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	var hello events.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, events.MessageTypeConnection, hello.Type)

	resp, err := http.Post(base+"/api/polls/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var update events.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, events.MessageTypeDataUpdate, update.Type)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
