package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hejijunhao/camscan/internal/connector"
	"github.com/hejijunhao/camscan/internal/connector/httpclient"
	"github.com/hejijunhao/camscan/internal/engine"
	"github.com/hejijunhao/camscan/internal/engine/classifier"
	"github.com/hejijunhao/camscan/internal/engine/labeler"
	"github.com/hejijunhao/camscan/internal/engine/taxonomy"
	"github.com/hejijunhao/camscan/internal/engine/testdata"
	"github.com/hejijunhao/camscan/internal/model"
)

type fakeConnector struct {
	result model.SearchResult
	err    error
	mu     sync.Mutex
	calls  []string
}

func (f *fakeConnector) Search(_ context.Context, _ connector.ConnectorConfig, query string) (model.SearchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	f.mu.Unlock()
	return f.result, f.err
}

type recordingOutput struct {
	mu      sync.Mutex
	reports []*model.Report
	closed  bool
}

func (r *recordingOutput) Write(_ context.Context, rep *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
	return nil
}

func (r *recordingOutput) Close() error {
	r.closed = true
	return nil
}

func corpusResult(t *testing.T) model.SearchResult {
	t.Helper()
	devs, err := testdata.Devices()
	require.NoError(t, err)
	return model.SearchResult{Total: 4821, Devices: devs}
}

func newTestServer(live, demo *fakeConnector, out *recordingOutput) *Server {
	cfg := Config{
		Live:      live,
		Demo:      demo,
		Processor: engine.New(labeler.New(taxonomy.DefaultKeywords()), classifier.New(classifier.DefaultConfig())),
		GinMode:   "test",
	}
	if out != nil {
		cfg.Output = out
	}
	return New(cfg)
}

func postSearch(t *testing.T, s *Server, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), "body: %s", w.Body.String())
	return w, m
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeConnector{}, &fakeConnector{}, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestIndexAndStatic(t *testing.T) {
	s := newTestServer(&fakeConnector{}, &fakeConnector{}, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="search-btn"`)
	assert.Contains(t, w.Body.String(), "/static/script.js")

	for _, path := range []string{"/static/script.js", "/static/style.css"} {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Body.String(), path)
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer(&fakeConnector{}, &fakeConnector{}, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36, "expected a generated UUID")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestSearch_QueryRequired(t *testing.T) {
	live := &fakeConnector{}
	s := newTestServer(live, &fakeConnector{}, nil)

	for _, body := range []string{`{"query":""}`, `{"query":"   "}`, `{"query":null}`, `{}`} {
		w, m := postSearch(t, s, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "Query is required", m["error"], body)
	}
	assert.Empty(t, live.calls)
}

func TestSearch_InvalidBody(t *testing.T) {
	s := newTestServer(&fakeConnector{}, &fakeConnector{}, nil)
	w, m := postSearch(t, s, `{"query":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", m["error"])
}

func TestSearch_Live(t *testing.T) {
	live := &fakeConnector{result: corpusResult(t)}
	out := &recordingOutput{}
	s := newTestServer(live, &fakeConnector{}, out)

	w, m := postSearch(t, s, `{"query":"  port:554  ","use_demo":false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, []string{"port:554"}, live.calls, "query is trimmed")
	assert.Equal(t, true, m["success"])
	assert.EqualValues(t, 4821, m["total"])
	assert.NotContains(t, m, "demo_mode")

	devices := m["devices"].([]any)
	require.Len(t, devices, len(live.result.Devices))
	first := devices[0].(map[string]any)
	for _, key := range []string{"ip", "port", "location", "country", "org", "product", "data", "ml_prediction", "risk_level"} {
		assert.Contains(t, first, key)
	}

	ml := m["ml_results"].(map[string]any)
	total := int(ml["total_devices"].(float64))
	exposed := int(ml["exposed_count"].(float64))
	benign := int(ml["benign_count"].(float64))
	assert.Equal(t, len(devices), total)
	assert.Equal(t, total, exposed+benign)

	png, err := base64.StdEncoding.DecodeString(ml["visualization"].(string))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "visualization is a base64 PNG")

	require.Len(t, out.reports, 1)
	assert.Equal(t, "port:554", out.reports[0].Query)
}

func TestSearch_Deterministic(t *testing.T) {
	live := &fakeConnector{result: corpusResult(t)}
	s := newTestServer(live, &fakeConnector{}, nil)

	_, a := postSearch(t, s, `{"query":"webcam"}`)
	_, b := postSearch(t, s, `{"query":"webcam"}`)
	assert.Equal(t, a["ml_results"].(map[string]any)["accuracy"], b["ml_results"].(map[string]any)["accuracy"])
	assert.Equal(t, a["devices"], b["devices"])
}

func TestSearch_Demo(t *testing.T) {
	live := &fakeConnector{}
	demo := &fakeConnector{result: model.SearchResult{}}
	res := corpusResult(t)
	demo.result = model.SearchResult{Total: len(res.Devices), Devices: res.Devices}
	s := newTestServer(live, demo, nil)

	w, m := postSearch(t, s, `{"query":null,"use_demo":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, m["demo_mode"])
	assert.EqualValues(t, len(res.Devices), m["total"])
	assert.NotNil(t, m["ml_results"])
	assert.Empty(t, live.calls, "demo mode never touches the live source")
	assert.Len(t, demo.calls, 1)
}

func TestSearch_EmptyResult(t *testing.T) {
	for _, upstream := range []int{0, 37} {
		s := newTestServer(&fakeConnector{result: model.SearchResult{Total: upstream}}, &fakeConnector{}, nil)

		w, _ := postSearch(t, s, `{"query":"nothing here"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"total":0,"devices":[],"ml_results":null}`, w.Body.String(),
			"upstream total %d", upstream)
	}
}

func TestSearch_SingleClassIsHandled(t *testing.T) {
	devs := []model.Device{
		{IP: "10.0.0.1", Port: 80, Banner: "HTTP/1.1 200 OK nginx"},
		{IP: "10.0.0.2", Port: 80, Banner: "HTTP/1.1 404 Not Found apache"},
		{IP: "10.0.0.3", Port: 22, Banner: "SSH-2.0-OpenSSH_8.9"},
	}
	s := newTestServer(&fakeConnector{result: model.SearchResult{Total: 3, Devices: devs}}, &fakeConnector{}, nil)

	w, m := postSearch(t, s, `{"query":"nginx"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.True(t, strings.HasPrefix(m["error"].(string), "Classification failed: "), m["error"])
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		status      int
		message     string
		suggestDemo bool
	}{
		{
			name:        "invalid key",
			err:         fmt.Errorf("shodan connector: %w: Invalid API key", connector.ErrUnauthorized),
			status:      http.StatusUnauthorized,
			message:     "Invalid API key. Try Demo Mode instead.",
			suggestDemo: true,
		},
		{
			name:        "no credits",
			err:         fmt.Errorf("shodan connector: %w", connector.ErrNoCredits),
			status:      http.StatusForbidden,
			message:     msgNoCredits,
			suggestDemo: true,
		},
		{
			name:    "other upstream error",
			err:     fmt.Errorf("shodan connector: %w", &httpclient.APIError{StatusCode: 400, Body: `{"error":"Invalid search query"}`}),
			status:  http.StatusBadRequest,
			message: "Shodan API Error: Invalid search query",
		},
		{
			name:    "unexpected",
			err:     errors.New("connection reset by peer"),
			status:  http.StatusInternalServerError,
			message: "Error: pipeline search: connection reset by peer",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeConnector{err: tt.err}, &fakeConnector{}, nil)
			w, m := postSearch(t, s, `{"query":"webcam"}`)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, m["error"])
			if tt.suggestDemo {
				assert.Equal(t, true, m["suggest_demo"])
			} else {
				assert.NotContains(t, m, "suggest_demo")
			}
		})
	}
}

func TestSearch_DemoError(t *testing.T) {
	demo := &fakeConnector{err: errors.New("open data/shodan_results.csv: no such file or directory")}
	s := newTestServer(&fakeConnector{}, demo, nil)

	w, m := postSearch(t, s, `{"use_demo":true}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, strings.HasPrefix(m["error"].(string), "Demo mode error: "), m["error"])
}

func TestClose(t *testing.T) {
	out := &recordingOutput{}
	s := newTestServer(&fakeConnector{}, &fakeConnector{}, out)
	require.NoError(t, s.Close())
	assert.True(t, out.closed)

	require.NoError(t, newTestServer(&fakeConnector{}, &fakeConnector{}, nil).Close())
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(&fakeConnector{}, &fakeConnector{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0", time.Second) }()
	cancel()
	assert.NoError(t, <-done)
}
