package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hejijunhao/camscan/internal/model"
)

func testReport() *model.Report {
	return &model.Report{
		Query: "webcam",
		Total: 1,
		Devices: []model.ScoredDevice{
			{Device: model.Device{IP: "10.0.0.1", Port: 554}, Label: 1, Prediction: 1, RiskLevel: "Exposed"},
		},
		Classification: &model.Classification{
			Accuracy: 100, TotalDevices: 1, ExposedCount: 1, Chart: []byte("png"),
		},
	}
}

func TestPostsReport(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	out := New(srv.URL)
	if err := out.Write(context.Background(), testReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if got["query"] != "webcam" {
		t.Fatalf("unexpected payload: %v", got)
	}
	ml := got["ml_results"].(map[string]any)
	if _, ok := ml["visualization"]; ok {
		t.Fatal("chart should be omitted by default")
	}
}

func TestWithChart(t *testing.T) {
	var got model.Report
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	out := New(srv.URL, WithChart())
	if err := out.Write(context.Background(), testReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if string(got.Classification.Chart) != "png" {
		t.Fatalf("expected chart in payload, got %q", got.Classification.Chart)
	}
}

func TestRetryOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	out := New(srv.URL, WithBackoff(10*time.Millisecond))
	if err := out.Write(context.Background(), testReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	out := New(srv.URL, WithBackoff(time.Millisecond))
	err := out.Write(context.Background(), testReport())
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != maxRetries+1 {
		t.Fatalf("expected %d calls, got %d", maxRetries+1, calls.Load())
	}
}

func TestNoRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	out := New(srv.URL)
	if err := out.Write(context.Background(), testReport()); err == nil {
		t.Fatal("expected error on 400")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call (no retry on 4xx), got %d", calls.Load())
	}
}

func TestCustomHeaders(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	out := New(srv.URL, WithHeaders(map[string]string{"Authorization": "Bearer xyz"}))
	if err := out.Write(context.Background(), testReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if gotAuth != "Bearer xyz" {
		t.Fatalf("expected custom header, got %q", gotAuth)
	}
}

func TestContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	out := New(srv.URL, WithBackoff(time.Hour))
	err := out.Write(ctx, testReport())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}
