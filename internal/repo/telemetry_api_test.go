package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vantagestack/telemetry-engine/internal/cache"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newClientWithTransport(rt roundTripFunc, provider cache.Provider, ttl time.Duration) *TelemetryAPIClient {
	client := NewTelemetryAPIClient("http://core.local", "/api/v1/samples", "/api/v1/incidents", time.Second, provider, ttl)
	client.httpClient = &http.Client{Transport: rt}
	return client
}

func TestFetchSamplesDecodesResponse(t *testing.T) {
	body := `{"samples":[
		{"name":"latency_ms","value":12.5,"timestamp":"2025-03-10T12:00:00Z","unit":"ms","source":"api-1","labels":{"region":"eu"}},
		{"name":"latency_ms","value":14.0,"timestamp":"2025-03-10T12:01:00Z","unit":"ms","source":"api-1"}
	]}`
	client := newClientWithTransport(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/v1/samples" {
			t.Fatalf("unexpected path %s", req.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			t.Fatalf("bad request payload: %v", err)
		}
		if payload["name"] != "latency_ms" {
			t.Fatalf("expected series name in payload, got %v", payload)
		}
		return jsonResponse(http.StatusOK, body), nil
	}, nil, 0)

	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	samples, err := client.FetchSamples(context.Background(), "latency_ms", "api-1", start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].Value != 12.5 || samples[0].Labels["region"] != "eu" {
		t.Fatalf("unexpected first sample %+v", samples[0])
	}
}

func TestFetchSamplesUsesCache(t *testing.T) {
	var calls atomic.Int32
	body := `{"samples":[{"name":"latency_ms","value":1,"timestamp":"2025-03-10T12:00:00Z"}]}`
	client := newClientWithTransport(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusOK, body), nil
	}, cache.NewMemoryProvider(), time.Minute)

	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		samples, err := client.FetchSamples(ctx, "latency_ms", "", start, start.Add(time.Hour))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(samples) != 1 {
			t.Fatalf("expected 1 sample, got %d", len(samples))
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single upstream call, got %d", got)
	}
}

func TestFetchSamplesUpstreamFailure(t *testing.T) {
	client := newClientWithTransport(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, `{}`), nil
	}, nil, 0)

	_, err := client.FetchSamples(context.Background(), "latency_ms", "", time.Now().Add(-time.Hour), time.Now())
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestFetchIncidentsDecodesResponse(t *testing.T) {
	body := `{"events":[{"id":"inc-1","timestamp":"2025-03-10T12:00:00Z","properties":{"event_type":"deployment"}}]}`
	client := newClientWithTransport(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/v1/incidents" {
			t.Fatalf("unexpected path %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, body), nil
	}, nil, 0)

	events, err := client.FetchIncidents(context.Background(), "deployment", time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].ID != "inc-1" {
		t.Fatalf("unexpected events %+v", events)
	}
	if events[0].Properties["event_type"] != "deployment" {
		t.Fatalf("missing event_type property: %+v", events[0])
	}
}

func TestFetchSamplesRequiresBaseURL(t *testing.T) {
	client := NewTelemetryAPIClient("", "/samples", "/incidents", time.Second, nil, 0)
	if _, err := client.FetchSamples(context.Background(), "x", "", time.Now(), time.Now()); err == nil {
		t.Fatal("expected error for missing base URL")
	}
}
