package bench

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"

	"github.com/vantagestack/telemetry-engine/internal/metrics"
	"github.com/vantagestack/telemetry-engine/internal/models"
)

// EndpointTarget describes one HTTP operation to benchmark. Method and Path
// form the identity used when pairing endpoints across environments.
type EndpointTarget struct {
	Method string
	Path   string
	Body   []byte
	Header http.Header
}

// EnvironmentSet is a named group of endpoints served from one base URL.
type EnvironmentSet struct {
	Name      string
	BaseURL   string
	Endpoints []EndpointTarget
}

// HTTPLoadParams configures the load applied to an endpoint set.
type HTTPLoadParams struct {
	// Rate is requests per second spread across all endpoints.
	Rate     int
	Duration time.Duration
	Workers  int
	Timeout  time.Duration
}

func (p HTTPLoadParams) validate() error {
	if p.Rate <= 0 {
		return fmt.Errorf("rate must be positive, got %d", p.Rate)
	}
	if p.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %s", p.Duration)
	}
	return nil
}

// HTTPBenchmarker drives real HTTP endpoints under constant-rate load and
// folds per-request outcomes into per-endpoint benchmark results.
type HTTPBenchmarker struct {
	logger *slog.Logger
}

// NewHTTPBenchmarker constructs an HTTP endpoint benchmarker.
func NewHTTPBenchmarker(logger *slog.Logger) *HTTPBenchmarker {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPBenchmarker{logger: logger}
}

// RunEndpoints attacks every endpoint of the set round-robin at the
// configured rate for the configured duration and returns one result per
// (method, path) pair. Non-2xx/3xx responses and transport errors count as
// failures and are excluded from latency statistics.
func (b *HTTPBenchmarker) RunEndpoints(ctx context.Context, env EnvironmentSet, params HTTPLoadParams) ([]models.BenchmarkResult, error) {
	if len(env.Endpoints) == 0 {
		return nil, fmt.Errorf("environment %s has no endpoints", env.Name)
	}
	if env.BaseURL == "" {
		return nil, fmt.Errorf("environment %s has no base URL", env.Name)
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	base := strings.TrimRight(env.BaseURL, "/")
	targets := make([]vegeta.Target, 0, len(env.Endpoints))
	keyByURL := make(map[string]string, len(env.Endpoints))
	for _, endpoint := range env.Endpoints {
		url := base + "/" + strings.TrimLeft(endpoint.Path, "/")
		targets = append(targets, vegeta.Target{
			Method: endpoint.Method,
			URL:    url,
			Body:   endpoint.Body,
			Header: endpoint.Header,
		})
		keyByURL[endpoint.Method+" "+url] = endpointKey(endpoint.Method, endpoint.Path)
	}

	opts := []func(*vegeta.Attacker){}
	if params.Timeout > 0 {
		opts = append(opts, vegeta.Timeout(params.Timeout))
	}
	if params.Workers > 0 {
		opts = append(opts, vegeta.Workers(uint64(params.Workers)))
	}
	attacker := vegeta.NewAttacker(opts...)
	cancelWatch := context.AfterFunc(ctx, func() { attacker.Stop() })
	defer cancelWatch()

	targeter := vegeta.NewStaticTargeter(targets...)
	rate := vegeta.Rate{Freq: params.Rate, Per: time.Second}

	type endpointBuffer struct {
		latencies []time.Duration
		errors    int
	}
	buffers := make(map[string]*endpointBuffer, len(env.Endpoints))

	started := time.Now()
	for res := range attacker.Attack(targeter, rate, params.Duration, env.Name) {
		key, ok := keyByURL[res.Method+" "+res.URL]
		if !ok {
			key = endpointKey(res.Method, res.URL)
		}
		buf := buffers[key]
		if buf == nil {
			buf = &endpointBuffer{}
			buffers[key] = buf
		}
		if res.Error != "" || res.Code < 200 || res.Code >= 400 {
			buf.errors++
			continue
		}
		buf.latencies = append(buf.latencies, res.Latency)
	}
	elapsed := time.Since(started)

	results := make([]models.BenchmarkResult, 0, len(env.Endpoints))
	for _, endpoint := range env.Endpoints {
		key := endpointKey(endpoint.Method, endpoint.Path)
		buf := buffers[key]
		if buf == nil {
			buf = &endpointBuffer{}
		}
		result := buildResult(key, buf.latencies, buf.errors, elapsed)
		result.Method = endpoint.Method
		result.Path = endpoint.Path
		result.Duration = elapsed
		metrics.ObserveBenchmarkRun(key, result.SuccessCount, result.ErrorCount, elapsed)
		results = append(results, result)
	}

	b.logger.Info("endpoint benchmark finished",
		slog.String("environment", env.Name),
		slog.Int("endpoints", len(env.Endpoints)),
		slog.Duration("elapsed", elapsed))
	return results, nil
}

func endpointKey(method, path string) string {
	return method + " " + path
}
