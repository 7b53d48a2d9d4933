package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/vantagestack/telemetry-engine/internal/cache"
	"github.com/vantagestack/telemetry-engine/internal/models"
)

// TelemetryAPIClient fetches samples and incidents from the telemetry core
// service over JSON/HTTP. Fetched windows are cached for a short TTL so
// repeated analyses over the same range do not refetch.
type TelemetryAPIClient struct {
	baseURL       string
	samplesPath   string
	incidentsPath string
	httpClient    *http.Client
	cacheProvider cache.Provider
	cacheTTL      time.Duration
}

// NewTelemetryAPIClient constructs a client targeting the configured
// telemetry core instance. cacheProvider may be nil to disable caching.
func NewTelemetryAPIClient(baseURL, samplesPath, incidentsPath string, timeout time.Duration, cacheProvider cache.Provider, cacheTTL time.Duration) *TelemetryAPIClient {
	if cacheProvider == nil {
		cacheProvider = cache.NoopProvider{}
	}
	return &TelemetryAPIClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		samplesPath:   samplesPath,
		incidentsPath: incidentsPath,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cacheProvider: cacheProvider,
		cacheTTL:      cacheTTL,
	}
}

// FetchSamples queries the telemetry core for samples of one series.
func (c *TelemetryAPIClient) FetchSamples(ctx context.Context, name, source string, start, end time.Time) ([]models.Sample, error) {
	if c == nil {
		return nil, fmt.Errorf("telemetry client not initialised")
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("telemetry base URL not configured")
	}

	cacheKey := fmt.Sprintf("samples:%s:%s:%d:%d", name, source, start.UnixMilli(), end.UnixMilli())
	if cached, err := c.cacheProvider.Get(ctx, cacheKey); err == nil {
		var samples []models.Sample
		if err := json.Unmarshal(cached, &samples); err == nil {
			return samples, nil
		}
		_ = c.cacheProvider.Del(ctx, cacheKey)
	}

	payload := map[string]interface{}{
		"name":   name,
		"source": source,
		"start":  start.Format(time.RFC3339),
		"end":    end.Format(time.RFC3339),
	}

	var response struct {
		Samples []struct {
			Name      string            `json:"name"`
			Value     float64           `json:"value"`
			Timestamp time.Time         `json:"timestamp"`
			Unit      string            `json:"unit"`
			Source    string            `json:"source"`
			Labels    map[string]string `json:"labels"`
		} `json:"samples"`
	}

	if err := c.postJSON(ctx, c.resolvePath(c.samplesPath), payload, &response); err != nil {
		return nil, fmt.Errorf("telemetry samples request failed: %w", err)
	}

	samples := make([]models.Sample, 0, len(response.Samples))
	for _, s := range response.Samples {
		samples = append(samples, models.Sample{
			Name:      s.Name,
			Value:     s.Value,
			Timestamp: s.Timestamp,
			Unit:      s.Unit,
			Source:    s.Source,
			Labels:    s.Labels,
		})
	}

	if encoded, err := json.Marshal(samples); err == nil {
		_ = c.cacheProvider.Set(ctx, cacheKey, encoded, c.cacheTTL)
	}
	return samples, nil
}

// FetchIncidents queries the telemetry core for incident events of one type.
func (c *TelemetryAPIClient) FetchIncidents(ctx context.Context, eventType string, start, end time.Time) ([]models.IncidentEvent, error) {
	if c == nil {
		return nil, fmt.Errorf("telemetry client not initialised")
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("telemetry base URL not configured")
	}

	payload := map[string]interface{}{
		"event_type": eventType,
		"start":      start.Format(time.RFC3339),
		"end":        end.Format(time.RFC3339),
	}

	var response struct {
		Events []struct {
			ID         string            `json:"id"`
			Timestamp  time.Time         `json:"timestamp"`
			Properties map[string]string `json:"properties"`
		} `json:"events"`
	}

	if err := c.postJSON(ctx, c.resolvePath(c.incidentsPath), payload, &response); err != nil {
		return nil, fmt.Errorf("telemetry incidents request failed: %w", err)
	}

	events := make([]models.IncidentEvent, 0, len(response.Events))
	for _, e := range response.Events {
		events = append(events, models.IncidentEvent{
			ID:         e.ID,
			Timestamp:  e.Timestamp,
			Properties: e.Properties,
		})
	}
	return events, nil
}

func (c *TelemetryAPIClient) resolvePath(p string) string {
	if c.baseURL == "" {
		return ""
	}
	cleaned := "/" + strings.TrimLeft(p, "/")
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + cleaned
	}
	u.Path = path.Join(u.Path, cleaned)
	return u.String()
}

func (c *TelemetryAPIClient) postJSON(ctx context.Context, endpoint string, payload any, out any) error {
	if endpoint == "" {
		return fmt.Errorf("empty endpoint")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telemetry core returned %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
