package main

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"
)

type sampleQuery struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

type incidentQuery struct {
	EventType string `json:"event_type"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

type samplePayload struct {
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

type incidentPayload struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Properties map[string]string `json:"properties"`
}

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/v1/telemetry/samples", func(w http.ResponseWriter, r *http.Request) {
		if !enforcePost(w, r) {
			return
		}
		var query sampleQuery
		if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		start, end, err := parseWindow(query.Start, query.End)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"samples": syntheticSeries(query.Name, query.Source, start, end)})
	})

	mux.HandleFunc("/api/v1/telemetry/incidents", func(w http.ResponseWriter, r *http.Request) {
		if !enforcePost(w, r) {
			return
		}
		var query incidentQuery
		if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		start, end, err := parseWindow(query.Start, query.End)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"events": syntheticIncidents(query.EventType, start, end)})
	})

	logger := log.New(log.Writer(), "telemetry-mock ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:    ":8080",
		Handler: logRequests(logger, mux),
	}

	logger.Println("listening on :8080")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

func parseWindow(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(time.RFC3339, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// syntheticSeries emits one sample per minute: a diurnal sine wave on a
// fixed baseline, with a spike every 47th minute so anomaly detection has
// something to find.
func syntheticSeries(name, source string, start, end time.Time) []samplePayload {
	samples := make([]samplePayload, 0)
	for ts := start.Truncate(time.Minute); ts.Before(end); ts = ts.Add(time.Minute) {
		minuteOfDay := float64(ts.Hour()*60 + ts.Minute())
		value := 100 + 25*math.Sin(2*math.Pi*minuteOfDay/1440)
		if ts.Unix()/60%47 == 0 {
			value *= 3
		}
		samples = append(samples, samplePayload{
			Name:      name,
			Value:     value,
			Timestamp: ts,
			Source:    source,
		})
	}
	return samples
}

// syntheticIncidents emits one deployment-style incident per six hours.
func syntheticIncidents(eventType string, start, end time.Time) []incidentPayload {
	if eventType == "" {
		eventType = "deployment"
	}
	events := make([]incidentPayload, 0)
	for ts := start.Truncate(6 * time.Hour); ts.Before(end); ts = ts.Add(6 * time.Hour) {
		if ts.Before(start) {
			continue
		}
		events = append(events, incidentPayload{
			ID:        "incident-" + ts.Format("20060102T150405"),
			Timestamp: ts,
			Properties: map[string]string{
				"event_type": eventType,
				"service":    "checkout",
			},
		})
	}
	return events
}

func enforcePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
