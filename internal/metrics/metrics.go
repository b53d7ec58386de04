// Package metrics exposes Prometheus collectors for image resolution runs.
package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JakeFAU/ogimage/internal/imagefetch"
)

// Recorder implements imagefetch.Recorder on a Prometheus registry.
type Recorder struct {
	stagesTotal          *prometheus.CounterVec
	fetchesTotal         *prometheus.CounterVec
	fetchBytesTotal      *prometheus.CounterVec
	fetchDurationSeconds *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		stagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ogimage_stage_total",
				Help: "Resolution stage outcomes, labeled by stage and outcome.",
			},
			[]string{"stage", "outcome"},
		),
		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ogimage_fetch_total",
				Help: "Live page fetches, labeled by site and status class.",
			},
			[]string{"site", "status"},
		),
		fetchBytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ogimage_fetch_bytes_total",
				Help: "Bytes of page HTML fetched, labeled by site.",
			},
			[]string{"site"},
		),
		fetchDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ogimage_fetch_duration_seconds",
				Help:    "Histogram of live fetch latencies, labeled by site.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 12},
			},
			[]string{"site"},
		),
	}

	for _, c := range []prometheus.Collector{
		r.stagesTotal,
		r.fetchesTotal,
		r.fetchBytesTotal,
		r.fetchDurationSeconds,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// ObserveStage increments the outcome counter for stage.
func (r *Recorder) ObserveStage(stage imagefetch.State, outcome string) {
	r.stagesTotal.WithLabelValues(string(stage), outcome).Inc()
}

// ObserveFetch records one live fetch.
func (r *Recorder) ObserveFetch(rawURL string, status string, bytesFetched int, duration time.Duration) {
	site := SanitizeSite(rawURL)
	r.fetchesTotal.WithLabelValues(site, status).Inc()
	if bytesFetched > 0 {
		r.fetchBytesTotal.WithLabelValues(site).Add(float64(bytesFetched))
	}
	r.fetchDurationSeconds.WithLabelValues(site).Observe(duration.Seconds())
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// WriteTextfile dumps everything g gathers to path in the text exposition
// format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
