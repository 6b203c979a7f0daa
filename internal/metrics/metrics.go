// Package metrics holds the Prometheus collectors for a run and writes them
// out in the node_exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PageRequests counts page fetches by outcome (ok, http_error, network_error, decode_error)
	PageRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimoverlap_page_requests_total",
		Help: "SPARQL page requests by outcome",
	}, []string{"outcome"})

	// PageDuration observes the wall time of a single page request
	PageDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "claimoverlap_page_duration_seconds",
		Help:    "SPARQL page request duration in seconds",
		Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
	})

	// Bindings counts result rows received
	Bindings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claimoverlap_bindings_total",
		Help: "Result rows received from the endpoint",
	})

	// Records is the number of distinct ROR IDs after merging all pages
	Records = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "claimoverlap_records",
		Help: "Distinct ROR IDs after merging all pages",
	})

	// RowsWritten counts CSV data rows by claim name
	RowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimoverlap_rows_written_total",
		Help: "CSV rows written by claim",
	}, []string{"claim"})
)

// WriteTextfile writes the default registry to path atomically
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
