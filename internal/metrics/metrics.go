package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ImportsTotal counts playlist imports and refreshes by source and result.
	ImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "popcornplayer_imports_total",
		Help: "Total number of playlist imports and refreshes",
	}, []string{"source", "result"})

	// ChannelsIngested counts channels stored by imports and refreshes.
	ChannelsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "popcornplayer_channels_ingested_total",
		Help: "Total number of channels stored by imports",
	}, []string{"source"})

	// FetchErrors counts failed upstream requests by kind (transport, status, read).
	FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "popcornplayer_fetch_errors_total",
		Help: "Total number of failed upstream requests",
	}, []string{"kind"})

	// PanelRequests counts panel API calls by action.
	PanelRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "popcornplayer_panel_requests_total",
		Help: "Total number of panel API requests",
	}, []string{"action"})

	// ParseDropped counts #EXTINF descriptors dropped while parsing.
	ParseDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "popcornplayer_parse_dropped_total",
		Help: "Total number of malformed #EXTINF descriptors skipped",
	})
)

// RecordImport increments the import counter.
func RecordImport(source, result string) {
	ImportsTotal.WithLabelValues(source, result).Inc()
}

// RecordChannels adds n ingested channels for source.
func RecordChannels(source string, n int) {
	ChannelsIngested.WithLabelValues(source).Add(float64(n))
}

// RecordFetchError increments the fetch error counter.
func RecordFetchError(kind string) {
	FetchErrors.WithLabelValues(kind).Inc()
}

// RecordPanelRequest increments the panel request counter for action.
func RecordPanelRequest(action string) {
	PanelRequests.WithLabelValues(action).Inc()
}

// RecordParseDropped adds n dropped descriptors.
func RecordParseDropped(n int) {
	if n > 0 {
		ParseDropped.Add(float64(n))
	}
}
