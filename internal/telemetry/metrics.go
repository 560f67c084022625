// Package telemetry exposes Prometheus counters for the chat listener.
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	// PagesFetched counts chat pages read without error.
	PagesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prayerbot_pages_fetched_total", Help: "Chat pages fetched successfully",
	})
	// PollErrors counts failed page reads that led to a backoff.
	PollErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prayerbot_poll_errors_total", Help: "Chat page fetches that failed",
	})
	// EventsSeen counts distinct chat events.
	EventsSeen = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prayerbot_events_seen_total", Help: "Distinct chat events processed",
	})
	// DuplicateEvents counts events already seen in this session.
	DuplicateEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prayerbot_duplicate_events_total", Help: "Redelivered chat events skipped",
	})
	// BotEvents counts events authored by one of the bot identities.
	BotEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prayerbot_bot_events_total", Help: "Events authored by the bot's own identities",
	})
	// RequestsDetected counts messages classified as prayer requests.
	RequestsDetected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prayerbot_requests_detected_total", Help: "Messages classified as prayer requests",
	})
	// RowsAppended counts requests written to the log.
	RowsAppended = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prayerbot_rows_appended_total", Help: "Requests written to the log sink",
	})
	// SinkFailures counts log appends that failed.
	SinkFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prayerbot_sink_failures_total", Help: "Log sink writes that failed",
	})
	// RepliesSent counts acknowledgements posted into the chat.
	RepliesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prayerbot_replies_sent_total", Help: "Acknowledgments posted into the chat",
	})
	// ReplyFailures counts acknowledgements that could not be posted.
	ReplyFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prayerbot_reply_failures_total", Help: "Acknowledgments that failed to post",
	})
)

// Init registers the counters with the default registry (idempotent).
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			PagesFetched, PollErrors, EventsSeen, DuplicateEvents, BotEvents,
			RequestsDetected, RowsAppended, SinkFailures, RepliesSent, ReplyFailures,
		)
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
