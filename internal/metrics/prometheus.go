package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the softphone media engine
type Metrics struct {
	// Transport metrics
	FramesReceived prometheus.Counter
	FramesSent     prometheus.Counter
	ParseErrors    prometheus.Counter
	SendFailures   prometheus.Counter

	// Inbound pipeline metrics
	SamplesDecoded  prometheus.Counter
	QueueDepth      prometheus.Gauge
	QueueDrops      prometheus.Counter
	UnderrunSamples prometheus.Counter

	// Outbound pipeline metrics
	BlocksEmitted prometheus.Counter

	// Session metrics
	ActiveSessions    prometheus.Gauge
	SessionsCreated   prometheus.Counter
	SessionsDestroyed prometheus.Counter
	SessionDuration   prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Transport metrics
		FramesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "softphone_frames_received_total",
			Help: "Total number of media frames received from the gateway",
		}),
		FramesSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "softphone_frames_sent_total",
			Help: "Total number of media frames sent to the gateway",
		}),
		ParseErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "softphone_parse_errors_total",
			Help: "Total number of frame parsing errors",
		}),
		SendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "softphone_send_failures_total",
			Help: "Total number of outbound frame send failures",
		}),

		// Inbound pipeline metrics
		SamplesDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "softphone_samples_decoded_total",
			Help: "Total number of mu-law samples decoded to float",
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "softphone_playback_queue_depth",
			Help: "Current number of samples buffered for playback",
		}),
		QueueDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "softphone_playback_queue_drops_total",
			Help: "Total number of samples evicted from a full playback queue",
		}),
		UnderrunSamples: promauto.NewCounter(prometheus.CounterOpts{
			Name: "softphone_playback_underrun_samples_total",
			Help: "Total number of silence samples substituted on queue underrun",
		}),

		// Outbound pipeline metrics
		BlocksEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "softphone_capture_blocks_emitted_total",
			Help: "Total number of capture blocks serialized and handed to the transport",
		}),

		// Session metrics
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "softphone_active_sessions",
			Help: "Current number of active call sessions",
		}),
		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "softphone_sessions_created_total",
			Help: "Total number of call sessions created",
		}),
		SessionsDestroyed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "softphone_sessions_destroyed_total",
			Help: "Total number of call sessions destroyed",
		}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "softphone_session_duration_seconds",
			Help:    "Duration of call sessions in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68 minutes
		}),

		// HTTP API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "softphone_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "softphone_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "softphone_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordFrameReceived increments the frames received counter
func (m *Metrics) RecordFrameReceived() {
	m.FramesReceived.Inc()
}

// RecordFrameSent increments the frames sent counter
func (m *Metrics) RecordFrameSent() {
	m.FramesSent.Inc()
}

// RecordParseError increments the parse errors counter
func (m *Metrics) RecordParseError() {
	m.ParseErrors.Inc()
}

// RecordSendFailure increments the send failures counter
func (m *Metrics) RecordSendFailure() {
	m.SendFailures.Inc()
}

// RecordSamplesDecoded adds to the decoded samples counter
func (m *Metrics) RecordSamplesDecoded(count int) {
	m.SamplesDecoded.Add(float64(count))
}

// SetQueueDepth sets the current playback queue depth
func (m *Metrics) SetQueueDepth(depth int) {
	m.QueueDepth.Set(float64(depth))
}

// RecordQueueDrops adds to the evicted samples counter
func (m *Metrics) RecordQueueDrops(count int) {
	m.QueueDrops.Add(float64(count))
}

// RecordUnderrunSamples adds to the substituted silence counter
func (m *Metrics) RecordUnderrunSamples(count int) {
	m.UnderrunSamples.Add(float64(count))
}

// RecordBlockEmitted increments the capture blocks counter
func (m *Metrics) RecordBlockEmitted() {
	m.BlocksEmitted.Inc()
}

// SetActiveSessions sets the current number of active sessions
func (m *Metrics) SetActiveSessions(count int) {
	m.ActiveSessions.Set(float64(count))
}

// RecordSessionCreated increments the sessions created counter
func (m *Metrics) RecordSessionCreated() {
	m.SessionsCreated.Inc()
}

// RecordSessionDestroyed increments the sessions destroyed counter and records duration
func (m *Metrics) RecordSessionDestroyed(durationSeconds float64) {
	m.SessionsDestroyed.Inc()
	m.SessionDuration.Observe(durationSeconds)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
