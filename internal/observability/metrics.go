package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Import metrics
	importsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echolisten_imports_total",
		Help: "Total number of audio imports",
	}, []string{"status"})

	importDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "echolisten_import_duration_seconds",
		Help:    "End-to-end import time in seconds",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	// Transcription metrics
	transcriptionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echolisten_transcription_requests_total",
		Help: "Total number of transcription requests",
	}, []string{"provider", "status"})

	transcriptionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "echolisten_transcription_latency_seconds",
		Help:    "Transcription latency in seconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"provider"})

	segmentsProduced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echolisten_segments_total",
		Help: "Total number of transcript segments produced",
	}, []string{"method"})

	// Vocabulary metrics
	reviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echolisten_reviews_total",
		Help: "Total number of review answers",
	}, []string{"outcome"})

	wordToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echolisten_word_toggles_total",
		Help: "Total number of saved-word toggles",
	}, []string{"action"})

	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echolisten_lookups_total",
		Help: "Total number of word lookups",
	}, []string{"status"})

	lookupCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echolisten_lookup_cache_total",
		Help: "Definition cache hits and misses",
	}, []string{"result"}) // result: "hit" or "miss"

	pronunciations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echolisten_pronunciations_total",
		Help: "Total number of pronunciation requests",
	}, []string{"status"})

	// Playback metrics
	activeFollowers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "echolisten_active_followers",
		Help: "Number of connected playback follow streams",
	})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echolisten_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "echolisten_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echolisten_circuit_breaker_failures_total",
		Help: "Total circuit breaker failures",
	}, []string{"service"})
)

// ImportMetrics tracks the phases of a single import
type ImportMetrics struct {
	provider           string
	startTime          time.Time
	transcriptionStart time.Time
	mu                 sync.Mutex
}

// NewImportMetrics starts tracking an import
func NewImportMetrics(provider string) *ImportMetrics {
	return &ImportMetrics{
		provider:  provider,
		startTime: time.Now(),
	}
}

// RecordTranscriptionStart records the start of the ASR request
func (m *ImportMetrics) RecordTranscriptionStart() {
	m.mu.Lock()
	m.transcriptionStart = time.Now()
	m.mu.Unlock()
}

// RecordTranscriptionEnd records the end of the ASR request
func (m *ImportMetrics) RecordTranscriptionEnd(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.transcriptionStart.IsZero() {
		transcriptionLatency.WithLabelValues(m.provider).Observe(time.Since(m.transcriptionStart).Seconds())
	}
	transcriptionRequests.WithLabelValues(m.provider, status(success)).Inc()
}

// RecordImportEnd records the outcome of the whole import
func (m *ImportMetrics) RecordImportEnd(success bool) {
	importsTotal.WithLabelValues(status(success)).Inc()
	if success {
		importDuration.Observe(time.Since(m.startTime).Seconds())
	} else {
		errorsTotal.WithLabelValues("import", m.provider).Inc()
	}
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordSegments counts segments produced by a slicing method
func RecordSegments(method string, n int) {
	segmentsProduced.WithLabelValues(method).Add(float64(n))
}

// RecordReview counts a review answer
func RecordReview(outcome string) {
	reviewsTotal.WithLabelValues(outcome).Inc()
}

// RecordWordToggle counts an add or remove of a saved word
func RecordWordToggle(action string) {
	wordToggles.WithLabelValues(action).Inc()
}

// RecordLookup counts a dictionary lookup
func RecordLookup(result string) {
	lookupsTotal.WithLabelValues(result).Inc()
}

// RecordLookupCache counts a definition cache hit or miss
func RecordLookupCache(hit bool) {
	if hit {
		lookupCache.WithLabelValues("hit").Inc()
		return
	}
	lookupCache.WithLabelValues("miss").Inc()
}

// RecordPronunciation counts a speech synthesis request
func RecordPronunciation(success bool) {
	pronunciations.WithLabelValues(status(success)).Inc()
}

// FollowerConnected tracks an opened follow stream
func FollowerConnected() {
	activeFollowers.Inc()
}

// FollowerDisconnected tracks a closed follow stream
func FollowerDisconnected() {
	activeFollowers.Dec()
}

// RecordError records an error
func RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// UpdateCircuitBreakerState updates circuit breaker state metric
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments circuit breaker failure counter
func IncrementCircuitBreakerFailures(service string) {
	circuitBreakerFailures.WithLabelValues(service).Inc()
}
