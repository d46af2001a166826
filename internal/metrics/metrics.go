package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sheet-quiz/internal/quiz"
)

const namespace = "sheet_quiz"

// Metrics holds the collectors on a private registry. It implements
// quiz.Observer.
type Metrics struct {
	registry *prometheus.Registry

	syncs            *prometheus.CounterVec
	cachedQuestions  prometheus.Gauge
	sessionsStarted  prometheus.Counter
	sessionsFinished *prometheus.CounterVec
	scoreRatio       prometheus.Histogram
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

var _ quiz.Observer = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		syncs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "syncs_total",
				Help:      "Sheet syncs by outcome.",
			},
			[]string{"outcome"},
		),
		cachedQuestions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cached_questions",
			Help:      "Questions stored by the last successful sync.",
		}),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Quiz sessions started.",
		}),
		sessionsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_finished_total",
				Help:      "Quiz sessions finished by final status.",
			},
			[]string{"status"},
		),
		scoreRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score_ratio",
			Help:      "Score divided by questions asked for finished sessions.",
			Buckets:   []float64{0.1, 0.25, 0.5, 0.75, 0.9, 1},
		}),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.syncs,
		m.cachedQuestions,
		m.sessionsStarted,
		m.sessionsFinished,
		m.scoreRatio,
		m.requests,
		m.requestDuration,
	)
	return m
}

func (m *Metrics) SyncFinished(err error, questionCount int) {
	if err != nil {
		m.syncs.WithLabelValues("error").Inc()
		return
	}
	m.syncs.WithLabelValues("ok").Inc()
	m.cachedQuestions.Set(float64(questionCount))
}

func (m *Metrics) SessionStarted() {
	m.sessionsStarted.Inc()
}

func (m *Metrics) SessionFinished(summary quiz.ResultSummary) {
	m.sessionsFinished.WithLabelValues(summary.Status).Inc()
	if summary.TotalQuestionsAsked > 0 {
		m.scoreRatio.Observe(float64(summary.Score) / float64(summary.TotalQuestionsAsked))
	}
}

// ObserveRequest records one served HTTP request. route is the matched
// pattern, not the raw path.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
