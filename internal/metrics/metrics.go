package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "minerals"

// Metrics groups the service's Prometheus collectors. A nil *Metrics is
// valid and records nothing, so components can be built without one.
type Metrics struct {
	cacheLookups   *prometheus.CounterVec
	partyLookups   *prometheus.CounterVec
	accessChecks   *prometheus.CounterVec
	titleChainRows prometheus.Histogram
	requests       *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Session cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		partyLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "party_lookups_total",
			Help:      "Party resolutions by outcome (found, placeholder, malformed).",
		}, []string{"outcome"}),
		accessChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_checks_total",
			Help:      "Access token checks by result.",
		}, []string{"result"}),
		titleChainRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "title_chain_rows",
			Help:      "Rows per decoded title-chain upload.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(m.cacheLookups, m.partyLookups, m.accessChecks, m.titleChainRows, m.requests)
	return m
}

// CacheLookup records a hit or miss on the named cache.
func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

// PartyLookup records the outcome of resolving one party.
func (m *Metrics) PartyLookup(outcome string) {
	if m == nil {
		return
	}
	m.partyLookups.WithLabelValues(outcome).Inc()
}

// AccessCheck records a granted or denied access check.
func (m *Metrics) AccessCheck(granted bool) {
	if m == nil {
		return
	}
	result := "denied"
	if granted {
		result = "granted"
	}
	m.accessChecks.WithLabelValues(result).Inc()
}

// TitleChainRows records the size of a decoded upload.
func (m *Metrics) TitleChainRows(n int) {
	if m == nil {
		return
	}
	m.titleChainRows.Observe(float64(n))
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, status).Observe(seconds)
}

// RegisterPool exports connection pool gauges read from stats at scrape
// time. A nil Stat reads as zero.
func RegisterPool(reg prometheus.Registerer, stats func() *pgxpool.Stat) {
	gauge := func(name, help string, value func(*pgxpool.Stat) int32) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 {
			s := stats()
			if s == nil {
				return 0
			}
			return float64(value(s))
		})
	}

	reg.MustRegister(
		gauge("total_conns", "Connections currently in the pool.", (*pgxpool.Stat).TotalConns),
		gauge("idle_conns", "Idle connections in the pool.", (*pgxpool.Stat).IdleConns),
		gauge("acquired_conns", "Connections checked out of the pool.", (*pgxpool.Stat).AcquiredConns),
	)
}
