package metrics

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CacheLookup("application", true)
	m.CacheLookup("application", false)
	m.CacheLookup("application", false)
	m.PartyLookup("placeholder")
	m.AccessCheck(false)
	m.AccessCheck(true)
	m.TitleChainRows(2)
	m.ObserveRequest("GET", "/health", "200", 0.01)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("application", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("application", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.partyLookups.WithLabelValues("placeholder")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.accessChecks.WithLabelValues("denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.accessChecks.WithLabelValues("granted")))

	count, err := testutil.GatherAndCount(reg, "minerals_title_chain_rows")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	// None of these should panic
	m.CacheLookup("application", true)
	m.PartyLookup("found")
	m.AccessCheck(true)
	m.TitleChainRows(3)
	m.ObserveRequest("GET", "/", "200", 0.1)
}

func TestRegisterPool(t *testing.T) {
	reg := prometheus.NewRegistry()
	calls := 0
	RegisterPool(reg, func() *pgxpool.Stat {
		calls++
		return nil
	})

	count, err := testutil.GatherAndCount(reg,
		"minerals_db_pool_total_conns",
		"minerals_db_pool_idle_conns",
		"minerals_db_pool_acquired_conns",
	)
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, calls, "stats are read at scrape time")
}
