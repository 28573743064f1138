package infra

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mata/internal/reconciliation"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Circuit breaker ──────────────────────────────────────────────────────────

func newTestBreaker(now *time.Time) *CircuitBreaker {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "test", FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Minute})
	cb.now = func() time.Time { return *now }
	return cb
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&now)
	boom := errors.New("boom")

	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&now)
	boom := errors.New("boom")
	_ = cb.Execute(func() error { return boom })
	_ = cb.Execute(func() error { return boom })
	require.Equal(t, CBOpen, cb.State())

	now = now.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())

	// a failed probe reopens immediately
	_ = cb.Execute(func() error { return boom })
	assert.Equal(t, CBOpen, cb.State())

	now = now.Add(time.Minute)
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	now := time.Now()
	cb := newTestBreaker(&now)
	boom := errors.New("boom")

	_ = cb.Execute(func() error { return boom })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return boom })
	assert.Equal(t, CBClosed, cb.State())
}

// ── Payments client ──────────────────────────────────────────────────────────

func TestPaymentsClient_Aggregated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cash-payments/aggregated", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"date":"2025-03-01","points":[{"point":"G_MBA","total":20000},{"point":"G_KM","total":"1500.5"}]}]}`))
	}))
	defer srv.Close()

	c := NewPaymentsClient(srv.URL+"/", time.Second, nil)
	days, err := c.Aggregated(context.Background())
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2025-03-01", days[0].Date)
	require.Len(t, days[0].Points, 2)
	assert.True(t, days[0].Points[0].Total.Equal(decimal.NewFromInt(20000)))
	assert.True(t, days[0].Points[1].Total.Equal(decimal.RequireFromString("1500.5")))
}

func TestPaymentsClient_FailuresOpenTheBreaker(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "payments", FailureThreshold: 2, OpenTimeout: time.Hour})
	c := NewPaymentsClient(srv.URL, time.Second, cb)

	for i := 0; i < 2; i++ {
		_, err := c.Aggregated(context.Background())
		require.Error(t, err)
	}
	_, err := c.Aggregated(context.Background())
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, calls)
	assert.Same(t, cb, c.Breaker())
}

func TestPaymentsClient_ReportedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"maintenance"}`))
	}))
	defer srv.Close()

	_, err := NewPaymentsClient(srv.URL, time.Second, nil).Aggregated(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maintenance")
}

// ── Snapshot cache ───────────────────────────────────────────────────────────

func TestMemorySnapshotCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemorySnapshotCache()

	_, ok, err := c.Get(ctx, "01/03/2025")
	require.NoError(t, err)
	assert.False(t, ok)

	snap := &reconciliation.Snapshot{Date: "01/03/2025", Aggregation: reconciliation.Aggregate([]string{"Mbao"}, nil, nil, nil)}
	require.NoError(t, c.Set(ctx, snap))
	require.NoError(t, c.Set(ctx, nil))

	got, ok, err := c.Get(ctx, "01/03/2025")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, snap, got)
}

func TestNoopSnapshotCache(t *testing.T) {
	var c SnapshotCache = NoopSnapshotCache{}
	require.NoError(t, c.Set(context.Background(), &reconciliation.Snapshot{Date: "01/03/2025"}))
	_, ok, err := c.Get(context.Background(), "01/03/2025")
	require.NoError(t, err)
	assert.False(t, ok)
}

// ── Lock ─────────────────────────────────────────────────────────────────────

func TestRedisLocker_WithoutRedisProceeds(t *testing.T) {
	l := NewRedisLocker(nil)
	release, err := l.Acquire(context.Background(), "lock:test", time.Second)
	require.NoError(t, err)
	require.NotNil(t, release)
	release()
}

// ── PDF ──────────────────────────────────────────────────────────────────────

func TestGenerateReconciliationPDF(t *testing.T) {
	s := reconciliation.NewSession(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	s.MarkComputed(reconciliation.Entries{
		"Mbao": reconciliation.Compute(reconciliation.Entry{
			StockMatin: decimal.NewFromInt(210400), StockSoir: decimal.NewFromInt(202630),
			Transferts: decimal.NewFromInt(1226200), VentesSaisies: decimal.NewFromInt(1165400),
		}),
		"Hors-Liste": {},
	}, nil, map[string]decimal.Decimal{"Mbao": decimal.NewFromInt(20000)})
	require.NoError(t, s.SetComment("Mbao", "Écart à vérifier"))

	out, err := GenerateReconciliationPDF(s, []string{"Mbao"}, time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestGenerateReconciliationPDF_NotReady(t *testing.T) {
	_, err := GenerateReconciliationPDF(reconciliation.NewSession(time.Now()), nil, time.Now())
	assert.ErrorIs(t, err, reconciliation.ErrSessionNotReady)

	_, err = GenerateReconciliationPDF(nil, nil, time.Now())
	assert.ErrorIs(t, err, reconciliation.ErrSessionNotReady)
}
