package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDomainMetrics(reg)

	m.VoteApplied("post", "recorded")
	m.VoteApplied("post", "recorded")
	m.VoteApplied("comment", "removed")
	m.VoteConflict("post")
	m.Classification(ClassifierTimeout)
	m.RecommendationsServed(3)

	assert.InDelta(t, 2, testutil.ToFloat64(m.votes.WithLabelValues("post", "recorded")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.votes.WithLabelValues("comment", "removed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.voteConflicts.WithLabelValues("post")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.classifications.WithLabelValues(ClassifierTimeout)), 0)

	count, err := testutil.GatherAndCount(reg, "wellness_recommendations_served")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDomainMetrics_NilIsNoop(t *testing.T) {
	var m *DomainMetrics

	assert.NotPanics(t, func() {
		m.VoteApplied("post", "recorded")
		m.VoteConflict("post")
		m.Classification(ClassifierOK)
		m.RecommendationsServed(0)
	})
}

func TestMiddleware_ReturnsTracingThenMetrics(t *testing.T) {
	handlers := Middleware("wellness-service")

	assert.Len(t, handlers, 2)
}

func TestIsProbe(t *testing.T) {
	for path, want := range map[string]bool{
		"/-/live":         true,
		"/-/metrics":      true,
		"/api/v1/posts":   false,
		"/api/v1/-/posts": false,
	} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		assert.Equal(t, want, isProbe(r), path)
	}
}
