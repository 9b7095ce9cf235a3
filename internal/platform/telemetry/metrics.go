package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Classifier outcomes.
const (
	ClassifierOK       = "ok"
	ClassifierCacheHit = "cache_hit"
	ClassifierFailed   = "failed"
	ClassifierTimeout  = "timeout"
	ClassifierDisabled = "disabled"
)

// DomainMetrics counts business events on the Prometheus registry served at
// /-/metrics. A nil *DomainMetrics records nothing.
type DomainMetrics struct {
	votes           *prometheus.CounterVec
	voteConflicts   *prometheus.CounterVec
	classifications *prometheus.CounterVec
	recommendations prometheus.Histogram
}

// NewDomainMetrics registers the counters on reg.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	factory := promauto.With(reg)

	return &DomainMetrics{
		votes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellness",
			Name:      "votes_total",
			Help:      "Votes applied, by target and outcome.",
		}, []string{"target", "outcome"}),
		voteConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellness",
			Name:      "vote_conflicts_total",
			Help:      "Optimistic-lock conflicts on vote saves that were retried.",
		}, []string{"target"}),
		classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellness",
			Name:      "classifier_requests_total",
			Help:      "Category classification attempts, by outcome.",
		}, []string{"outcome"}),
		recommendations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wellness",
			Name:      "recommendations_served",
			Help:      "Number of recommendations returned per request.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		}),
	}
}

// VoteApplied counts a successful vote on a post or comment.
func (m *DomainMetrics) VoteApplied(target, outcome string) {
	if m == nil {
		return
	}

	m.votes.WithLabelValues(target, outcome).Inc()
}

// VoteConflict counts a lost compare-and-swap.
func (m *DomainMetrics) VoteConflict(target string) {
	if m == nil {
		return
	}

	m.voteConflicts.WithLabelValues(target).Inc()
}

// Classification counts one classifier call by outcome.
func (m *DomainMetrics) Classification(outcome string) {
	if m == nil {
		return
	}

	m.classifications.WithLabelValues(outcome).Inc()
}

// RecommendationsServed observes the size of a recommendation response.
func (m *DomainMetrics) RecommendationsServed(n int) {
	if m == nil {
		return
	}

	m.recommendations.Observe(float64(n))
}
