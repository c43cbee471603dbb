// Package metrics exposes prometheus counters for the parsing engine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Advance outcomes.
const (
	OutcomeMatched   = "matched"
	OutcomeNoMatch   = "no_match"
	OutcomeAmbiguous = "ambiguous"
)

// Line outcomes.
const (
	OutcomeAccepted         = "accepted"
	OutcomeIncomplete       = "incomplete"
	OutcomeMissingParameter = "missing_parameter"
	OutcomeHandlerError     = "handler_error"
)

// ParserMetrics counts engine activity across all sessions sharing a
// grammar.
type ParserMetrics struct {
	TokensTotal      *prometheus.CounterVec
	CompletionsTotal prometheus.Counter
	LinesTotal       *prometheus.CounterVec
}

// New creates unregistered parser metrics.
func New() *ParserMetrics {
	return &ParserMetrics{
		TokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clitree_tokens_total",
			Help: "Tokens consumed, by match outcome.",
		}, []string{"outcome"}),
		CompletionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clitree_completion_requests_total",
			Help: "Completion requests served.",
		}),
		LinesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clitree_lines_total",
			Help: "Completed lines, by acceptance outcome.",
		}, []string{"outcome"}),
	}
}

// Register registers all collectors with r.
func (m *ParserMetrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.TokensTotal, m.CompletionsTotal, m.LinesTotal} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Token records one Advance call with the given outcome. Safe on a
// nil receiver so callers can leave metrics unconfigured.
func (m *ParserMetrics) Token(outcome string) {
	if m == nil {
		return
	}
	m.TokensTotal.WithLabelValues(outcome).Inc()
}

// Completion records one Complete call.
func (m *ParserMetrics) Completion() {
	if m == nil {
		return
	}
	m.CompletionsTotal.Inc()
}

// Line records one finished line with the given outcome.
func (m *ParserMetrics) Line(outcome string) {
	if m == nil {
		return
	}
	m.LinesTotal.WithLabelValues(outcome).Inc()
}
