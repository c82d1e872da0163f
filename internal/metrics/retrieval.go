package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval pipeline metrics.
var (
	RetrievalOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk",
			Name:      "retrieval_outcomes_total",
			Help:      "Chat outcomes by kind and answering tier",
		},
		[]string{"outcome", "tier"},
	)

	RetrievalFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "helpdesk",
			Name:      "retrieval_fallback_total",
			Help:      "Queries that fell back from the semantic tier to lexical scoring",
		},
	)

	VectorConnectAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk",
			Name:      "vector_connect_attempts_total",
			Help:      "Vector store connection attempts",
		},
		[]string{"result"}, // "success" / "failure" / "cooldown"
	)

	CorpusItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "helpdesk",
			Name:      "corpus_items",
			Help:      "Items in the last assembled corpus by source kind",
		},
		[]string{"kind"},
	)

	CorpusSourceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk",
			Name:      "corpus_source_errors_total",
			Help:      "Content sources that failed to load",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(RetrievalOutcomesTotal)
	prometheus.MustRegister(RetrievalFallbackTotal)
	prometheus.MustRegister(VectorConnectAttemptsTotal)
	prometheus.MustRegister(CorpusItems)
	prometheus.MustRegister(CorpusSourceErrorsTotal)
}
