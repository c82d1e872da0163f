package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates that answers are still possible from at least one tier.
	Degraded Status = "degraded"
	// Unhealthy indicates that neither retrieval tier can answer.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckDisabled indicates a component that is not configured.
	CheckDisabled CheckResult = "disabled"
)

// Component names in Report.Checks.
const (
	ComponentVectorStore = "vector_store"
	ComponentEmbedding   = "embedding"
	ComponentCorpus      = "corpus"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	vector    VectorPinger
	embedding EmbeddingChecker
	corpus    CorpusLoader
}

// New creates a Service. vector and embedding are nil when the semantic tier is disabled.
func New(vector VectorPinger, embedding EmbeddingChecker, corpus CorpusLoader) *Service {
	return &Service{vector: vector, embedding: embedding, corpus: corpus}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{
		ComponentVectorStore: CheckDisabled,
		ComponentEmbedding:   CheckDisabled,
		ComponentCorpus:      CheckDisabled,
	}

	if s.vector != nil {
		checks[ComponentVectorStore] = result(s.vector.Ping(ctx))
	}
	if s.embedding != nil {
		checks[ComponentEmbedding] = result(s.embedding.HealthCheck(ctx))
	}
	if s.corpus != nil {
		_, err := s.corpus.Load(ctx)
		checks[ComponentCorpus] = result(err)
	}

	semanticUp := checks[ComponentVectorStore] == CheckOK && checks[ComponentEmbedding] != CheckError
	lexicalUp := checks[ComponentCorpus] == CheckOK

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if !semanticUp && !lexicalUp {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
