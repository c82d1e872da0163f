package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery signals an empty or malformed user query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")

	// ErrConnectionFailure signals that the vector index could not be reached.
	ErrConnectionFailure = errors.New("vector index connection failure")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrIndexQuery signals a failed nearest-neighbour query.
	ErrIndexQuery = errors.New("vector index query failed")
	// ErrSemanticDisabled signals that no vector index is configured.
	ErrSemanticDisabled = errors.New("semantic search disabled")

	// ErrParseFailure signals a malformed corpus source file.
	ErrParseFailure = errors.New("corpus source parse failure")
	// ErrCorpusUnavailable signals that no corpus source could be loaded.
	ErrCorpusUnavailable = errors.New("corpus unavailable")

	// ErrGenerationFailed signals a text generation provider failure.
	ErrGenerationFailed = errors.New("answer generation failed")
	// ErrNothingIndexed signals a re-index run that stored no items.
	ErrNothingIndexed = errors.New("nothing indexed")
)
