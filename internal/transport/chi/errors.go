package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kailas-cloud/helpdesk/internal/domain"
)

// ErrorCode is a machine-readable error identifier in API responses.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeRateLimited            ErrorCode = "rate_limited"
	CodeCorpusUnavailable      ErrorCode = "corpus_unavailable"
	CodeVectorStoreUnavailable ErrorCode = "vector_store_unavailable"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeSemanticDisabled       ErrorCode = "semantic_disabled"
	CodeNothingIndexed         ErrorCode = "nothing_indexed"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrSemanticDisabled, http.StatusServiceUnavailable, CodeSemanticDisabled),
		sentinelHandler(domain.ErrCorpusUnavailable, http.StatusServiceUnavailable, CodeCorpusUnavailable),
		sentinelHandler(domain.ErrConnectionFailure, http.StatusServiceUnavailable, CodeVectorStoreUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrNothingIndexed, http.StatusBadGateway, CodeNothingIndexed),
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrRateLimited,
		domain.ErrSemanticDisabled,
		domain.ErrCorpusUnavailable,
		domain.ErrConnectionFailure,
		domain.ErrEmbeddingProviderError,
		domain.ErrIndexQuery,
		domain.ErrNothingIndexed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
