package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/docpilot/docpilot/internal/answer"
)

// Answerer produces an answer for a documentation question.
type Answerer interface {
	Answer(ctx context.Context, query string, history []answer.Message) (string, error)
}

// QueryRequest is the body of POST /api.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse carries the generated answer.
type QueryResponse struct {
	Message string `json:"message"`
}

const maxQueryBodySize = 1 << 20 // 1 MiB

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	body := http.MaxBytesReader(w, r.Body, maxQueryBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON with a query field")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query must not be empty")
		return
	}

	message, err := s.answerer.Answer(r.Context(), req.Query, nil)
	if err != nil {
		if errors.Is(err, answer.ErrNoResults) {
			writeError(w, http.StatusNotFound, "no_results", "no relevant documentation sections found")
			return
		}
		s.logger.Error("answering query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to answer query")
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{Message: message})
}
