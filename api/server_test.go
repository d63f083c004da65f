package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/docpilot/docpilot/internal/answer"
	"github.com/docpilot/docpilot/internal/log"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeAnswerer struct {
	answerFn func(ctx context.Context, query string, history []answer.Message) (string, error)
	lastQuery string
}

func (f *fakeAnswerer) Answer(ctx context.Context, query string, history []answer.Message) (string, error) {
	f.lastQuery = query
	return f.answerFn(ctx, query, history)
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error { return f.err }

func newTestServer(answerer Answerer, pinger Pinger) *Server {
	return NewServer("127.0.0.1:0", answerer, pinger, log.NewNop())
}

func postQuery(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestQuerySuccess(t *testing.T) {
	answerer := &fakeAnswerer{
		answerFn: func(context.Context, string, []answer.Message) (string, error) {
			return "Use context.WithTimeout for request deadlines.", nil
		},
	}
	srv := newTestServer(answerer, &fakePinger{})

	rec := postQuery(t, srv, `{"query": "How do I set a deadline?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp QueryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Use context.WithTimeout for request deadlines.", resp.Message)
	assert.Equal(t, "How do I set a deadline?", answerer.lastQuery)
}

func TestQueryValidation(t *testing.T) {
	srv := newTestServer(&fakeAnswerer{
		answerFn: func(context.Context, string, []answer.Message) (string, error) {
			t.Fatal("answerer should not be called")
			return "", nil
		},
	}, &fakePinger{})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"invalid json", "{"},
		{"missing query", `{}`},
		{"blank query", `{"query": "   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postQuery(t, srv, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, "invalid_request", resp.Error)
		})
	}
}

func TestQueryNoResults(t *testing.T) {
	srv := newTestServer(&fakeAnswerer{
		answerFn: func(context.Context, string, []answer.Message) (string, error) {
			return "", answer.ErrNoResults
		},
	}, &fakePinger{})

	rec := postQuery(t, srv, `{"query": "something obscure"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "no_results", resp.Error)
}

func TestQueryInternalError(t *testing.T) {
	srv := newTestServer(&fakeAnswerer{
		answerFn: func(context.Context, string, []answer.Message) (string, error) {
			return "", errors.New("provider unavailable")
		},
	}, &fakePinger{})

	rec := postQuery(t, srv, `{"query": "anything"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "internal_error", resp.Error)
	assert.NotContains(t, resp.Message, "provider unavailable")
}

func TestQueryMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&fakeAnswerer{}, &fakePinger{})

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeAnswerer{}, &fakePinger{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReady(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		srv := newTestServer(&fakeAnswerer{}, &fakePinger{})
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("database down", func(t *testing.T) {
		srv := newTestServer(&fakeAnswerer{}, &fakePinger{err: errors.New("connection refused")})
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(&fakeAnswerer{}, &fakePinger{})

	t.Run("generated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	})

	t.Run("echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(requestIDHeader, "client-supplied-id")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, "client-supplied-id", rec.Header().Get(requestIDHeader))
	})
}

func TestRecovery(t *testing.T) {
	srv := newTestServer(&fakeAnswerer{
		answerFn: func(context.Context, string, []answer.Message) (string, error) {
			panic("boom")
		},
	}, &fakePinger{})

	rec := postQuery(t, srv, `{"query": "trigger"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "internal_error", resp.Error)
}
