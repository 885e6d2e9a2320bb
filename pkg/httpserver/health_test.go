package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/regdesk/pkg/httpserver"
)

type report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func serve(t *testing.T, h http.Handler) (*httptest.ResponseRecorder, report) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	var r report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	return rec, r
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	rec, r := serve(t, httpserver.Liveness())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", r.Status)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	ok := httpserver.Probe{Name: "records", Check: func(context.Context) error { return nil }}
	failing := httpserver.Probe{Name: "sessions", Check: func(context.Context) error { return errors.New("redis down") }}

	t.Run("all probes pass", func(t *testing.T) {
		t.Parallel()

		rec, r := serve(t, httpserver.Readiness(nil, time.Second, ok))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", r.Status)
		assert.Equal(t, map[string]string{"records": "ok"}, r.Checks)
	})

	t.Run("failing probe reported by name", func(t *testing.T) {
		t.Parallel()

		rec, r := serve(t, httpserver.Readiness(nil, time.Second, ok, failing))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "not_ready", r.Status)
		assert.Equal(t, map[string]string{"records": "ok", "sessions": "failed"}, r.Checks)
	})

	t.Run("probe sees the deadline", func(t *testing.T) {
		t.Parallel()

		slow := httpserver.Probe{Name: "slow", Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}}
		rec, _ := serve(t, httpserver.Readiness(nil, 10*time.Millisecond, slow))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
