package registration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/regdesk/handler"
	"github.com/dmitrymomot/regdesk/modules/registration"
	"github.com/dmitrymomot/regdesk/pkg/records"
	"github.com/dmitrymomot/regdesk/pkg/session"
	"github.com/dmitrymomot/regdesk/svc/directory"
	"github.com/dmitrymomot/regdesk/svc/ledger"
)

type fixture struct {
	h       http.Handler
	regs    *records.MemoryTable
	users   *directory.Directory
	backend *records.MemoryBackend
}

func newFixture(t *testing.T, policy ledger.Policy) *fixture {
	t.Helper()
	ctx := context.Background()
	backend := records.NewMemoryBackend()
	backend.Table("Billing_Users")
	regs := backend.Table("Workshop_Registrations")

	userStore, err := records.Open(ctx, backend, "Billing_Users", directory.Headers)
	require.NoError(t, err)
	regStore, err := records.Open(ctx, backend, "Workshop_Registrations", ledger.Headers)
	require.NoError(t, err)

	users := directory.New(userStore)
	l := ledger.New(regStore,
		ledger.WithPolicy(policy),
		ledger.WithClock(func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }),
	)

	r := http.NewServeMux()
	r.Handle("/registrations/", http.StripPrefix("/registrations", registration.NewService(l, users).Handle()))
	return &fixture{h: r, regs: regs, users: users, backend: backend}
}

func (f *fixture) do(t *testing.T, email, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	s, err := session.New(time.Now(), time.Hour)
	require.NoError(t, err)
	if email != "" {
		s.Authenticate(session.Identity{Email: email, Name: "Session Name"})
	}

	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	r = r.WithContext(session.WithSession(r.Context(), s))
	w := httptest.NewRecorder()
	f.h.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) handler.JSONResponse {
	t.Helper()
	body := handler.JSONResponse{Data: data}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

const aliceBody = `{"contact":"555-0100","shirt_needed":true,"equipment":"Buy"}`

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("requires sign-in", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, ledger.PolicySingle)
		w := f.do(t, "", http.MethodPost, "/registrations/", aliceBody)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("name from directory and fee derived", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, ledger.PolicySingle)
		require.NoError(t, f.users.Upsert(context.Background(), "alice@example.com", "Alice", ""))

		w := f.do(t, "alice@example.com", http.MethodPost, "/registrations/", aliceBody)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var reg ledger.Registration
		decode(t, w, &reg)
		assert.Equal(t, "Alice", reg.Name)
		assert.Equal(t, "alice@example.com", reg.Email)
		assert.Equal(t, 200, reg.PendingAmount)
	})

	t.Run("caller cannot set amount or email", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, ledger.PolicySingle)
		w := f.do(t, "alice@example.com", http.MethodPost, "/registrations/",
			`{"contact":"1","equipment":"Buy","pending_amount":0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = f.do(t, "alice@example.com", http.MethodPost, "/registrations/",
			`{"contact":"1","equipment":"Buy","email":"bob@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, ledger.PolicySingle)
		w := f.do(t, "alice@example.com", http.MethodPost, "/registrations/", `{"contact":"","equipment":"Rent"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		details := decode(t, w, nil).Error.Details
		assert.Contains(t, details, "contact")
		assert.Contains(t, details, "equipment")
	})

	t.Run("multi policy duplicate is conflict", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, ledger.PolicyMulti)
		require.Equal(t, http.StatusCreated, f.do(t, "alice@example.com", http.MethodPost, "/registrations/", aliceBody).Code)

		w := f.do(t, "alice@example.com", http.MethodPost, "/registrations/", aliceBody)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = f.do(t, "alice@example.com", http.MethodPost, "/registrations/",
			`{"contact":"555-0199","shirt_needed":true,"equipment":"Buy"}`)
		assert.Equal(t, http.StatusCreated, w.Code)

		w = f.do(t, "alice@example.com", http.MethodGet, "/registrations/", "")
		var regs []ledger.Registration
		decode(t, w, &regs)
		assert.Len(t, regs, 2)
	})
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ledger.PolicySingle)
	w := f.do(t, "alice@example.com", http.MethodPost, "/registrations/", aliceBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var reg ledger.Registration
	decode(t, w, &reg)

	w = f.do(t, "alice@example.com", http.MethodPut, "/registrations/"+reg.ID,
		`{"contact":"555-0101","shirt_needed":false,"equipment":"Return"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated ledger.Registration
	decode(t, w, &updated)
	assert.Equal(t, "555-0101", updated.Contact)
	assert.Equal(t, 0, updated.PendingAmount)

	w = f.do(t, "mallory@example.com", http.MethodPut, "/registrations/"+reg.ID, aliceBody)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Could not locate record", decode(t, w, nil).Error.Message)
}

func TestUpdateMatching(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ledger.PolicyMulti)
	f.regs.Seed(
		ledger.Headers,
		[]string{"Alice", "alice@example.com", "555-0100", "Yes", "Buy", "200", "2024-01-01 00:00:00", ""},
	)

	w := f.do(t, "alice@example.com", http.MethodPost, "/registrations/match", `{
		"original": {"contact":"555-0100","shirt_needed":true,"equipment":"Buy"},
		"changes":  {"contact":"555-0100","shirt_needed":true,"equipment":"Return"}
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var reg ledger.Registration
	decode(t, w, &reg)
	assert.NotEmpty(t, reg.ID)
	assert.Equal(t, ledger.EquipmentReturn, reg.Equipment)
}

func TestPrefillAndSummary(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ledger.PolicyMulti)

	w := f.do(t, "alice@example.com", http.MethodGet, "/registrations/prefill", "")
	require.Equal(t, http.StatusOK, w.Code)
	var p registration.Prefill
	decode(t, w, &p)
	assert.Equal(t, "Session Name", p.Name)
	assert.Equal(t, ledger.EquipmentReturn, p.Equipment)
	assert.Empty(t, p.RegistrationID)

	require.Equal(t, http.StatusCreated, f.do(t, "alice@example.com", http.MethodPost, "/registrations/", aliceBody).Code)
	require.Equal(t, http.StatusCreated, f.do(t, "alice@example.com", http.MethodPost, "/registrations/",
		`{"contact":"2","shirt_needed":false,"equipment":"Return"}`).Code)

	w = f.do(t, "alice@example.com", http.MethodGet, "/registrations/prefill", "")
	decode(t, w, &p)
	assert.Equal(t, "2", p.Contact)
	assert.NotEmpty(t, p.RegistrationID)

	w = f.do(t, "alice@example.com", http.MethodGet, "/registrations/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sum ledger.Summary
	body := decode(t, w, &sum)
	assert.Equal(t, ledger.Summary{Registrations: 2, Buying: 1, Shirts: 1, PendingTotal: 200}, sum)
	assert.Equal(t, float64(200), body.Meta["fee"])
	assert.Equal(t, "multi", body.Meta["policy"])
}
