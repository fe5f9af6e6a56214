package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/foodgram/internal/apperr"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestDecodeJSON(t *testing.T) {
	v := NewValidator()

	var ok signup
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"longenough"}`))
	require.NoError(t, DecodeJSON(req, v, &ok))
	assert.Equal(t, "a@b.co", ok.Email)

	var bad signup
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","password":"x"}`))
	err := DecodeJSON(req, v, &bad)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	msg := apperr.MessageOf(err)
	assert.Contains(t, msg, "email: Enter a valid email address.")
	assert.Contains(t, msg, "password: Ensure this field has at least 8 characters.")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	err = DecodeJSON(req, v, &bad)
	assert.Equal(t, "Invalid request body", apperr.MessageOf(err))
}

type discount struct {
	Rate int `json:"rate%" validate:"required"`
}

func TestDecodeJSONKeepsPercentInMessage(t *testing.T) {
	var d discount
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	err := DecodeJSON(req, NewValidator(), &d)
	assert.Equal(t, "rate%: This field is required.", apperr.MessageOf(err))
}

func TestPathIDAndQuery(t *testing.T) {
	router := mux.NewRouter()
	var (
		id    uint
		idErr error
		limit int
		flag  bool
	)
	router.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, idErr = PathID(r, "id")
		limit = QueryInt(r, "limit")
		flag = QueryBool(r, "is_favorited")
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42?limit=7&is_favorited=TRUE", nil))
	require.NoError(t, idErr)
	assert.EqualValues(t, 42, id)
	assert.Equal(t, 7, limit)
	assert.True(t, flag)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/0?limit=-3&is_favorited=0", nil))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(idErr))
	assert.Zero(t, limit)
	assert.False(t, flag)
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.Validation("bad"), http.StatusBadRequest, "bad"},
		{apperr.Conflict("dup"), http.StatusBadRequest, "dup"},
		{apperr.NotFound("gone"), http.StatusNotFound, "gone"},
		{apperr.Forbidden("no"), http.StatusForbidden, "no"},
		{errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		assert.Equal(t, tc.status, rec.Code)

		var body Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.Success)
		if tc.msg != "" {
			assert.Equal(t, tc.msg, body.Error)
		}
		assert.NotContains(t, body.Error, "boom")
	}
}

func TestHealthHandler(t *testing.T) {
	healthy := HealthCheck{Name: "database", Ping: func(context.Context) error { return nil }}
	down := HealthCheck{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }}

	rec := httptest.NewRecorder()
	HealthHandler(healthy)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	HealthHandler(healthy, down)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unhealthy","component":"redis","error":"connection refused"}`, rec.Body.String())
}

func TestMetricsWrap(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "test_service")

	h := m.Wrap("teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCounter.WithLabelValues(http.MethodGet, "teapot", "418")))
}
