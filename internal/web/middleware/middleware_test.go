package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-addrcompare/internal/logging"
)

type observed struct {
	route  string
	status int
}

type recordingObserver struct {
	seen []observed
}

func (o *recordingObserver) ObserveRequest(route string, status int, _ time.Duration) {
	o.seen = append(o.seen, observed{route, status})
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	obs := &recordingObserver{}

	var ctxLoggerSet bool
	router := mux.NewRouter()
	router.HandleFunc("/api/reports/{gkz}", func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info().Msg("inside")
		ctxLoggerSet = true
		w.WriteHeader(http.StatusTeapot)
	})
	router.Use(RequestLogging(logger, obs))

	req := httptest.NewRequest(http.MethodGet, "/api/reports/60101", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.True(t, ctxLoggerSet)
	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))
	require.Len(t, obs.seen, 1)
	assert.Equal(t, observed{"/api/reports/{gkz}", http.StatusTeapot}, obs.seen[0])
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"message":"inside"`)
	assert.Contains(t, buf.String(), `"status":418`)
}

func TestRequestLoggingGeneratesID(t *testing.T) {
	handler := RequestLogging(zerolog.Nop(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	called := false
	handler := CORS()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/reports/1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)
}

func TestAuthentication(t *testing.T) {
	handler := Authentication("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong key", "X-API-Key", "nope", http.StatusUnauthorized},
		{"api key", "X-API-Key", "secret", http.StatusOK},
		{"bearer", "Authorization", "Bearer secret", http.StatusOK},
		{"bare authorization", "Authorization", "secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
