package security_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chezvous/backend-booking/internal/security"
)

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	var seen string
	limiter := security.BodyLimit{Max: 16}
	h := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seen = string(body)
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small body")))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "small body", seen, "body must be readable downstream")

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 17))))
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestBodyLimitDisabled(t *testing.T) {
	t.Parallel()

	h := security.BodyLimit{}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 1024))))
	require.Equal(t, http.StatusOK, rr.Code)
}
