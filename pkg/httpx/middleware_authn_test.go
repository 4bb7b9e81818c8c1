package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nostella/nostella/pkg/httpx"
	"github.com/nostella/nostella/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newGuardedHandler(t *testing.T) (http.Handler, *jwtx.HS256) {
	t.Helper()

	h, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "nostella")
	require.NoError(t, err)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"user_id": httpx.UserIDFromContext(r.Context()),
			"email":   httpx.EmailFromContext(r.Context()),
		})
	})

	return httpx.Chain(inner, httpx.AuthnMiddleware(h)), h
}

func TestAuthnMiddlewareAttachesIdentity(t *testing.T) {
	t.Parallel()

	guarded, signer := newGuardedHandler(t)

	token, err := signer.Sign(jwtx.NewSessionClaims("user-1", "a@x.com", "nostella", time.Hour, time.Now().UTC()))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"user_id":"user-1"`)
	require.Contains(t, rec.Body.String(), `"email":"a@x.com"`)
}

func TestAuthnMiddlewareRejections(t *testing.T) {
	t.Parallel()

	guarded, signer := newGuardedHandler(t)

	send := func(authz string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		return rec
	}

	expiredToken, err := signer.Sign(jwtx.NewSessionClaims("user-1", "a@x.com", "nostella", time.Hour, time.Now().UTC().Add(-2*time.Hour)))
	require.NoError(t, err)

	wrongSecret, err := jwtx.NewHS256([]byte("ffffffffffffffffffffffffffffffff"), "nostella")
	require.NoError(t, err)
	resignedToken, err := wrongSecret.Sign(jwtx.NewSessionClaims("user-1", "a@x.com", "nostella", time.Hour, time.Now().UTC()))
	require.NoError(t, err)

	cases := map[string]string{
		"missing header":    "",
		"not bearer":        "Basic abc123",
		"garbage token":     "Bearer not.a.jwt",
		"expired token":     "Bearer " + expiredToken,
		"wrong-secret sign": "Bearer " + resignedToken,
	}

	var bodies []string
	for name, authz := range cases {
		t.Run(name, func(t *testing.T) {
			rec := send(authz)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			bodies = append(bodies, rec.Body.String())
		})
	}

	// Every rejection must look identical to the caller.
	for _, body := range bodies {
		require.Equal(t, bodies[0], body)
	}
}
