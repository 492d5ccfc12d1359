package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTokenInfoServer(t *testing.T, info map[string]string, status int) *GoogleVerifier {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotEmpty(t, r.URL.Query().Get("id_token"))
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(info)
	}))
	t.Cleanup(srv.Close)
	return NewGoogleVerifier("client-123", time.Second).WithEndpoint(srv.URL)
}

func validTokenInfo() map[string]string {
	return map[string]string{
		"aud":   "client-123",
		"sub":   "google-sub-1",
		"email": "carol@example.com",
		"name":  "Carol",
		"iss":   "accounts.google.com",
		"exp":   strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
	}
}

func TestGoogleVerify(t *testing.T) {
	v := newTokenInfoServer(t, validTokenInfo(), http.StatusOK)

	assertion, err := v.Verify(context.Background(), "raw-token")
	require.NoError(t, err)
	require.Equal(t, "google-sub-1", assertion.Subject)
	require.Equal(t, "carol@example.com", assertion.Email)
	require.Equal(t, "Carol", assertion.Name)
}

func TestGoogleVerifyRejects(t *testing.T) {
	cases := map[string]func(info map[string]string){
		"wrong audience": func(info map[string]string) { info["aud"] = "other-client" },
		"wrong issuer":   func(info map[string]string) { info["iss"] = "evil.example.com" },
		"expired": func(info map[string]string) {
			info["exp"] = strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10)
		},
		"missing subject": func(info map[string]string) { info["sub"] = "" },
		"missing email":   func(info map[string]string) { info["email"] = "" },
		"garbage expiry":  func(info map[string]string) { info["exp"] = "soon" },
	}
	for name, mutate := range cases {
		info := validTokenInfo()
		mutate(info)
		v := newTokenInfoServer(t, info, http.StatusOK)
		if _, err := v.Verify(context.Background(), "raw-token"); err == nil {
			t.Fatalf("%s: expected rejection", name)
		}
	}
}

func TestGoogleVerifyUpstreamError(t *testing.T) {
	v := newTokenInfoServer(t, map[string]string{"error": "invalid_token"}, http.StatusBadRequest)
	_, err := v.Verify(context.Background(), "raw-token")
	require.ErrorIs(t, err, ErrInvalidAssertion)
}

func TestGoogleVerifyEmptyToken(t *testing.T) {
	v := NewGoogleVerifier("client-123", time.Second)
	_, err := v.Verify(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidAssertion)
}
