package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultTokenInfoEndpoint = "https://oauth2.googleapis.com/tokeninfo"

// AssertionVerifier validates a third-party-issued identity token and yields
// the asserted subject.
type AssertionVerifier interface {
	Verify(ctx context.Context, rawToken string) (Assertion, error)
}

// GoogleVerifier checks Google ID tokens against the issuer's tokeninfo
// endpoint, scoped to a single OAuth client identifier.
type GoogleVerifier struct {
	clientID string
	endpoint string
	client   *http.Client
	now      func() time.Time
}

// NewGoogleVerifier constructs a verifier for the given OAuth client ID.
func NewGoogleVerifier(clientID string, timeout time.Duration) *GoogleVerifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoogleVerifier{
		clientID: clientID,
		endpoint: defaultTokenInfoEndpoint,
		client:   &http.Client{Timeout: timeout},
		now:      time.Now,
	}
}

// WithEndpoint overrides the tokeninfo endpoint (test servers).
func (v *GoogleVerifier) WithEndpoint(endpoint string) *GoogleVerifier {
	v.endpoint = endpoint
	return v
}

type tokenInfoResponse struct {
	Audience string `json:"aud"`
	Subject  string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Issuer   string `json:"iss"`
	Expires  string `json:"exp"`
}

// Verify resolves the raw ID token through the tokeninfo endpoint and checks
// audience, issuer and expiry.
func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (Assertion, error) {
	if rawToken == "" {
		return Assertion{}, ErrInvalidAssertion
	}

	u := v.endpoint + "?id_token=" + url.QueryEscape(rawToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Assertion{}, fmt.Errorf("build tokeninfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return Assertion{}, ErrInvalidAssertion
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Assertion{}, ErrInvalidAssertion
	}
	if resp.StatusCode != http.StatusOK {
		return Assertion{}, ErrInvalidAssertion
	}

	var info tokenInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return Assertion{}, ErrInvalidAssertion
	}
	if info.Audience != v.clientID {
		return Assertion{}, ErrInvalidAssertion
	}
	switch info.Issuer {
	case "accounts.google.com", "https://accounts.google.com":
	default:
		return Assertion{}, ErrInvalidAssertion
	}
	if exp, err := strconv.ParseInt(info.Expires, 10, 64); err != nil || v.now().Unix() >= exp {
		return Assertion{}, ErrInvalidAssertion
	}
	if info.Subject == "" || info.Email == "" {
		return Assertion{}, ErrInvalidAssertion
	}

	return Assertion{
		Subject: info.Subject,
		Email:   info.Email,
		Name:    info.Name,
	}, nil
}
