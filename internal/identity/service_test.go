package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	svc, err := NewService(NewInMemory(), testSecret, opts...)
	require.NoError(t, err)
	return svc
}

func TestRegister(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "Alice@Example.com", "s3cret", "")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, "alice@example.com", user.Email, "email is normalized to lower case")
	require.Equal(t, KindUser, user.Kind)
	require.True(t, user.Active)
	require.NotEqual(t, "s3cret", user.PasswordHash, "password must never be stored in clear")

	_, err = svc.Register(ctx, "alice", "other@example.com", "pw", KindUser)
	require.ErrorIs(t, err, ErrAlreadyExists)

	_, err = svc.Register(ctx, "alice2", "alice@example.com", "pw", KindUser)
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "a@example.com", "pw", KindUser)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(ctx, "bob", "not-an-email", "pw", KindUser)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(ctx, "bob", "b@example.com", "", KindUser)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(ctx, "bob", "b@example.com", "pw", "superadmin")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterEnterpriseKind(t *testing.T) {
	svc := newTestService(t)
	user, err := svc.Register(context.Background(), "acme", "hr@acme.example.com", "pw", KindEnterprise)
	require.NoError(t, err)
	require.Equal(t, KindEnterprise, user.Kind)
}

func TestIssueTokenByUsernameAndEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret", KindUser)
	require.NoError(t, err)

	for _, login := range []string{"alice", "alice@example.com", "Alice@Example.com"} {
		tok, user, err := svc.IssueToken(ctx, login, "s3cret")
		require.NoError(t, err, "login %q", login)
		require.NotEmpty(t, tok.Value)
		require.True(t, tok.ExpiresAt.After(time.Now()))
		require.Equal(t, "alice", user.Username)
	}
}

func TestIssueTokenRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret", KindUser)
	require.NoError(t, err)

	_, _, err = svc.IssueToken(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.IssueToken(ctx, "nobody", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.IssueToken(ctx, "", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRoundtrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret", KindUser)
	require.NoError(t, err)

	tok, _, err := svc.IssueToken(ctx, "alice", "s3cret")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, tok.Value)
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)

	_, err = svc.Authenticate(ctx, tok.Value+"x")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Authenticate(ctx, "")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	issued := time.Now()
	clock := &issued
	svc := newTestService(t,
		WithTokenTTL(time.Minute),
		WithClock(func() time.Time { return *clock }),
	)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret", KindUser)
	require.NoError(t, err)
	tok, _, err := svc.IssueToken(ctx, "alice", "s3cret")
	require.NoError(t, err)

	later := issued.Add(2 * time.Minute)
	clock = &later
	_, err = svc.Authenticate(ctx, tok.Value)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateRejectsForeignSecret(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	svcA, err := NewService(store, "secret-a")
	require.NoError(t, err)
	svcB, err := NewService(store, "secret-b")
	require.NoError(t, err)

	_, err = svcA.Register(ctx, "alice", "alice@example.com", "s3cret", KindUser)
	require.NoError(t, err)
	tok, _, err := svcA.IssueToken(ctx, "alice", "s3cret")
	require.NoError(t, err)

	_, err = svcB.Authenticate(ctx, tok.Value)
	require.ErrorIs(t, err, ErrInvalidToken)
}

type staticVerifier struct {
	assertion Assertion
	err       error
}

func (v staticVerifier) Verify(ctx context.Context, rawToken string) (Assertion, error) {
	if v.err != nil {
		return Assertion{}, v.err
	}
	return v.assertion, nil
}

func TestLoginWithAssertionCreatesUserOnce(t *testing.T) {
	svc := newTestService(t, WithAssertionVerifier(staticVerifier{
		assertion: Assertion{Subject: "google-sub-1", Email: "Carol@Example.com", Name: "Carol"},
	}))
	ctx := context.Background()

	tok, user, err := svc.LoginWithAssertion(ctx, "raw-id-token")
	require.NoError(t, err)
	require.NotEmpty(t, tok.Value)
	require.Equal(t, "carol@example.com", user.Email)
	require.Equal(t, "Carol", user.Username)
	require.Equal(t, KindUser, user.Kind)

	// Second assertion login resolves to the same record.
	_, again, err := svc.LoginWithAssertion(ctx, "raw-id-token")
	require.NoError(t, err)
	require.Equal(t, user.ID, again.ID)

	// The stored external subject is not a usable password.
	_, _, err = svc.IssueToken(ctx, "carol@example.com", "google-sub-1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// The bearer token resolves like any other.
	resolved, err := svc.Authenticate(ctx, tok.Value)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)
}

func TestLoginWithAssertionFailures(t *testing.T) {
	ctx := context.Background()

	// No verifier configured.
	svc := newTestService(t)
	_, _, err := svc.LoginWithAssertion(ctx, "raw")
	require.ErrorIs(t, err, ErrInvalidAssertion)

	// Verifier rejects the token.
	svc = newTestService(t, WithAssertionVerifier(staticVerifier{err: ErrInvalidAssertion}))
	_, _, err = svc.LoginWithAssertion(ctx, "raw")
	require.ErrorIs(t, err, ErrInvalidAssertion)
}

func TestBothPathsShareOneRecord(t *testing.T) {
	svc := newTestService(t, WithAssertionVerifier(staticVerifier{
		assertion: Assertion{Subject: "google-sub-2", Email: "alice@example.com", Name: "Alice G"},
	}))
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret", KindUser)
	require.NoError(t, err)

	// Assertion login with the same email must not create a second record.
	_, viaGoogle, err := svc.LoginWithAssertion(ctx, "raw")
	require.NoError(t, err)
	require.Equal(t, registered.ID, viaGoogle.ID)

	// The local password still works afterwards.
	_, viaPassword, err := svc.IssueToken(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.Equal(t, registered.ID, viaPassword.ID)
}
