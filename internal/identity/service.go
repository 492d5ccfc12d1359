package identity

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/ids"
)

const defaultTokenTTL = 30 * time.Minute

// Service resolves credentials to user identities and issues bearer tokens.
// Both resolution strategies (local password, external assertion) land on the
// same user record.
type Service struct {
	store    Store
	verifier AssertionVerifier
	secret   []byte
	issuer   string
	tokenTTL time.Duration
	now      func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service) error

// WithAssertionVerifier enables the external-login path.
func WithAssertionVerifier(v AssertionVerifier) ServiceOption {
	return func(s *Service) error {
		s.verifier = v
		return nil
	}
}

// WithIssuer overrides the token issuer claim.
func WithIssuer(issuer string) ServiceOption {
	return func(s *Service) error {
		issuer = strings.TrimSpace(issuer)
		if issuer != "" {
			s.issuer = issuer
		}
		return nil
	}
}

// WithTokenTTL configures bearer token lifetime.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) error {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
		return nil
	}
}

// WithClock overrides time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// NewService constructs Service with the given signing secret.
func NewService(store Store, secret string, opts ...ServiceOption) (*Service, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("identity: signing secret is required")
	}
	svc := &Service{
		store:    store,
		secret:   []byte(secret),
		issuer:   "interviewer-api",
		tokenTTL: defaultTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// Token bundles an issued bearer credential and its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Register creates a local password account of the given kind.
func (s *Service) Register(ctx context.Context, username, email, password, kind string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, ErrInvalidInput
		}
	}
	switch kind {
	case KindUser, KindEnterprise:
	case "":
		kind = KindUser
	default:
		return nil, ErrInvalidInput
	}

	if _, err := s.store.FindByUsername(ctx, username); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if email != "" {
		if _, err := s.store.FindByEmail(ctx, email); err == nil {
			return nil, ErrAlreadyExists
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &User{
		ID:           ids.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Kind:         kind,
		Active:       true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// IssueToken authenticates a local credential and mints a bearer token.
// The login value may be a username or an email address.
func (s *Service) IssueToken(ctx context.Context, login, password string) (Token, *User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return Token{}, nil, ErrInvalidCredentials
	}
	user, err := s.resolveLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Token{}, nil, ErrInvalidCredentials
		}
		return Token{}, nil, err
	}
	if !user.Active {
		return Token{}, nil, ErrInvalidCredentials
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return Token{}, nil, ErrInvalidCredentials
	}
	tok, err := s.mintToken(user)
	if err != nil {
		return Token{}, nil, err
	}
	return tok, user, nil
}

// LoginWithAssertion verifies an external identity assertion and issues a
// token. On first successful verification with no matching local record, a
// user is created from the asserted name and email; the external subject is
// stored in place of a password hash. The upsert is intentional.
func (s *Service) LoginWithAssertion(ctx context.Context, rawToken string) (Token, *User, error) {
	if s.verifier == nil {
		return Token{}, nil, ErrInvalidAssertion
	}
	assertion, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		return Token{}, nil, ErrInvalidAssertion
	}

	email := strings.TrimSpace(strings.ToLower(assertion.Email))
	user, err := s.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		user = &User{
			ID:           ids.New(),
			Username:     assertion.Name,
			Email:        email,
			PasswordHash: assertion.Subject,
			Kind:         KindUser,
			Active:       true,
			CreatedAt:    s.now().UTC(),
		}
		if err := s.store.Create(ctx, user); err != nil {
			return Token{}, nil, err
		}
	default:
		return Token{}, nil, err
	}

	if !user.Active {
		return Token{}, nil, ErrInvalidCredentials
	}
	tok, err := s.mintToken(user)
	if err != nil {
		return Token{}, nil, err
	}
	return tok, user, nil
}

// Authenticate validates a bearer token and resolves its subject to a user.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	claims, err := parseToken(s.secret, s.issuer, token, s.now().UTC())
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.resolveLogin(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// FindUser returns a user by primary key.
func (s *Service) FindUser(ctx context.Context, id string) (*User, error) {
	return s.store.Find(ctx, id)
}

func (s *Service) mintToken(user *User) (Token, error) {
	subject := user.Email
	if subject == "" {
		subject = user.Username
	}
	value, expiresAt, err := signToken(s.secret, s.issuer, subject, user.Kind, s.now().UTC(), s.tokenTTL)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: value, ExpiresAt: expiresAt}, nil
}

// resolveLogin looks a user up by email first, then by username. Token
// subjects and login identifiers share this resolution order.
func (s *Service) resolveLogin(ctx context.Context, login string) (*User, error) {
	if strings.Contains(login, "@") {
		return s.store.FindByEmail(ctx, strings.ToLower(login))
	}
	return s.store.FindByUsername(ctx, login)
}
