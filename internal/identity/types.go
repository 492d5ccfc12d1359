package identity

import "time"

// Account kinds sharing the identity component. The two kinds behave
// identically everywhere except the role claim carried by issued tokens.
const (
	KindUser       = "user"
	KindEnterprise = "enterprise"
)

// User represents a candidate or enterprise account.
//
// PasswordHash holds either a bcrypt hash (local accounts) or the external
// subject identifier recorded on first OAuth login. The external marker is
// never a valid bcrypt hash, so local password comparison against it always
// fails.
type User struct {
	ID           string
	Username     string
	Email        string // empty for legacy password-only accounts
	PasswordHash string
	Kind         string
	Active       bool
	CreatedAt    time.Time
}

// Assertion is the identity asserted by a trusted external issuer.
type Assertion struct {
	Subject string
	Email   string
	Name    string
}
