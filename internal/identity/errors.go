package identity

import "errors"

var (
	ErrNotFound           = errors.New("identity: not found")
	ErrAlreadyExists      = errors.New("identity: already exists")
	ErrInvalidInput       = errors.New("identity: invalid input")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrInvalidToken       = errors.New("identity: invalid token")
	ErrInvalidAssertion   = errors.New("identity: invalid external assertion")
)
