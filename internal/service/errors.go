package service

import "errors"

var (
	ErrValidation       = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrInvalidOrExpired = errors.New("invalid or expired token")
	ErrTransient        = errors.New("transient failure")
	ErrMisconfigured    = errors.New("auth config invalid")
)

// Failure is what the service layer returns to handlers: a kind from the
// sentinels above plus the client-facing message.
type Failure struct {
	Kind    error
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Kind
}

func fail(kind error, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}
