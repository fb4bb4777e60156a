package auth

import "context"

// TokenProvider supplies the bearer credential attached to collaborator
// calls. It is passed explicitly into the upstream client rather than read
// from ambient state, so the client stays testable without a real
// credential store.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider backed by a fixed credential string. An
// empty value means "no credential": the client sends no Authorization
// header.
type StaticToken string

func (s StaticToken) Token(_ context.Context) (string, error) {
	return string(s), nil
}
