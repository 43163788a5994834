package sigv4

import (
	"context"
	"errors"
)

// ErrCredentialsMissing is returned when the access key, secret key, or
// region required for signing is absent. It is always raised before any
// network call is made.
var ErrCredentialsMissing = errors.New("aws credentials missing")

// Credentials holds a resolved set of AWS credentials. The session token is
// optional and only present for temporary (role or federated) credentials.
// Credential values are never logged.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// CredentialsProvider resolves credentials at call time from an ambient
// source. Implementations may cache short-lived credentials until their
// expiry; the provider is invoked once per outgoing request.
type CredentialsProvider interface {
	Retrieve(ctx context.Context) (Credentials, error)
}

// StaticProvider returns a fixed set of credentials.
type StaticProvider struct {
	Credentials Credentials
}

func (p StaticProvider) Retrieve(ctx context.Context) (Credentials, error) {
	return p.Credentials, nil
}
