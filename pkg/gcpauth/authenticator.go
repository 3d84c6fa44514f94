package gcpauth

import (
	"context"
	"errors"
	"fmt"
)

// loginMethod identifies this authentication method to Vault.
const loginMethod = "GCP-IAM"

// Authenticator performs GCP IAM logins against Vault. It holds no mutable
// state; concurrent Login calls are independent.
type Authenticator struct {
	opts      *LoginOptions
	signer    Signer
	transport LoginTransport
}

// NewAuthenticator creates an authenticator from validated options, a
// signer, and a login transport.
func NewAuthenticator(opts *LoginOptions, signer Signer, transport LoginTransport) *Authenticator {
	return &Authenticator{
		opts:      opts,
		signer:    signer,
		transport: transport,
	}
}

// Login performs a single login attempt: resolve the identity, build and
// sign the claim set, and exchange the signed JWT for a session token. The
// first failing step aborts the attempt; there are no retries.
func (a *Authenticator) Login(ctx context.Context) (SessionToken, error) {
	projectID, err := a.opts.resolveProjectID()
	if err != nil {
		return SessionToken{}, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	serviceAccountID, err := a.opts.resolveServiceAccountID()
	if err != nil {
		return SessionToken{}, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	claims := buildClaims(a.opts, serviceAccountID, a.opts.now())

	signedJWT, err := a.signer.SignJWT(ctx, projectID, serviceAccountID, claims)
	if err != nil {
		return SessionToken{}, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	token, err := a.transport.DoLogin(ctx, loginMethod, signedJWT, a.opts.mountPath, a.opts.role)
	if err != nil {
		if errors.Is(err, ErrAuthentication) {
			return SessionToken{}, err
		}
		return SessionToken{}, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	return token, nil
}
