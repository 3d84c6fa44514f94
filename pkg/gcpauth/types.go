package gcpauth

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// Credential identifies a Google service account that can sign JWTs through
// the IAM Credentials API.
type Credential struct {
	// ServiceAccountID is the service account's email address.
	ServiceAccountID string
	// ProjectID is the project the service account belongs to.
	ProjectID string
	// TokenSource authorizes calls to the IAM Credentials API.
	TokenSource oauth2.TokenSource
}

// SessionToken is the Vault token issued after a successful login.
type SessionToken struct {
	Token         string
	Renewable     bool
	LeaseDuration time.Duration
}

// ClaimSet is the JWT payload sent to the signing endpoint. Field order is
// the serialization order.
type ClaimSet struct {
	Sub string `json:"sub"`
	Aud string `json:"aud"`
	Exp int64  `json:"exp"`
}

// ServiceAccountIDResolver derives the service account id used as the JWT
// subject from a credential.
type ServiceAccountIDResolver func(cred Credential) (string, error)

// ProjectIDResolver derives the project id that scopes the signing request.
type ProjectIDResolver func(cred Credential) (string, error)

// Signer obtains a signed JWT for a claim set from the identity platform.
type Signer interface {
	SignJWT(ctx context.Context, projectID string, serviceAccountID string, claims ClaimSet) (string, error)
}

// LoginTransport exchanges a signed JWT for a Vault session token.
type LoginTransport interface {
	DoLogin(ctx context.Context, method string, jwt string, mountPath string, role string) (SessionToken, error)
}

// CredentialSupplier provides the credential used to authenticate.
type CredentialSupplier func(ctx context.Context) (Credential, error)
