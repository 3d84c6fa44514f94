package mocks

import (
	"context"
	"fmt"

	"github.com/eculver/vault-gcp/pkg/gcpauth"
)

type Signer struct {
	SignJWTFunc func(ctx context.Context, projectID string, serviceAccountID string, claims gcpauth.ClaimSet) (string, error)

	SignJWTCalls         int
	LastProjectID        string
	LastServiceAccountID string
	LastClaims           gcpauth.ClaimSet
}

func (m *Signer) SignJWT(ctx context.Context, projectID string, serviceAccountID string, claims gcpauth.ClaimSet) (string, error) {
	m.SignJWTCalls++
	m.LastProjectID = projectID
	m.LastServiceAccountID = serviceAccountID
	m.LastClaims = claims
	if m.SignJWTFunc == nil {
		return "", fmt.Errorf("SignJWTFunc is not set")
	}
	return m.SignJWTFunc(ctx, projectID, serviceAccountID, claims)
}

type LoginTransport struct {
	DoLoginFunc func(ctx context.Context, method string, jwt string, mountPath string, role string) (gcpauth.SessionToken, error)

	DoLoginCalls  int
	LastMethod    string
	LastJWT       string
	LastMountPath string
	LastRole      string
}

func (m *LoginTransport) DoLogin(ctx context.Context, method string, jwt string, mountPath string, role string) (gcpauth.SessionToken, error) {
	m.DoLoginCalls++
	m.LastMethod = method
	m.LastJWT = jwt
	m.LastMountPath = mountPath
	m.LastRole = role
	if m.DoLoginFunc == nil {
		return gcpauth.SessionToken{}, fmt.Errorf("DoLoginFunc is not set")
	}
	return m.DoLoginFunc(ctx, method, jwt, mountPath, role)
}

type CredentialSupplier struct {
	GetFunc func(ctx context.Context) (gcpauth.Credential, error)

	GetCalls int
}

func (m *CredentialSupplier) Get(ctx context.Context) (gcpauth.Credential, error) {
	m.GetCalls++
	if m.GetFunc == nil {
		return gcpauth.Credential{}, fmt.Errorf("GetFunc is not set")
	}
	return m.GetFunc(ctx)
}
