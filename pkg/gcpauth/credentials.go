package gcpauth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
)

// credentialScope authorizes IAM Credentials API calls.
const credentialScope = "https://www.googleapis.com/auth/cloud-platform"

type credentialKey struct {
	ClientEmail string `json:"client_email"`
	ProjectID   string `json:"project_id"`
}

// CredentialFromJSON builds a Credential from service account key JSON.
func CredentialFromJSON(ctx context.Context, data []byte) (Credential, error) {
	creds, err := google.CredentialsFromJSON(ctx, data, credentialScope)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: parse credential JSON: %w", ErrConfiguration, err)
	}
	return credentialFromGoogle(creds)
}

// CredentialFromFile builds a Credential from a service account key file.
func CredentialFromFile(ctx context.Context, path string) (Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: read credential file: %w", ErrConfiguration, err)
	}
	return CredentialFromJSON(ctx, data)
}

// ApplicationDefaultCredential builds a Credential from application default
// credentials (GOOGLE_APPLICATION_CREDENTIALS, gcloud config, or the
// runtime environment on GCE/GAE).
func ApplicationDefaultCredential(ctx context.Context) (Credential, error) {
	creds, err := google.FindDefaultCredentials(ctx, credentialScope)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: application default credentials: %w", ErrConfiguration, err)
	}
	return credentialFromGoogle(creds)
}

func credentialFromGoogle(creds *google.Credentials) (Credential, error) {
	var key credentialKey
	if len(creds.JSON) > 0 {
		if err := json.Unmarshal(creds.JSON, &key); err != nil {
			return Credential{}, fmt.Errorf("%w: parse credential JSON: %w", ErrConfiguration, err)
		}
	}

	projectID := creds.ProjectID
	if projectID == "" {
		projectID = key.ProjectID
	}

	return Credential{
		ServiceAccountID: key.ClientEmail,
		ProjectID:        projectID,
		TokenSource:      creds.TokenSource,
	}, nil
}
