package gcpauth

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/iamcredentials/v1"
	"google.golang.org/api/option"
)

type signJWTAPI interface {
	SignJwt(ctx context.Context, name string, req *iamcredentials.SignJwtRequest) (*iamcredentials.SignJwtResponse, error)
}

type signJWTServiceFactory func(ctx context.Context) (signJWTAPI, error)

type iamSignJWTService struct {
	svc *iamcredentials.Service
}

func (s *iamSignJWTService) SignJwt(ctx context.Context, name string, req *iamcredentials.SignJwtRequest) (*iamcredentials.SignJwtResponse, error) {
	return s.svc.Projects.ServiceAccounts.SignJwt(name, req).Context(ctx).Do()
}

// IAMSigner signs JWT claim sets through the IAM Credentials API.
type IAMSigner struct {
	factory signJWTServiceFactory
}

// NewIAMSigner creates a signer that authorizes SignJwt calls with the given
// token source. A nil token source falls back to application default
// credentials unless the client options say otherwise.
func NewIAMSigner(tokenSource oauth2.TokenSource, clientOpts ...option.ClientOption) *IAMSigner {
	return newIAMSigner(func(ctx context.Context) (signJWTAPI, error) {
		opts := make([]option.ClientOption, 0, len(clientOpts)+1)
		if tokenSource != nil {
			opts = append(opts, option.WithTokenSource(tokenSource))
		}
		opts = append(opts, clientOpts...)

		svc, err := iamcredentials.NewService(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return &iamSignJWTService{svc: svc}, nil
	})
}

func newIAMSigner(factory signJWTServiceFactory) *IAMSigner {
	return &IAMSigner{factory: factory}
}

// SignJWT serializes the claims and has the service account sign them. The
// IAM Credentials service handle lives for the duration of a single call.
func (s *IAMSigner) SignJWT(ctx context.Context, projectID string, serviceAccountID string, claims ClaimSet) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("%w: marshal claims: %w", ErrSigning, err)
	}

	svc, err := s.factory(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: create IAM credentials service: %w", ErrSigning, err)
	}

	name := fmt.Sprintf("projects/%s/serviceAccounts/%s", projectID, serviceAccountID)
	resp, err := svc.SignJwt(ctx, name, &iamcredentials.SignJwtRequest{Payload: string(payload)})
	if err != nil {
		return "", fmt.Errorf("%w: sign JWT for %s: %w", ErrSigning, name, err)
	}

	if resp.SignedJwt == "" {
		return "", fmt.Errorf("%w: signing service returned an empty JWT for %s", ErrSigning, name)
	}

	return resp.SignedJwt, nil
}
