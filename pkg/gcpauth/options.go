package gcpauth

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultMountPath is the default Vault mount path of the gcp auth backend.
	DefaultMountPath = "gcp"

	// DefaultJWTValidity is the default validity window of the signed JWT.
	DefaultJWTValidity = 15 * time.Minute
)

// LoginOptions are the settings for a GCP IAM login. Build via
// NewLoginOptions; the value is immutable afterwards and safe to share
// across concurrent login attempts.
type LoginOptions struct {
	role        string
	mountPath   string
	jwtValidity time.Duration

	credential    Credential
	hasCredential bool

	serviceAccountID ServiceAccountIDResolver
	projectID        ProjectIDResolver

	now func() time.Time
}

// LoginOption configures LoginOptions under construction.
type LoginOption func(*LoginOptions)

// WithRole sets the Vault role to authenticate as. Required.
func WithRole(role string) LoginOption {
	return func(o *LoginOptions) {
		o.role = role
	}
}

// WithCredential sets the service account credential. The default resolvers
// derive the service account id and project id from it.
func WithCredential(cred Credential) LoginOption {
	return func(o *LoginOptions) {
		o.credential = cred
		o.hasCredential = true
	}
}

// WithMountPath sets the Vault mount path of the gcp auth backend.
func WithMountPath(path string) LoginOption {
	return func(o *LoginOptions) {
		o.mountPath = path
	}
}

// WithJWTValidity sets how long the signed JWT stays valid.
func WithJWTValidity(validity time.Duration) LoginOption {
	return func(o *LoginOptions) {
		o.jwtValidity = validity
	}
}

// WithServiceAccountID pins the service account id to a static value,
// overriding the credential's intrinsic value.
func WithServiceAccountID(serviceAccountID string) LoginOption {
	return WithServiceAccountIDResolver(func(Credential) (string, error) {
		return serviceAccountID, nil
	})
}

// WithServiceAccountIDResolver installs a custom service account id
// resolution strategy.
func WithServiceAccountIDResolver(resolver ServiceAccountIDResolver) LoginOption {
	return func(o *LoginOptions) {
		o.serviceAccountID = resolver
	}
}

// WithProjectID pins the project id to a static value, overriding the
// credential's intrinsic value.
func WithProjectID(projectID string) LoginOption {
	return WithProjectIDResolver(func(Credential) (string, error) {
		return projectID, nil
	})
}

// WithProjectIDResolver installs a custom project id resolution strategy.
func WithProjectIDResolver(resolver ProjectIDResolver) LoginOption {
	return func(o *LoginOptions) {
		o.projectID = resolver
	}
}

// WithClock sets the time source used to compute the JWT expiry.
func WithClock(now func() time.Time) LoginOption {
	return func(o *LoginOptions) {
		o.now = now
	}
}

// NewLoginOptions validates the supplied options and returns an immutable
// LoginOptions value. A role is required, and either a credential or
// explicit service account and project resolvers must be supplied.
func NewLoginOptions(opts ...LoginOption) (*LoginOptions, error) {
	o := &LoginOptions{
		mountPath:   DefaultMountPath,
		jwtValidity: DefaultJWTValidity,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.role == "" {
		return nil, fmt.Errorf("%w: role must not be empty", ErrConfiguration)
	}
	if o.jwtValidity <= 0 {
		return nil, fmt.Errorf("%w: JWT validity must be positive, got %s", ErrConfiguration, o.jwtValidity)
	}
	if o.mountPath == "" {
		return nil, fmt.Errorf("%w: mount path must not be empty", ErrConfiguration)
	}
	if o.now == nil {
		return nil, fmt.Errorf("%w: clock must not be nil", ErrConfiguration)
	}
	if !o.hasCredential && (o.serviceAccountID == nil || o.projectID == nil) {
		return nil, fmt.Errorf("%w: a credential or explicit service account and project resolvers are required", ErrConfiguration)
	}

	if o.serviceAccountID == nil {
		o.serviceAccountID = credentialServiceAccountID
	}
	if o.projectID == nil {
		o.projectID = credentialProjectID
	}

	return o, nil
}

// Role returns the configured Vault role.
func (o *LoginOptions) Role() string { return o.role }

// MountPath returns the configured Vault mount path.
func (o *LoginOptions) MountPath() string { return o.mountPath }

// JWTValidity returns the configured JWT validity window.
func (o *LoginOptions) JWTValidity() time.Duration { return o.jwtValidity }

// Credential returns the configured credential.
func (o *LoginOptions) Credential() Credential { return o.credential }

func (o *LoginOptions) resolveServiceAccountID() (string, error) {
	id, err := o.serviceAccountID(o.credential)
	if err != nil {
		return "", fmt.Errorf("%w: service account id: %w", ErrResolution, err)
	}
	if id == "" {
		return "", fmt.Errorf("%w: service account id resolver returned an empty value", ErrResolution)
	}
	return id, nil
}

func (o *LoginOptions) resolveProjectID() (string, error) {
	id, err := o.projectID(o.credential)
	if err != nil {
		return "", fmt.Errorf("%w: project id: %w", ErrResolution, err)
	}
	if id == "" {
		return "", fmt.Errorf("%w: project id resolver returned an empty value", ErrResolution)
	}
	return id, nil
}

func credentialServiceAccountID(cred Credential) (string, error) {
	if cred.ServiceAccountID == "" {
		return "", errors.New("credential has no service account id")
	}
	return cred.ServiceAccountID, nil
}

func credentialProjectID(cred Credential) (string, error) {
	if cred.ProjectID == "" {
		return "", errors.New("credential has no project id")
	}
	return cred.ProjectID, nil
}
