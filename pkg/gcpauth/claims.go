package gcpauth

import "time"

// audiencePrefix is the audience format Vault's gcp auth backend expects for
// IAM-type logins.
const audiencePrefix = "vault/"

// buildClaims produces the JWT payload for a single login attempt. The
// expiry is whole epoch seconds; now must come from the configured clock.
func buildClaims(opts *LoginOptions, serviceAccountID string, now time.Time) ClaimSet {
	return ClaimSet{
		Sub: serviceAccountID,
		Aud: audiencePrefix + opts.role,
		Exp: now.Add(opts.jwtValidity).Unix(),
	}
}
