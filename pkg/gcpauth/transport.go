package gcpauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type loginHTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// VaultLoginClient posts signed JWTs to Vault's login endpoint.
type VaultLoginClient struct {
	client  loginHTTPClient
	baseURL string
}

// NewVaultLoginClient creates a login client for the given Vault API base
// URL, including the API version prefix (e.g. https://vault:8200/v1).
func NewVaultLoginClient(baseURL string) *VaultLoginClient {
	return newVaultLoginClient(&http.Client{Timeout: 15 * time.Second}, baseURL)
}

func newVaultLoginClient(client loginHTTPClient, baseURL string) *VaultLoginClient {
	return &VaultLoginClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type loginRequest struct {
	Role string `json:"role"`
	JWT  string `json:"jwt"`
}

type loginResponse struct {
	Auth struct {
		ClientToken   string `json:"client_token"`
		Renewable     bool   `json:"renewable"`
		LeaseDuration int64  `json:"lease_duration"`
	} `json:"auth"`
}

// DoLogin exchanges the signed JWT for a session token at <mount>/login.
// The method identifies the auth method in failure messages.
func (c *VaultLoginClient) DoLogin(ctx context.Context, method string, jwt string, mountPath string, role string) (SessionToken, error) {
	body, err := json.Marshal(loginRequest{Role: role, JWT: jwt})
	if err != nil {
		return SessionToken{}, fmt.Errorf("%w: marshal login request: %w", ErrAuthentication, err)
	}

	loginURL := fmt.Sprintf("%s/auth/%s/login", c.baseURL, strings.Trim(mountPath, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, bytes.NewReader(body))
	if err != nil {
		return SessionToken{}, fmt.Errorf("%w: build login request: %w", ErrAuthentication, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return SessionToken{}, fmt.Errorf("%w: cannot login using %s: %w", ErrAuthentication, method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return SessionToken{}, fmt.Errorf("%w: read login response: %w", ErrAuthentication, err)
	}

	if resp.StatusCode != http.StatusOK {
		return SessionToken{}, fmt.Errorf("%w: cannot login using %s: HTTP %d: %s", ErrAuthentication, method, resp.StatusCode, string(respBody))
	}

	var loginResp loginResponse
	if err := json.Unmarshal(respBody, &loginResp); err != nil {
		return SessionToken{}, fmt.Errorf("%w: parse login response: %w", ErrAuthentication, err)
	}

	if loginResp.Auth.ClientToken == "" {
		return SessionToken{}, fmt.Errorf("%w: login response contains no client token", ErrAuthentication)
	}

	return SessionToken{
		Token:         loginResp.Auth.ClientToken,
		Renewable:     loginResp.Auth.Renewable,
		LeaseDuration: time.Duration(loginResp.Auth.LeaseDuration) * time.Second,
	}, nil
}
