package gcpauth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (f fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return f.doFunc(req)
}

func TestVaultLoginClientDoLogin(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		responseBody  string
		statusCode    int
		wantErrSubstr string
		assertSuccess func(t *testing.T, token SessionToken)
	}{
		{
			name:         "success",
			responseBody: `{"auth":{"client_token":"my-token","renewable":true,"lease_duration":10}}`,
			statusCode:   http.StatusOK,
			assertSuccess: func(t *testing.T, token SessionToken) {
				t.Helper()
				if token.Token != "my-token" {
					t.Fatalf("unexpected token: %q", token.Token)
				}
				if !token.Renewable {
					t.Fatal("expected renewable token")
				}
				if token.LeaseDuration != 10*time.Second {
					t.Fatalf("unexpected lease duration: %s", token.LeaseDuration)
				}
			},
		},
		{
			name:          "non-200 response",
			responseBody:  `{"errors":["permission denied"]}`,
			statusCode:    http.StatusForbidden,
			wantErrSubstr: "cannot login using GCP-IAM: HTTP 403",
		},
		{
			name:          "invalid json response",
			responseBody:  "{not-json}",
			statusCode:    http.StatusOK,
			wantErrSubstr: "parse login response",
		},
		{
			name:          "missing client token",
			responseBody:  `{"auth":{"renewable":true,"lease_duration":10}}`,
			statusCode:    http.StatusOK,
			wantErrSubstr: "login response contains no client token",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				if r.URL.Path != "/auth/gcp/login" {
					t.Fatalf("unexpected path: %s", r.URL.Path)
				}

				var req loginRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Fatalf("decode request: %v", err)
				}
				if req.Role != "dev-role" {
					t.Fatalf("unexpected role: %q", req.Role)
				}
				if req.JWT != "my-jwt" {
					t.Fatalf("unexpected jwt: %q", req.JWT)
				}

				w.WriteHeader(tc.statusCode)
				_, _ = w.Write([]byte(tc.responseBody))
			}))
			defer server.Close()

			client := newVaultLoginClient(server.Client(), server.URL)
			token, err := client.DoLogin(context.Background(), "GCP-IAM", "my-jwt", "gcp", "dev-role")

			if tc.wantErrSubstr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q but got nil", tc.wantErrSubstr)
				}
				if !errors.Is(err, ErrAuthentication) {
					t.Fatalf("expected ErrAuthentication, got %v", err)
				}
				if !strings.Contains(err.Error(), tc.wantErrSubstr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErrSubstr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("DoLogin returned error: %v", err)
			}
			if tc.assertSuccess != nil {
				tc.assertSuccess(t, token)
			}
		})
	}
}

func TestVaultLoginClientRequestBody(t *testing.T) {
	t.Parallel()

	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		gotBody = string(body)
		_, _ = w.Write([]byte(`{"auth":{"client_token":"my-token","renewable":true,"lease_duration":10}}`))
	}))
	defer server.Close()

	client := newVaultLoginClient(server.Client(), server.URL)
	if _, err := client.DoLogin(context.Background(), "GCP-IAM", "my-jwt", "gcp", "dev-role"); err != nil {
		t.Fatalf("DoLogin returned error: %v", err)
	}

	if gotBody != `{"role":"dev-role","jwt":"my-jwt"}` {
		t.Fatalf("unexpected request body: %s", gotBody)
	}
}

func TestVaultLoginClientMountPathTrimming(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"auth":{"client_token":"my-token"}}`))
	}))
	defer server.Close()

	client := newVaultLoginClient(server.Client(), server.URL+"/")
	if _, err := client.DoLogin(context.Background(), "GCP-IAM", "my-jwt", "/custom-gcp/", "dev-role"); err != nil {
		t.Fatalf("DoLogin returned error: %v", err)
	}

	if gotPath != "/auth/custom-gcp/login" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
}

func TestVaultLoginClientNetworkError(t *testing.T) {
	t.Parallel()

	client := newVaultLoginClient(fakeHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("network error")
		},
	}, "https://vault.example.com/v1")

	_, err := client.DoLogin(context.Background(), "GCP-IAM", "my-jwt", "gcp", "dev-role")
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if !strings.Contains(err.Error(), "cannot login using GCP-IAM: network error") {
		t.Fatalf("unexpected error: %v", err)
	}
}
