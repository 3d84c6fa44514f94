package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/eculver/vault-gcp/pkg/gcpauth"
	"github.com/spf13/cobra"
)

type loginConfig struct {
	role             string
	mountPath        string
	vaultAddr        string
	credentialsFile  string
	serviceAccountID string
	projectID        string
	jwtValidity      time.Duration
}

type runDeps struct {
	supplier  func(ctx context.Context, credentialsFile string) (gcpauth.Credential, error)
	signer    func(cred gcpauth.Credential) gcpauth.Signer
	transport func(vaultAddr string) gcpauth.LoginTransport
	stdout    io.Writer
	stderr    io.Writer
}

type loginRunner func(ctx context.Context, cfg loginConfig, deps runDeps) error

// NewRootCmd creates the root CLI command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultRunDeps(), runLogin)
}

func newRootCmd(deps runDeps, runner loginRunner) *cobra.Command {
	var cfg loginConfig

	rootCmd := &cobra.Command{
		Use:   "vault-gcp",
		Short: "Log in to Vault with GCP IAM service account credentials",
		Long: `Authenticates against Vault's gcp auth backend by having the GCP IAM
Credentials API sign a short-lived JWT for a service account and exchanging
the signed JWT for a Vault token. The token is printed to stdout.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.vaultAddr == "" {
				cfg.vaultAddr = os.Getenv("VAULT_ADDR")
			}
			return runner(context.Background(), cfg, deps)
		},
	}

	rootCmd.Flags().StringVarP(&cfg.role, "role", "r", "", "Vault role to authenticate as (required)")
	rootCmd.Flags().StringVarP(&cfg.mountPath, "mount", "m", gcpauth.DefaultMountPath, "mount path of the gcp auth backend")
	rootCmd.Flags().StringVarP(&cfg.vaultAddr, "vault-addr", "a", "", "Vault server address (defaults to VAULT_ADDR env var)")
	rootCmd.Flags().StringVarP(&cfg.credentialsFile, "credentials-file", "c", "", "service account key file (defaults to application default credentials)")
	rootCmd.Flags().StringVar(&cfg.serviceAccountID, "service-account", "", "override the service account id derived from the credential")
	rootCmd.Flags().StringVar(&cfg.projectID, "project", "", "override the project id derived from the credential")
	rootCmd.Flags().DurationVar(&cfg.jwtValidity, "jwt-validity", gcpauth.DefaultJWTValidity, "validity window of the signed JWT")
	_ = rootCmd.MarkFlagRequired("role")

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func defaultRunDeps() runDeps {
	return runDeps{
		supplier: func(ctx context.Context, credentialsFile string) (gcpauth.Credential, error) {
			if credentialsFile != "" {
				return gcpauth.CredentialFromFile(ctx, credentialsFile)
			}
			return gcpauth.ApplicationDefaultCredential(ctx)
		},
		signer: func(cred gcpauth.Credential) gcpauth.Signer {
			return gcpauth.NewIAMSigner(cred.TokenSource)
		},
		transport: func(vaultAddr string) gcpauth.LoginTransport {
			return gcpauth.NewVaultLoginClient(strings.TrimRight(vaultAddr, "/") + "/v1")
		},
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

func runLogin(ctx context.Context, cfg loginConfig, deps runDeps) error {
	if cfg.vaultAddr == "" {
		return fmt.Errorf("vault address is required (set --vault-addr or VAULT_ADDR)")
	}

	cred, err := deps.supplier(ctx, cfg.credentialsFile)
	if err != nil {
		return fmt.Errorf("failed to load GCP credential: %w", err)
	}

	loginOpts := []gcpauth.LoginOption{
		gcpauth.WithRole(cfg.role),
		gcpauth.WithCredential(cred),
		gcpauth.WithMountPath(cfg.mountPath),
		gcpauth.WithJWTValidity(cfg.jwtValidity),
	}
	if cfg.serviceAccountID != "" {
		loginOpts = append(loginOpts, gcpauth.WithServiceAccountID(cfg.serviceAccountID))
	}
	if cfg.projectID != "" {
		loginOpts = append(loginOpts, gcpauth.WithProjectID(cfg.projectID))
	}

	opts, err := gcpauth.NewLoginOptions(loginOpts...)
	if err != nil {
		return err
	}

	authenticator := gcpauth.NewAuthenticator(opts, deps.signer(cred), deps.transport(cfg.vaultAddr))

	fmt.Fprintf(deps.stderr, "Logging in to %s as role %q...\n", cfg.vaultAddr, cfg.role)

	token, err := authenticator.Login(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.stderr, "Login succeeded (renewable=%t, lease=%s)\n", token.Renewable, token.LeaseDuration)
	fmt.Fprintln(deps.stdout, token.Token)

	return nil
}
