package cluster

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
)

// tokenPattern is the kubeadm bootstrap token form: 6-char ID, 16-char secret.
var tokenPattern = regexp.MustCompile(`^[a-z0-9]{6}\.[a-z0-9]{16}$`)

// ErrNotBootstrapped is returned when a credential is requested before the
// control plane bootstrap has completed.
var ErrNotBootstrapped = errors.New("control plane is not bootstrapped")

// JoinCredential allows a worker to authenticate to a control plane during
// join: an opaque bootstrap token, the discovery endpoint, and the CA
// certificate hash used to verify the control plane's identity.
//
// Credentials are never persisted by kubestrap; transporting them to worker
// machines securely is the operator's responsibility. Expiry is enforced by
// the control plane, not tracked here.
type JoinCredential struct {
	Token      string `yaml:"token"`
	Endpoint   string `yaml:"endpoint"`
	CACertHash string `yaml:"ca_cert_hash"`
}

// Validate checks the credential's shape. It does not check the token
// against the control plane; only the control plane can do that.
func (c JoinCredential) Validate() error {
	if !tokenPattern.MatchString(c.Token) {
		return fmt.Errorf("token %q is not a valid bootstrap token", c.Token)
	}

	if _, _, err := net.SplitHostPort(c.Endpoint); err != nil {
		return fmt.Errorf("endpoint %q is not a valid host:port: %w", c.Endpoint, err)
	}

	if !strings.HasPrefix(c.CACertHash, "sha256:") {
		return fmt.Errorf("CA cert hash %q does not have a sha256: prefix", c.CACertHash)
	}

	return nil
}

// TokenCreator issues join tokens. Implemented by the kubeadm collaborator.
type TokenCreator interface {
	CreateJoinToken(ctx context.Context) (JoinCredential, error)
}

// BootstrapProber reports whether the local control plane bootstrap has
// completed. Implemented by the kubeadm collaborator.
type BootstrapProber interface {
	IsBootstrapped(ctx context.Context) (bool, error)
}

// Exchange produces join credentials on a bootstrapped control plane.
// It owns no state: every call asks the control plane for a fresh token,
// and previously issued tokens stay valid until the control plane expires
// them.
type Exchange struct {
	tokens TokenCreator
	prober BootstrapProber
}

// NewExchange creates a credential exchange.
func NewExchange(tokens TokenCreator, prober BootstrapProber) *Exchange {
	return &Exchange{tokens: tokens, prober: prober}
}

// Issue creates a new join credential. It fails with ErrNotBootstrapped
// when invoked before control plane bootstrap completes.
func (e *Exchange) Issue(ctx context.Context) (JoinCredential, error) {
	bootstrapped, err := e.prober.IsBootstrapped(ctx)
	if err != nil {
		return JoinCredential{}, fmt.Errorf("failed to probe bootstrap state: %w", err)
	}
	if !bootstrapped {
		return JoinCredential{}, ErrNotBootstrapped
	}

	cred, err := e.tokens.CreateJoinToken(ctx)
	if err != nil {
		return JoinCredential{}, fmt.Errorf("failed to create join token: %w", err)
	}

	if err := cred.Validate(); err != nil {
		return JoinCredential{}, fmt.Errorf("control plane returned a malformed credential: %w", err)
	}

	return cred, nil
}

// Regenerate issues a fresh credential for an operator who lost the
// original. Prior unexpired tokens remain valid.
func (e *Exchange) Regenerate(ctx context.Context) (JoinCredential, error) {
	return e.Issue(ctx)
}
