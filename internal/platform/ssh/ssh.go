package ssh

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/imamik/kubestrap/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 12
	defaultRetryDelay  = 5 * time.Second
	defaultMaxDelay    = 10 * time.Second
)

// Config holds SSH runner configuration.
type Config struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxRetries is the maximum number of connection retry attempts.
	// If zero, defaultMaxRetries is used.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// HostKeyCallback handles host key verification.
	// If nil, ssh.InsecureIgnoreHostKey() is used (suitable for machines
	// being provisioned from scratch). Provide proper verification for
	// persistent environments.
	HostKeyCallback ssh.HostKeyCallback
}

// Runner executes commands on a remote machine via SSH.
// It parses the private key once during construction and
// creates connections on-demand per call.
type Runner struct {
	config *Config
	signer ssh.Signer
}

// NewRunner creates a new SSH runner and validates the private key.
func NewRunner(cfg *Config) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	// Copy config to avoid mutating caller's struct
	configCopy := *cfg

	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultMaxRetries
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // Default for machines provisioned from scratch
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Runner{
		config: &configCopy,
		signer: signer,
	}, nil
}

// Run executes a command on the remote host and returns its combined output.
func (r *Runner) Run(ctx context.Context, command string) (string, error) {
	client, err := r.connect(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	return r.runCommand(client, command, nil)
}

// WriteFile writes data to path on the remote host with the given mode.
// Parent directories are created as needed. The data is streamed over
// the session's stdin so arbitrary content survives shell quoting.
func (r *Runner) WriteFile(ctx context.Context, filePath string, data []byte, perm os.FileMode) error {
	client, err := r.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	command := fmt.Sprintf("mkdir -p %q && cat > %q && chmod %o %q",
		path.Dir(filePath), filePath, perm.Perm(), filePath)

	if _, err := r.runCommand(client, command, data); err != nil {
		return fmt.Errorf("failed to write %s on %s: %w", filePath, r.config.Host, err)
	}

	return nil
}

// connect establishes the SSH connection with retry logic.
func (r *Runner) connect(ctx context.Context) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User: r.config.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(r.signer),
		},
		HostKeyCallback: r.config.HostKeyCallback,
		Timeout:         r.config.DialTimeout,
	}

	addr := fmt.Sprintf("%s:%d", r.config.Host, r.config.Port)
	var client *ssh.Client

	// Freshly rebooted machines can take a while to accept connections
	err := retry.WithExponentialBackoff(ctx, func() error {
		var dialErr error
		client, dialErr = ssh.Dial("tcp", addr, config)
		return dialErr
	},
		retry.WithMaxRetries(r.config.MaxRetries),
		retry.WithInitialDelay(r.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s after %d retry attempts: %w",
			addr, r.config.MaxRetries, err)
	}

	return client, nil
}

// runCommand executes a command on an established SSH connection.
func (r *Runner) runCommand(client *ssh.Client, command string, stdin []byte) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session on %s: %w", r.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	if stdin != nil {
		session.Stdin = bytes.NewReader(stdin)
	}

	output, err := session.CombinedOutput(command)
	if err != nil {
		return string(output), fmt.Errorf("command failed on %s: %w\nCommand: %s\nOutput: %s",
			r.config.Host, err, command, string(output))
	}

	return string(output), nil
}
