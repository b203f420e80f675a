package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	PhaseApply        time.Duration // Timeout for a single phase apply
	Converge          time.Duration // Timeout for cluster convergence after provisioning
	PollInterval      time.Duration // Interval between convergence polls
	TokenIssue        time.Duration // Timeout for join token issuance
	RetryMaxAttempts  int           // Maximum number of retry attempts
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - KUBESTRAP_TIMEOUT_PHASE_APPLY (default: 10m)
//   - KUBESTRAP_TIMEOUT_CONVERGE (default: 10m)
//   - KUBESTRAP_POLL_INTERVAL (default: 5s)
//   - KUBESTRAP_TIMEOUT_TOKEN_ISSUE (default: 60s)
//   - KUBESTRAP_RETRY_MAX_ATTEMPTS (default: 5)
//   - KUBESTRAP_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		PhaseApply:        parseDuration("KUBESTRAP_TIMEOUT_PHASE_APPLY", 10*time.Minute),
		Converge:          parseDuration("KUBESTRAP_TIMEOUT_CONVERGE", 10*time.Minute),
		PollInterval:      parseDuration("KUBESTRAP_POLL_INTERVAL", 5*time.Second),
		TokenIssue:        parseDuration("KUBESTRAP_TIMEOUT_TOKEN_ISSUE", 60*time.Second),
		RetryMaxAttempts:  parseInt("KUBESTRAP_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("KUBESTRAP_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
