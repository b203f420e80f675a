package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadTimeouts_Defaults(t *testing.T) {
	timeouts := LoadTimeouts()

	assert.Equal(t, 10*time.Minute, timeouts.PhaseApply)
	assert.Equal(t, 10*time.Minute, timeouts.Converge)
	assert.Equal(t, 5*time.Second, timeouts.PollInterval)
	assert.Equal(t, 60*time.Second, timeouts.TokenIssue)
	assert.Equal(t, 5, timeouts.RetryMaxAttempts)
	assert.Equal(t, 1*time.Second, timeouts.RetryInitialDelay)
}

func TestLoadTimeouts_FromEnvironment(t *testing.T) {
	t.Setenv("KUBESTRAP_TIMEOUT_CONVERGE", "3m")
	t.Setenv("KUBESTRAP_RETRY_MAX_ATTEMPTS", "2")

	timeouts := LoadTimeouts()

	assert.Equal(t, 3*time.Minute, timeouts.Converge)
	assert.Equal(t, 2, timeouts.RetryMaxAttempts)
}

func TestLoadTimeouts_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("KUBESTRAP_TIMEOUT_CONVERGE", "soon")
	t.Setenv("KUBESTRAP_RETRY_MAX_ATTEMPTS", "many")

	timeouts := LoadTimeouts()

	assert.Equal(t, 10*time.Minute, timeouts.Converge)
	assert.Equal(t, 5, timeouts.RetryMaxAttempts)
}
