package provisioning

import (
	"testing"
	"time"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleObserver_FormatEvent(t *testing.T) {
	t.Parallel()

	o := NewConsoleObserver()
	msg := o.formatEvent(Event{
		Type:    EventPhaseCompleted,
		Phase:   "disable-swap",
		Message: "completed in 120ms",
		Fields:  map[string]string{"machine": "w1"},
	})

	assert.Contains(t, msg, "phase.completed")
	assert.Contains(t, msg, "[disable-swap]")
	assert.Contains(t, msg, "completed in 120ms")
	assert.Contains(t, msg, "machine=w1")
}

func TestConsoleObserver_WithFields(t *testing.T) {
	t.Parallel()

	base := NewConsoleObserver()
	derived, ok := base.WithFields(map[string]string{"machine": "w1"}).(*ConsoleObserver)
	require.True(t, ok)

	assert.Empty(t, base.contextFields)
	assert.Equal(t, "w1", derived.contextFields["machine"])

	// Event fields win over context fields on collision.
	event := Event{Type: EventPhaseStarted, Fields: map[string]string{"machine": "override"}}
	for k, v := range derived.contextFields {
		if _, exists := event.Fields[k]; !exists {
			event.Fields[k] = v
		}
	}
	assert.Equal(t, "override", event.Fields["machine"])
}

func TestLogrObserver_Event(t *testing.T) {
	t.Parallel()

	var lines []string
	logger := funcr.New(func(prefix, args string) {
		lines = append(lines, prefix+" "+args)
	}, funcr.Options{})

	o := NewLogrObserver(logger).WithFields(map[string]string{"machine": "w1"})
	LogPhaseComplete(o, "kubeadm-init", 2*time.Second)

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "kubeadm-init")
	assert.Contains(t, lines[0], "phase.completed")
	assert.Contains(t, lines[0], "w1")
}
