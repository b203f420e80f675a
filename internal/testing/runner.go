package testing

import (
	"context"
	"os"
	"strings"
	"sync"
)

// RunnerResponse is a scripted reply for commands containing Match.
type RunnerResponse struct {
	Match  string
	Output string
	Err    error
}

// FakeRunner implements exec.Runner with scripted responses.
// Commands and written files are recorded for assertions.
type FakeRunner struct {
	mu        sync.Mutex
	commands  []string
	files     map[string][]byte
	responses []RunnerResponse

	// DefaultErr is returned for commands with no scripted response.
	DefaultErr error
	// WriteErr is returned from WriteFile when set.
	WriteErr error
}

// NewFakeRunner creates an empty fake runner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{files: make(map[string][]byte)}
}

// Respond scripts a response for commands containing match.
// Responses are checked in registration order; first match wins.
func (f *FakeRunner) Respond(match, output string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, RunnerResponse{Match: match, Output: output, Err: err})
}

// Run implements exec.Runner.
func (f *FakeRunner) Run(_ context.Context, command string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, command)

	for _, r := range f.responses {
		if strings.Contains(command, r.Match) {
			return r.Output, r.Err
		}
	}

	return "", f.DefaultErr
}

// WriteFile implements exec.Runner.
func (f *FakeRunner) WriteFile(_ context.Context, path string, data []byte, _ os.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.WriteErr != nil {
		return f.WriteErr
	}

	f.files[path] = append([]byte(nil), data...)
	return nil
}

// Commands returns the commands run so far.
func (f *FakeRunner) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

// Ran reports whether any executed command contains substr.
func (f *FakeRunner) Ran(substr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.commands {
		if strings.Contains(c, substr) {
			return true
		}
	}
	return false
}

// File returns the content written to path, if any.
func (f *FakeRunner) File(path string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	return data, ok
}
