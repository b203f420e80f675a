package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrLocked is returned when another run holds the machine's lock.
var ErrLocked = errors.New("machine is locked by another provisioning run")

// Store reads and writes NodeState files under a state directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) statePath(machineID string) string {
	return filepath.Join(s.dir, machineID+".yaml")
}

func (s *Store) lockPath(machineID string) string {
	return filepath.Join(s.dir, machineID+".lock")
}

// Load returns the stored state for a machine, or nil when the machine
// has never been provisioned.
func (s *Store) Load(machineID string) (*NodeState, error) {
	data, err := os.ReadFile(s.statePath(machineID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state NodeState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file for %s: %w", machineID, err)
	}

	return &state, nil
}

// Save writes the state durably. The write goes through a temp file and
// rename so a crash never leaves a half-written state file.
func (s *Store) Save(state *NodeState) error {
	state.UpdatedAt = time.Now().UTC()

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	path := s.statePath(state.MachineID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}

// Delete removes a machine's state file. Used by reset.
func (s *Store) Delete(machineID string) error {
	if err := os.Remove(s.statePath(machineID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	return nil
}

// Lock takes the exclusive per-machine lock. It returns an unlock
// function, or ErrLocked when another run holds it.
func (s *Store) Lock(machineID string) (func(), error) {
	path := s.lockPath(machineID)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w (lock file %s)", ErrLocked, path)
		}
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}

	fmt.Fprintf(f, "pid=%d\n", os.Getpid())
	_ = f.Close()

	return func() { _ = os.Remove(path) }, nil
}
