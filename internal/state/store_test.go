package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissing(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	s, err := store.Load("never-seen")

	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestStore_SaveAndLoad(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	s := NewNodeState("cp-1", "demo", "control-plane")
	require.NoError(t, s.MarkCompleted("disable-swap", testCatalog))
	require.NoError(t, store.Save(s))

	loaded, err := store.Load("cp-1")

	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "cp-1", loaded.MachineID)
	assert.Equal(t, "demo", loaded.ClusterName)
	assert.Equal(t, []string{"disable-swap"}, loaded.CompletedPhases)
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(NewNodeState("cp-1", "demo", "control-plane")))
	require.NoError(t, store.Delete("cp-1"))
	require.NoError(t, store.Delete("cp-1"), "deleting absent state is not an error")

	s, err := store.Load("cp-1")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestStore_Lock(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	unlock, err := store.Lock("cp-1")
	require.NoError(t, err)

	_, err = store.Lock("cp-1")
	require.ErrorIs(t, err, ErrLocked)

	// Another machine is unaffected.
	unlock2, err := store.Lock("worker-1")
	require.NoError(t, err)
	unlock2()

	unlock()

	unlock3, err := store.Lock("cp-1")
	require.NoError(t, err)
	unlock3()
}
