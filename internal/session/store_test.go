package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarkmarket/marketctl/internal/api"
)

func TestNewStore(t *testing.T) {
	t.Run("creates directory with correct permissions", func(t *testing.T) {
		tmpDir := t.TempDir()
		sessionDir := filepath.Join(tmpDir, "session")

		store, err := NewStore(sessionDir)
		require.NoError(t, err)
		assert.NotNil(t, store)

		info, err := os.Stat(sessionDir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
	})
}

func TestStore_LoadSave(t *testing.T) {
	t.Run("missing file yields empty state", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		state, err := store.Load()
		require.NoError(t, err)
		assert.Empty(t, state.AccessToken)
		assert.Empty(t, state.RefreshToken)
		assert.Nil(t, state.User)
		assert.False(t, state.IsLoggedIn)
	})

	t.Run("round trips state", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		saved := &State{
			AccessToken:  "T1",
			RefreshToken: "R1",
			User:         &api.User{ID: "u1", Username: "alice"},
			IsLoggedIn:   true,
		}
		require.NoError(t, store.Save(saved))

		loaded, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, saved, loaded)
	})

	t.Run("state file is private", func(t *testing.T) {
		tmpDir := t.TempDir()
		store, err := NewStore(tmpDir)
		require.NoError(t, err)

		require.NoError(t, store.Save(&State{AccessToken: "T1"}))

		info, err := os.Stat(filepath.Join(tmpDir, "state.json"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("corrupt file yields ErrCorruptState", func(t *testing.T) {
		tmpDir := t.TempDir()
		store, err := NewStore(tmpDir)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "state.json"), []byte("{not json"), 0600))

		_, err = store.Load()
		assert.ErrorIs(t, err, ErrCorruptState)
	})
}

func TestStore_Clear(t *testing.T) {
	t.Run("removes persisted state", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.Save(&State{AccessToken: "T1"}))
		require.NoError(t, store.Clear())

		state, err := store.Load()
		require.NoError(t, err)
		assert.Empty(t, state.AccessToken)
	})

	t.Run("is idempotent", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.Clear())
		require.NoError(t, store.Clear())
	})
}
