package spotclient

import (
	"os"
	"path/filepath"
	"spotfinder/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s := &Session{}
	s.Set("tok", models.Profile{ID: 3, Username: "alice", Status: models.StatusLocal, Points: 120})
	require.NoError(t, s.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "tok", loaded.Token())
	u, ok := loaded.User()
	require.True(t, ok)
	assert.Equal(t, int64(3), u.ID)
	assert.Equal(t, models.StatusLocal, u.Status)
}

func TestSession_LoadMissing(t *testing.T) {
	s, err := LoadSession(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.False(t, s.LoggedIn())
	_, ok := s.User()
	assert.False(t, ok)
}

func TestSession_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := LoadSession(path)
	assert.Error(t, err)
}

func TestSession_Clear(t *testing.T) {
	s := &Session{}
	s.Set("tok", models.Profile{ID: 1})
	assert.True(t, s.LoggedIn())

	s.Clear()
	assert.False(t, s.LoggedIn())
	_, ok := s.User()
	assert.False(t, ok)
}
