package workdir_test

import (
	"path/filepath"
	"testing"

	"github.com/alkime/voiceover/internal/workdir"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs_DefaultUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	root := filepath.Join(home, ".voiceover")

	got, err := workdir.Root()
	require.NoError(t, err)
	assert.Equal(t, root, got)

	state, err := workdir.StateDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "state"), state)

	downloads, err := workdir.DownloadDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "downloads"), downloads)

	auth, err := workdir.AuthPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "state", "auth.json"), auth)

	logPath, err := workdir.LogPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "state", "voiceover.log"), logPath)
}

func TestDirs_Overrides(t *testing.T) {
	state, err := workdir.StateDir("/tmp/vo-state")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/vo-state", state)

	downloads, err := workdir.DownloadDir("/tmp/vo-dl")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/vo-dl", downloads)

	logPath, err := workdir.LogPath("/tmp/vo-state")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/vo-state/voiceover.log", logPath)
}

func TestPrep(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, workdir.Prep(fs, "/a/b/c"))

	ok, err := afero.DirExists(fs, "/a/b/c")
	require.NoError(t, err)
	assert.True(t, ok)

	// idempotent
	require.NoError(t, workdir.Prep(fs, "/a/b/c"))
}
