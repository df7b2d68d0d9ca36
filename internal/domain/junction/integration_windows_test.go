//go:build windows

package junction_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/junction/internal/adapters/devicecontrol"
	"github.com/felixgeelhaar/junction/internal/adapters/filesystem"
	"github.com/felixgeelhaar/junction/internal/domain/junction"
	"github.com/felixgeelhaar/junction/internal/domain/platform"
	"github.com/felixgeelhaar/junction/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRealManager() *junction.Manager {
	return junction.NewManager(filesystem.NewRealFileSystem(), devicecontrol.New(platform.Detect()))
}

func TestIntegration_WriteThroughJunction(t *testing.T) {
	m := newRealManager()
	root := t.TempDir()
	target := testutil.WriteTempDir(t, root, "Target")
	link := filepath.Join(root, "Link")

	require.NoError(t, m.Create(link, target, false))

	exists, err := m.Exists(link)
	require.NoError(t, err)
	assert.True(t, exists)

	got, ok, err := m.GetTarget(link)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, target, got)

	testutil.WriteTempFile(t, link, "TestFile.txt", "junction")
	testutil.AssertFileContent(t, filepath.Join(target, "TestFile.txt"), "junction")

	require.NoError(t, m.Delete(link))

	testutil.AssertNotExists(t, link)
	testutil.AssertFileContent(t, filepath.Join(target, "TestFile.txt"), "junction")
}

func TestIntegration_OverwriteRetargets(t *testing.T) {
	m := newRealManager()
	root := t.TempDir()
	target1 := filepath.Join(root, "Target1")
	target2 := filepath.Join(root, "Target2")
	link := filepath.Join(root, "Link")
	require.NoError(t, os.Mkdir(target1, 0o755))
	require.NoError(t, os.Mkdir(target2, 0o755))

	require.NoError(t, m.Create(link, target1, false))
	require.ErrorIs(t, m.Create(link, target2, false), junction.ErrAlreadyExists)
	require.NoError(t, m.Create(link, target2, true))

	got, ok, err := m.GetTarget(link)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, target2, got)

	require.NoError(t, m.Delete(link))
}

func TestIntegration_DeletePlainDirectoryFails(t *testing.T) {
	m := newRealManager()
	dir := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.Mkdir(dir, 0o755))

	err := m.Delete(dir)
	require.ErrorIs(t, err, junction.ErrOperationFailed)

	errno, ok := junction.Errno(err)
	require.True(t, ok)
	assert.Equal(t, uint32(4390), uint32(errno))
	testutil.AssertDirExists(t, dir)
}

func TestIntegration_NonEmptyDirectoryIsRejected(t *testing.T) {
	m := newRealManager()
	root := t.TempDir()
	target := filepath.Join(root, "Target")
	link := filepath.Join(root, "Full")
	require.NoError(t, os.Mkdir(target, 0o755))
	require.NoError(t, os.Mkdir(link, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(link, "keep.txt"), nil, 0o644))

	err := m.Create(link, target, true)
	require.ErrorIs(t, err, junction.ErrOperationFailed)

	l, err := m.Inspect(link)
	require.NoError(t, err)
	assert.Equal(t, junction.StatePlainDirectory, l.State)
}

func TestIntegration_DanglingJunction(t *testing.T) {
	m := newRealManager()
	root := t.TempDir()
	target := filepath.Join(root, "Target")
	link := filepath.Join(root, "Link")
	require.NoError(t, os.Mkdir(target, 0o755))
	require.NoError(t, m.Create(link, target, false))
	require.NoError(t, os.Remove(target))

	l, err := m.Inspect(link)
	require.NoError(t, err)
	assert.Equal(t, junction.StateJunction, l.State)
	assert.Equal(t, target, l.Target)

	require.NoError(t, m.Delete(link))
}
