package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertFileContent asserts that path is a regular file holding want.
func AssertFileContent(t testing.TB, path, want string) {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "expected file to exist: %s", path)
	assert.Equal(t, want, string(data), "content of %s", path)
}

// AssertDirExists asserts that path is a directory. Junctions count.
func AssertDirExists(t testing.TB, path string) {
	t.Helper()

	info, err := os.Stat(path)
	require.NoError(t, err, "expected directory to exist: %s", path)
	assert.True(t, info.IsDir(), "expected directory but got file: %s", path)
}

// AssertNotExists asserts that nothing, not even a dangling link, is at path.
func AssertNotExists(t testing.TB, path string) {
	t.Helper()

	_, err := os.Lstat(path)
	assert.True(t, os.IsNotExist(err), "expected nothing at %s, got err=%v", path, err)
}
