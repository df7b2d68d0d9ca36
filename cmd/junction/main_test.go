package main

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/junction/internal/app"
	"github.com/felixgeelhaar/junction/internal/domain/platform"
	"github.com/felixgeelhaar/junction/internal/ports"
	"github.com/felixgeelhaar/junction/internal/testutil"
	"github.com/felixgeelhaar/junction/internal/testutil/mocks"
)

var (
	linkPath   = filepath.Clean("/work/link")
	targetPath = filepath.Clean("/work/target")
)

type cliEnv struct {
	fs *mocks.FileSystem
	dc *mocks.DeviceControl
}

// newCLIEnv points every command at an in-memory filesystem holding
// /work/target.
func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	fs := mocks.NewFileSystem()
	fs.AddDir(targetPath)
	dc := mocks.NewDeviceControl(fs)

	orig := newApp
	newApp = func(out io.Writer, log ports.Logger) *app.Junction {
		return app.New(out,
			app.WithLogger(log),
			app.WithFileSystem(fs),
			app.WithDeviceControl(dc),
			app.WithPlatform(platform.New(platform.OSWindows, "amd64", platform.EnvNative, "10.0.22631")),
		)
	}
	t.Cleanup(func() {
		newApp = orig
		assert.Zero(t, dc.OpenHandles(), "handles left open")
	})
	return &cliEnv{fs: fs, dc: dc}
}

// resetFlags restores every flag variable to its default between runs.
func resetFlags() {
	cfgFile, verbose, logFormat = "", false, ""
	createForce = false
	existsQuiet = false
	statusJSON = false
	applyFile, applyDryRun, applyForce = "", false, false
	mcpHTTP = ""
}

// runCLI executes args against rootCmd and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs([]string{})
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "junction", rootCmd.Use)
	assert.Equal(t, "Manage NTFS directory junctions", rootCmd.Short)

	flags := rootCmd.PersistentFlags()
	for _, name := range []string{"config", "verbose", "log-format"} {
		assert.NotNil(t, flags.Lookup(name), name)
	}
	assert.Equal(t, "v", flags.Lookup("verbose").Shorthand)

	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"create", "delete", "exists", "target", "status", "apply", "mcp", "version"} {
		assert.True(t, names[name], "missing subcommand %s", name)
	}
}

func TestVersionCommand_Output(t *testing.T) {
	originalVersion, originalCommit, originalBuildDate := version, commit, buildDate
	version, commit, buildDate = "1.0.0", "abc123", "2026-01-01"
	defer func() {
		version, commit, buildDate = originalVersion, originalCommit, originalBuildDate
	}()

	out, _, err := runCLI(t, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "junction 1.0.0")
	assert.Contains(t, out, "commit: abc123")
	assert.Contains(t, out, "built:  2026-01-01")
}

func TestCreateAndDelete(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := runCLI(t, "create", linkPath, targetPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Created junction")
	_, hasData := env.fs.ReparseData(linkPath)
	assert.True(t, hasData)

	out, _, err = runCLI(t, "delete", linkPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted")
	assert.False(t, env.fs.Exists(linkPath))
}

func TestCreate_ExistingDirectoryNeedsForce(t *testing.T) {
	env := newCLIEnv(t)
	env.fs.AddDir(linkPath)

	_, _, err := runCLI(t, "create", linkPath, targetPath)
	require.Error(t, err)
	assert.Contains(t, formatError(err), "Suggestion: Pass --force")

	_, _, err = runCLI(t, "create", "--force", linkPath, targetPath)
	require.NoError(t, err)
	_, hasData := env.fs.ReparseData(linkPath)
	assert.True(t, hasData)
}

func TestCreate_OverwriteFromConfig(t *testing.T) {
	env := newCLIEnv(t)
	env.fs.AddDir(linkPath)
	cfg := testutil.WriteTempFile(t, t.TempDir(), "junction.toml", "overwrite = true\n")

	_, _, err := runCLI(t, "--config", cfg, "create", linkPath, targetPath)
	require.NoError(t, err)
	_, hasData := env.fs.ReparseData(linkPath)
	assert.True(t, hasData)
}

func TestDefaultConfigFromWorkingDirectory(t *testing.T) {
	env := newCLIEnv(t)
	dir := t.TempDir()
	testutil.WriteTempFile(t, dir, "junction.ini", "[junction]\nmanifest = links.yaml\n")
	testutil.ChangeDir(t, dir)

	// The manifest path is anchored on the real config dir, which the
	// in-memory filesystem does not have.
	_, _, err := runCLI(t, "apply")
	require.Error(t, err)
	assert.Contains(t, formatError(err), "links.yaml")
	assert.Empty(t, env.dc.Sent())
}

func TestInvalidConfigFile(t *testing.T) {
	newCLIEnv(t)
	cfg := testutil.WriteTempFile(t, t.TempDir(), "junction.yaml", "log_level: loud\nlog_format: xml\n")

	_, _, err := runCLI(t, "--config", cfg, "exists", linkPath)
	require.Error(t, err)
	assert.Contains(t, formatError(err), "2 errors occurred")
}

func TestCreate_WrongArgs(t *testing.T) {
	newCLIEnv(t)

	_, _, err := runCLI(t, "create", linkPath)
	assert.Error(t, err)
}

func TestExists(t *testing.T) {
	newCLIEnv(t)

	out, _, err := runCLI(t, "exists", linkPath)
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	out, _, err = runCLI(t, "exists", "--quiet", linkPath)
	assert.ErrorIs(t, err, errSilentFailure)
	assert.Empty(t, out)

	_, _, err = runCLI(t, "create", linkPath, targetPath)
	require.NoError(t, err)

	out, _, err = runCLI(t, "exists", linkPath)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, _, err = runCLI(t, "exists", "-q", linkPath)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestTarget(t *testing.T) {
	newCLIEnv(t)

	out, _, err := runCLI(t, "target", targetPath)
	assert.ErrorIs(t, err, errSilentFailure)
	assert.Empty(t, out)

	_, _, err = runCLI(t, "create", linkPath, targetPath)
	require.NoError(t, err)

	out, _, err = runCLI(t, "target", linkPath)
	require.NoError(t, err)
	assert.Equal(t, targetPath+"\n", out)
}

func TestStatus(t *testing.T) {
	env := newCLIEnv(t)
	env.fs.AddFile("/work/notes.txt", "x")
	_, _, err := runCLI(t, "create", linkPath, targetPath)
	require.NoError(t, err)

	out, _, err := runCLI(t, "status", linkPath, targetPath, filepath.Clean("/work/notes.txt"), filepath.Clean("/work/none"))
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
	require.Len(t, lines, 5)
	assert.Contains(t, string(lines[0]), "PATH")
	assert.Contains(t, string(lines[1]), "junction")
	assert.Contains(t, string(lines[1]), targetPath)
	assert.Contains(t, string(lines[2]), "directory")
	assert.Contains(t, string(lines[3]), "file")
	assert.Contains(t, string(lines[4]), "absent")
}

func TestStatus_JSON(t *testing.T) {
	newCLIEnv(t)

	out, _, err := runCLI(t, "status", "--json", targetPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"state": "directory"`)
	assert.NotContains(t, out, `"target"`)
}

func TestApply(t *testing.T) {
	env := newCLIEnv(t)
	manifest := filepath.Clean("/work/links.yaml")
	env.fs.AddFile(manifest, "links:\n  - {link: a, target: target}\n  - {link: b, target: target}\n")

	out, _, err := runCLI(t, "apply", "-f", manifest, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry Run")
	assert.Contains(t, out, "2 planned")
	assert.False(t, env.fs.Exists("/work/a"))

	out, _, err = runCLI(t, "apply", "-f", manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "2 created")
	assert.True(t, env.fs.Exists("/work/a"))

	out, _, err = runCLI(t, "apply", "-f", manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "No changes needed")
}

func TestApply_ConflictFails(t *testing.T) {
	env := newCLIEnv(t)
	manifest := filepath.Clean("/work/links.yaml")
	env.fs.AddFile(manifest, "links:\n  - {link: a, target: target}\n")
	env.fs.AddFile("/work/a", "file in the way")

	out, _, err := runCLI(t, "apply", "-f", manifest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 conflict")
	assert.Contains(t, out, "a file exists at the link path")
}

func TestApply_NoManifest(t *testing.T) {
	newCLIEnv(t)

	_, _, err := runCLI(t, "apply")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no manifest")
}

func TestLogging_VerboseJSON(t *testing.T) {
	newCLIEnv(t)

	_, stderr, err := runCLI(t, "-v", "--log-format", "json", "create", linkPath, targetPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"junction created"`)
	assert.Contains(t, stderr, `"level":"info"`)
}

func TestLogging_InvalidFormat(t *testing.T) {
	newCLIEnv(t)

	_, _, err := runCLI(t, "--log-format", "xml", "exists", linkPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--log-format")
}

func TestFormatError_Verbose(t *testing.T) {
	env := newCLIEnv(t)
	env.fs.AddFile(linkPath, "file")

	_, _, err := runCLI(t, "-v", "delete", linkPath)
	require.Error(t, err)

	msg := formatError(err)
	assert.Contains(t, msg, linkPath)
	assert.Contains(t, msg, "Suggestion:")

	var buf bytes.Buffer
	printErrorTo(&buf, err)
	assert.Contains(t, buf.String(), "Error: ")
}

func TestMCPCommand_Flags(t *testing.T) {
	flag := mcpCmd.Flags().Lookup("http")
	require.NotNil(t, flag)
	assert.Empty(t, flag.DefValue)
	assert.Contains(t, mcpCmd.Long, "junction_status")
	assert.NoError(t, mcpCmd.Args(mcpCmd, nil))
	assert.Error(t, mcpCmd.Args(mcpCmd, []string{"extra"}))
}
