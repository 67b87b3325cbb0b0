package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/cdn-bundle/internal/model"
)

// setupMonorepo creates a tagged Git repository with one well-formed
// package (button) and one without dist output (card), plus a config
// file pointing the tool at it. Returns the repo root and config path.
func setupMonorepo(t *testing.T, tag string) (string, string) {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	pkgs := filepath.Join(root, "packages", "web-components")
	scripts := filepath.Join(root, "sites", "site-utilities", "statics", "assets", "scripts")

	button := filepath.Join(pkgs, "button", "dist")
	require.NoError(t, os.MkdirAll(button, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(button, "button.js"), []byte("export const button = 1;\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(button, "button.min.js"), []byte("export const button=1;"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(pkgs, "card"), 0o755))

	require.NoError(t, os.MkdirAll(filepath.Join(scripts, "button"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(scripts, "card"), 0o755))

	runTestGit(t, root, "init")
	runTestGit(t, root, "config", "user.email", "test@example.com")
	runTestGit(t, root, "config", "user.name", "Test User")
	runTestGit(t, root, "config", "tag.gpgSign", "false")
	runTestGit(t, root, "add", ".")
	runTestGit(t, root, "commit", "--allow-empty", "-m", "initial commit")
	if tag != "" {
		runTestGit(t, root, "tag", "-a", tag, "-m", "release")
	}

	cfgPath := filepath.Join(t.TempDir(), "cdn-bundle.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("root_dir: "+root+"\n"), 0o644))

	return root, cfgPath
}

func runTestGit(t *testing.T, dir string, args ...string) {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// TestPublish_Text runs a full publish and checks files, narration and summary.
func TestPublish_Text(t *testing.T) {
	root, cfgPath := setupMonorepo(t, "@fast-components@2.3.1")

	stdout, _, err := execute(t, "--config", cfgPath)
	require.NoError(t, err)

	dest := filepath.Join(root, "sites", "site-utilities", "statics", "assets", "scripts", "button", "2.3.1")
	assert.FileExists(t, filepath.Join(dest, "button.js"))
	assert.FileExists(t, filepath.Join(dest, "button.min.js"))

	assert.Contains(t, stdout, "Git Tag version 2.3.1")
	assert.Contains(t, stdout, "1 of 2 packages copied (version 2.3.1 from tag)")
	assert.Contains(t, stdout, "FAILED  card")
}

// TestPublish_JSON verifies the machine-readable report goes to stdout
// and the narration to stderr.
func TestPublish_JSON(t *testing.T) {
	_, cfgPath := setupMonorepo(t, "@fast-components@2.3.1")

	stdout, stderr, err := execute(t, "--config", cfgPath, "--output", "json")
	require.NoError(t, err)

	var report model.BatchReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))

	assert.Equal(t, "2.3.1", report.Version)
	assert.Equal(t, model.VersionFromTag, report.VersionSource)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "button", report.Results[0].Package.Name)
	assert.Equal(t, model.StageReported, report.Results[0].Stage)
	assert.Equal(t, "card", report.Results[1].Package.Name)
	assert.Equal(t, model.StageAborted, report.Results[1].Stage)
	assert.NotEmpty(t, report.Results[1].Error)

	assert.Contains(t, stderr, "Git Tag version 2.3.1")
}

// TestPublish_NoTagUsesDefault verifies the default version fallback.
func TestPublish_NoTagUsesDefault(t *testing.T) {
	root, cfgPath := setupMonorepo(t, "")

	stdout, stderr, err := execute(t, "--config", cfgPath, "-o", "yaml")
	require.NoError(t, err)

	var report model.BatchReport
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, model.DefaultVersion, report.Version)
	assert.Equal(t, model.VersionFromDefault, report.VersionSource)

	assert.Contains(t, stderr, "error retrieving git tag version")
	assert.FileExists(t, filepath.Join(root, "sites", "site-utilities", "statics", "assets", "scripts", "button", "1.0.0", "button.js"))
}

// TestPlan_WritesNothing verifies the plan command lists paths without copying.
func TestPlan_WritesNothing(t *testing.T) {
	root, cfgPath := setupMonorepo(t, "@fast-components@2.3.1")

	stdout, _, err := execute(t, "plan", "--config", cfgPath)
	require.NoError(t, err)

	scripts := filepath.Join(root, "sites", "site-utilities", "statics", "assets", "scripts")
	assert.Contains(t, stdout, "Version 2.3.1 (from tag)")
	assert.Contains(t, stdout, filepath.Join(scripts, "button", "2.3.1", "button.js"))
	assert.Contains(t, stdout, filepath.Join(scripts, "card", "2.3.1", "card.min.js"))
	assert.NoDirExists(t, filepath.Join(scripts, "button", "2.3.1"))
}

// TestInvalidOutputFlag verifies a bad --output value is a CLIError.
func TestInvalidOutputFlag(t *testing.T) {
	_, _, err := execute(t, "--output", "xml")
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)
}

// TestMissingConfigFile verifies an explicit config that does not exist
// maps to the config exit code.
func TestMissingConfigFile(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestPrintError covers the text and JSON error formats.
func TestPrintError(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		printError(&buf, false, "failed to load configuration", errors.New("bad yaml"))
		assert.Equal(t, "Error: failed to load configuration: bad yaml\n", buf.String())
	})

	t.Run("text without cause", func(t *testing.T) {
		var buf bytes.Buffer
		printError(&buf, false, "unknown flag", nil)
		assert.Equal(t, "Error: unknown flag\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		printError(&buf, true, "failed to load configuration", errors.New("bad yaml"))

		var got map[string]map[string]string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "failed to load configuration", got["error"]["message"])
		assert.Equal(t, "bad yaml", got["error"]["detail"])
	})
}

// TestWriteReportText verifies the summary line and failure rows.
func TestWriteReportText(t *testing.T) {
	report := model.BatchReport{
		Version:       "2.3.1",
		VersionSource: model.VersionFromTag,
		Results: []model.PackageResult{
			{Package: model.PackageEntry{Name: "button"}, Stage: model.StageReported},
			{
				Package:  model.PackageEntry{Name: "card"},
				Stage:    model.StageAborted,
				FailedAt: model.StageUnminifiedCopied,
				Error:    "open card.js: no such file or directory",
			},
		},
	}

	var buf bytes.Buffer
	writeReportText(&buf, report)

	out := buf.String()
	assert.Contains(t, out, "1 of 2 packages copied (version 2.3.1 from tag)")
	assert.Contains(t, out, "card")
	assert.Contains(t, out, "unminified-copied")
	assert.Contains(t, out, "no such file or directory")
	assert.NotContains(t, out, "button")
}

// TestWritePlanText_Empty verifies the empty plan message.
func TestWritePlanText_Empty(t *testing.T) {
	var buf bytes.Buffer
	writePlanText(&buf, model.BatchReport{Version: "1.0.0"})
	assert.Equal(t, "No packages found.\n", buf.String())
}
