package gittag

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/shinji-kodama/cdn-bundle/internal/model"
)

// Resolution is the version chosen for a run and where it came from.
type Resolution struct {
	// Version is the opaque path segment used for the destination folder
	// (e.g., "2.3.1"). Never empty.
	Version string

	// Source is model.VersionFromTag when Version came from git, and
	// model.VersionFromDefault when the lookup failed.
	Source model.VersionSource

	// Tag is the raw (trimmed) output of git describe. Empty when the
	// lookup failed.
	Tag string

	// Err is the lookup error that caused a fallback, if any.
	Err error
}

// Resolver reads the latest tag of a repository by invoking the git CLI.
//
// It holds no per-run state. The struct exists as a receiver so tests can
// point it at a different git binary.
type Resolver struct {
	// gitPath is the git binary to execute. Defaults to "git" (looked up
	// on PATH).
	gitPath string
}

// NewResolver creates a Resolver that uses the git binary on PATH.
func NewResolver() *Resolver {
	return &Resolver{gitPath: "git"}
}

// LatestTag returns the nearest annotated tag reachable from HEAD, as
// printed by `git describe --abbrev=0`, with surrounding whitespace trimmed.
func (r *Resolver) LatestTag(ctx context.Context, repoPath string) (string, error) {
	// --abbrev=0 suppresses the "-<n>-g<hash>" suffix so only the tag
	// name is printed, even when HEAD is ahead of the tag.
	output, err := r.runGit(ctx, repoPath, "describe", "--abbrev=0")
	if err != nil {
		return "", err
	}
	// Trim the trailing newline so it never ends up in a directory name.
	return strings.TrimSpace(output), nil
}

// Resolve determines the version for repoPath.
//
// On success the version is the segment after the last "@" of the tag.
// If git cannot be started, exits non-zero, or the parsed version is empty,
// the returned Resolution carries defaultVersion, Source set to
// model.VersionFromDefault, and the error that caused the fallback.
func (r *Resolver) Resolve(ctx context.Context, repoPath, defaultVersion string) Resolution {
	// An empty default would produce <destRoot>/<package>//, so fall back
	// to the built-in one.
	if defaultVersion == "" {
		defaultVersion = model.DefaultVersion
	}

	// No tags, not a repository, or git missing from PATH all land here.
	tag, err := r.LatestTag(ctx, repoPath)
	if err != nil {
		return Resolution{Version: defaultVersion, Source: model.VersionFromDefault, Err: err}
	}

	// The tag looked like "scope/package@" with nothing after the "@".
	version := model.ParseVersionFromTag(tag)
	if version == "" {
		return Resolution{
			Version: defaultVersion,
			Source:  model.VersionFromDefault,
			Tag:     tag,
			Err:     fmt.Errorf("tag %q does not contain a version", tag),
		}
	}

	return Resolution{Version: version, Source: model.VersionFromTag, Tag: tag}
}

// runGit executes a git command with the given arguments in the specified directory.
//
// On success it returns stdout. On failure it returns a model.CLIError with
// ExitGitError, including git's stderr in the message.
func (r *Resolver) runGit(ctx context.Context, repoPath string, args ...string) (string, error) {
	// Prepend -C <repoPath> so git operates in the target directory
	// without changing the process's working directory.
	fullArgs := append([]string{"-C", repoPath}, args...)

	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, r.gitPath, fullArgs...)

	// Capture stdout and stderr separately so stderr can go into the
	// error message while stdout is returned on success.
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Wrap with the Git-specific exit code. git's own message (e.g.,
		// "fatal: No names found") is the most useful diagnostic.
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitGitError, message, err)
	}

	return stdout.String(), nil
}
