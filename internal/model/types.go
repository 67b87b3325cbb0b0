// Package model defines the domain types for the cdn-bundle CLI.
package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultVersion is used whenever the tag lookup fails or yields nothing.
const DefaultVersion = "1.0.0"

// VersionSource records where the version used for a run came from.
type VersionSource string

const (
	// VersionFromTag means the version was parsed from `git describe` output.
	VersionFromTag VersionSource = "tag"

	// VersionFromDefault means the lookup failed and the configured
	// default version was used instead.
	VersionFromDefault VersionSource = "default"
)

// String returns the string representation of VersionSource.
func (s VersionSource) String() string {
	return string(s)
}

// ParseVersionFromTag extracts the version from a tag description.
//
// Tags are expected to look like "scope/package@X.Y.Z" (or
// "@scope/package@X.Y.Z"); the segment after the last "@" is the version.
// A tag without "@" is returned whole. The result is treated as an opaque
// path segment and is not validated as semver.
//
//	"@fast-components@2.3.1\n" → "2.3.1"
//	"v4.0.0"                   → "v4.0.0"
func ParseVersionFromTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.LastIndex(tag, "@"); i >= 0 {
		return strings.TrimSpace(tag[i+1:])
	}
	return tag
}

// ValidateVersionSegment checks that version can be used as exactly one
// directory name under <destRoot>/<package>/. Empty values, "." and ".."
// and anything containing a path separator are rejected.
func ValidateVersionSegment(version string) error {
	switch version {
	case "":
		return fmt.Errorf("version must not be empty")
	case ".", "..":
		return fmt.Errorf("version %q is not a valid directory name", version)
	}
	if strings.ContainsAny(version, `/\`) {
		return fmt.Errorf("version %q must not contain a path separator", version)
	}
	return nil
}

// Bundle file name suffixes inside a package's dist folder.
const (
	distDirName   = "dist"
	unminifiedExt = ".js"
	minifiedExt   = ".min.js"
)

// PackageEntry is one package directory discovered by the source glob.
type PackageEntry struct {
	// Name is the final path segment of the package directory
	// (e.g., "button" for ".../web-components/button").
	Name string `json:"name" yaml:"name"`

	// SourceDir is the absolute, symlink-resolved package root.
	SourceDir string `json:"sourceDir" yaml:"sourceDir"`
}

// NewPackageEntry builds a PackageEntry for the given package root.
func NewPackageEntry(dir string) PackageEntry {
	return PackageEntry{
		Name:      filepath.Base(dir),
		SourceDir: dir,
	}
}

// SourceFile returns <SourceDir>/dist/<Name>.js.
func (p PackageEntry) SourceFile() string {
	return filepath.Join(p.SourceDir, distDirName, p.Name+unminifiedExt)
}

// SourceFileMin returns <SourceDir>/dist/<Name>.min.js.
func (p PackageEntry) SourceFileMin() string {
	return filepath.Join(p.SourceDir, distDirName, p.Name+minifiedExt)
}

// Destination is the CDN drop location for one (package, version) pair:
//
//	<Root>/<Package>/<Version>/<Package>.js
//	<Root>/<Package>/<Version>/<Package>.min.js
//
// It is derived, never stored.
type Destination struct {
	Root    string `json:"root" yaml:"root"`
	Package string `json:"package" yaml:"package"`
	Version string `json:"version" yaml:"version"`
}

// NewDestination returns the destination layout for a package and version.
func NewDestination(root string, pkg PackageEntry, version string) Destination {
	return Destination{Root: root, Package: pkg.Name, Version: version}
}

// PackageDir returns <Root>/<Package>, which must already exist.
func (d Destination) PackageDir() string {
	return filepath.Join(d.Root, d.Package)
}

// Dir returns the version directory <Root>/<Package>/<Version>.
func (d Destination) Dir() string {
	return filepath.Join(d.Root, d.Package, d.Version)
}

// File returns the unminified destination file path.
func (d Destination) File() string {
	return filepath.Join(d.Dir(), d.Package+unminifiedExt)
}

// FileMin returns the minified destination file path.
func (d Destination) FileMin() string {
	return filepath.Join(d.Dir(), d.Package+minifiedExt)
}

// Stage is a step in the per-package copy state machine:
//
//	Discovered → DirectoryEnsured → UnminifiedCopied → MinifiedCopied → Reported
//
// A failure at any step moves the package to Aborted. Sibling packages
// are unaffected.
type Stage string

const (
	StageDiscovered       Stage = "discovered"
	StageDirectoryEnsured Stage = "directory-ensured"
	StageUnminifiedCopied Stage = "unminified-copied"
	StageMinifiedCopied   Stage = "minified-copied"
	StageReported         Stage = "reported"
	StageAborted          Stage = "aborted"
)

// String returns the string representation of Stage.
func (s Stage) String() string {
	return string(s)
}

// PackageResult is the outcome of processing a single package.
type PackageResult struct {
	Package     PackageEntry `json:"package" yaml:"package"`
	Destination Destination  `json:"destination" yaml:"destination"`

	// Stage is the last stage reached. StageReported means success.
	Stage Stage `json:"stage" yaml:"stage"`

	// FailedAt is the step that was being attempted when the package
	// aborted. Empty on success.
	FailedAt Stage `json:"failedAt,omitempty" yaml:"failedAt,omitempty"`

	// DirCreated is true when this run created the version directory,
	// false when it already existed (or was never reached).
	DirCreated bool `json:"dirCreated" yaml:"dirCreated"`

	// Err is the failure cause; nil on success.
	Err error `json:"-" yaml:"-"`

	// Error mirrors Err for serialized reports.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether both bundle files were copied.
func (r PackageResult) OK() bool {
	return r.Stage == StageReported
}

// Abort marks the result as failed while attempting the given stage.
func (r *PackageResult) Abort(at Stage, err error) {
	r.Stage = StageAborted
	r.FailedAt = at
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
}

// BatchReport collects the per-package outcomes of one run.
// There is no aggregate pass/fail: callers inspect the results.
type BatchReport struct {
	Version       string          `json:"version" yaml:"version"`
	VersionSource VersionSource   `json:"versionSource" yaml:"versionSource"`
	Results       []PackageResult `json:"results" yaml:"results"`
}

// Succeeded returns the results that reached StageReported.
func (b BatchReport) Succeeded() []PackageResult {
	var out []PackageResult
	for _, r := range b.Results {
		if r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Failed returns the results that aborted.
func (b BatchReport) Failed() []PackageResult {
	var out []PackageResult
	for _, r := range b.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// OutputFormat selects how the batch report is rendered.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// String returns the string representation of OutputFormat.
func (f OutputFormat) String() string {
	return string(f)
}

// IsValid checks whether the OutputFormat is one of the supported formats.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputText, OutputJSON, OutputYAML:
		return true
	default:
		return false
	}
}

// ParseOutputFormat converts a string to an OutputFormat.
// Returns an error if the string does not match any supported format.
func ParseOutputFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("invalid output format: %q (valid: text, json, yaml)", s)
	}
	return f, nil
}

// ExitCode defines the CLI exit codes.
// Per-package copy failures never produce a non-zero code; these codes
// cover failures that prevent a run from starting.
type ExitCode int

const (
	// ExitSuccess indicates the command completed (packages may still have
	// failed individually, see the batch report).
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the configuration could not be loaded.
	ExitConfigError ExitCode = 2

	// ExitGitError indicates a git command failed.
	ExitGitError ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
