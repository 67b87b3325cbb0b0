package bundle

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/shinji-kodama/cdn-bundle/internal/console"
	"github.com/shinji-kodama/cdn-bundle/internal/model"
)

// Copier copies discovered package bundles into the CDN drop folder.
type Copier struct {
	// pattern is the absolute source glob of package directories.
	pattern string

	// destRoot is the absolute CDN drop scripts folder.
	destRoot string

	// printer narrates every step. Never nil.
	printer *console.Printer
}

// NewCopier creates a Copier. pattern and destRoot should already be
// resolved against the repository root.
func NewCopier(pattern, destRoot string, printer *console.Printer) *Copier {
	if printer == nil {
		printer = console.Discard()
	}
	return &Copier{pattern: pattern, destRoot: destRoot, printer: printer}
}

// Plan discovers the packages and returns the destination layout each
// would be copied to, without touching the filesystem.
func (c *Copier) Plan(version string) ([]model.PackageResult, error) {
	entries, err := c.discover()
	if err != nil {
		return nil, err
	}

	plan := make([]model.PackageResult, 0, len(entries))
	for _, pkg := range entries {
		plan = append(plan, model.PackageResult{
			Package:     pkg,
			Destination: model.NewDestination(c.destRoot, pkg, version),
			Stage:       model.StageDiscovered,
		})
	}
	return plan, nil
}

// CopyAll copies every discovered package for version.
//
// The only error returned is a malformed source pattern. Per-package
// failures are narrated and recorded in the report; they never stop the
// remaining packages.
func (c *Copier) CopyAll(version string) (model.BatchReport, error) {
	// A non-nil Results slice renders as [] rather than null in JSON.
	report := model.BatchReport{Version: version, Results: []model.PackageResult{}}

	c.printer.Success("Preparing package bundles ...")

	entries, err := c.discover()
	if err != nil {
		return report, err
	}
	if len(entries) == 0 {
		c.printer.Warn("No packages matched %s", c.pattern)
	}

	// Packages are processed one at a time, in glob order. A failed
	// package only affects its own result.
	for _, pkg := range entries {
		report.Results = append(report.Results, c.CopyPackage(pkg, version))
	}
	return report, nil
}

// CopyPackage runs the copy state machine for a single package:
// ensure the version directory, copy the unminified file, copy the
// minified file, then report. The first failing step aborts the package.
// Files already copied before a failure are left in place.
func (c *Copier) CopyPackage(pkg model.PackageEntry, version string) model.PackageResult {
	dest := model.NewDestination(c.destRoot, pkg, version)
	result := model.PackageResult{
		Package:     pkg,
		Destination: dest,
		Stage:       model.StageDiscovered,
	}

	// The four computed paths are only worth building in debug mode.
	if c.printer.DebugEnabled() {
		c.printer.Path("Source File Path:", pkg.SourceFile())
		c.printer.Path("Source File Path Minified:", pkg.SourceFileMin())
		c.printer.Path("Destination File Path:", dest.File())
		c.printer.Path("Destination File Path Minified:", dest.FileMin())
	}

	// A version such as "../x" would place the folder outside
	// <destRoot>/<package>/, so it aborts before anything is created.
	if err := model.ValidateVersionSegment(version); err != nil {
		c.abort(&result, model.StageDirectoryEnsured, err)
		return result
	}

	c.checkManifest(pkg, version)

	created, err := ensureDir(dest.Dir())
	if err != nil {
		c.abort(&result, model.StageDirectoryEnsured, err)
		return result
	}
	result.DirCreated = created
	result.Stage = model.StageDirectoryEnsured
	// An existing folder is reused silently; files inside are overwritten.
	if created {
		c.printer.Success("new package bundle folder, %s, has been created for the CDN drop ...", version)
	}

	// A missing unminified file aborts before the minified copy, so the
	// package leaves no bundle files behind.
	if err := copyFile(pkg.SourceFile(), dest.File()); err != nil {
		c.abort(&result, model.StageUnminifiedCopied, err)
		return result
	}
	result.Stage = model.StageUnminifiedCopied
	c.printer.Success("Unminified package, %s, has been copied to the CDN drop folder ...", pkg.Name)

	// No rollback: the unminified copy stays if this step fails.
	if err := copyFile(pkg.SourceFileMin(), dest.FileMin()); err != nil {
		c.abort(&result, model.StageMinifiedCopied, err)
		return result
	}
	result.Stage = model.StageMinifiedCopied
	c.printer.Success("Minified package, %s, has been copied to the CDN drop folder ...", pkg.Name)

	result.Stage = model.StageReported
	c.printer.Success("Publishing files have been placed in CDN drop folder. Please verify, and submit new PR to deploy to CDN...")
	return result
}

func (c *Copier) discover() ([]model.PackageEntry, error) {
	entries, skipped, err := Discover(c.pattern)
	if err != nil {
		return nil, err
	}
	for _, skipErr := range skipped {
		c.printer.Error(skipErr)
	}
	c.printer.Debug("discovered packages", "pattern", c.pattern, "count", len(entries))
	return entries, nil
}

// checkManifest warns when package.json declares a different version than
// the one being published. It never affects the copy.
func (c *Copier) checkManifest(pkg model.PackageEntry, version string) {
	m, ok, err := ReadManifest(pkg.SourceDir)
	if err != nil {
		c.printer.Debug("package manifest unreadable", "package", pkg.Name, "err", err)
		return
	}
	if !ok {
		return
	}
	c.printer.Debug("package manifest", "package", pkg.Name, "name", m.Name, "version", m.Version)
	if m.Version != "" && m.Version != version {
		c.printer.Warn("Package %s declares version %s in package.json, publishing as %s", pkg.Name, m.Version, version)
	}
}

func (c *Copier) abort(result *model.PackageResult, at model.Stage, err error) {
	result.Abort(at, err)
	c.printer.Error(err)
}

// ensureDir creates dir if it does not exist. Only the last path element
// is created: a missing parent is an error. The boolean reports whether
// the directory was created by this call.
func ensureDir(dir string) (bool, error) {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("destination %s exists and is not a directory", dir)
		}
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	if err := os.Mkdir(dir, 0o755); err != nil {
		return false, err
	}
	return true, nil
}

// copyFile copies src to dst, replacing dst if it exists. The destination
// keeps the source's permission bits.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("copy %s: source is a directory", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
