package bundle

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/shinji-kodama/cdn-bundle/internal/model"
)

// Discover expands pattern and returns a package entry for every match,
// with symbolic links resolved to real paths. The pattern uses doublestar
// syntax; the default "packages/web-components/*" matches one level.
//
// Matches are returned in glob order. Matches that resolve to the same
// real directory are reported once. A match whose real path cannot be
// resolved (e.g., a dangling symlink) is returned in skipped rather than
// failing the whole discovery.
func Discover(pattern string) (entries []model.PackageEntry, skipped []error, err error) {
	// FilepathGlob takes an OS-style path and returns OS-style matches,
	// sorted by directory order.
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("expand package pattern %q: %w", pattern, err)
	}

	seen := make(map[string]bool, len(matches))
	for _, match := range matches {
		resolved, err := realPath(match)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("resolve package path %s: %w", match, err))
			continue
		}
		if seen[resolved] {
			continue
		}
		seen[resolved] = true
		entries = append(entries, model.NewPackageEntry(resolved))
	}

	return entries, skipped, nil
}

func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
