// Package bundle discovers built package bundles in the monorepo and copies
// them into the versioned CDN drop folder.
//
// For every package directory matched by the source glob, the unminified
// and minified dist files are copied to:
//
//	<destRoot>/<package>/<version>/<package>.js
//	<destRoot>/<package>/<version>/<package>.min.js
//
// Packages are processed one at a time. A failure aborts only the package
// it happened in; the rest of the batch continues. Existing files at the
// destination are overwritten, so re-running a version is idempotent.
package bundle
