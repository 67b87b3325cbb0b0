// Package gittag resolves the release version for a cdn-bundle run from
// the most recent annotated Git tag.
//
// All Git operations are performed via os/exec calls to the git binary,
// the same way the user would query tags in a terminal. A failed lookup is
// never fatal: callers fall back to a default version and keep going.
package gittag
