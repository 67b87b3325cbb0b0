// Package model defines the domain types and value objects for the
// cdn-bundle CLI.
//
// This package contains pure data structures with no external dependencies.
// Package entries and destinations are transient: they are derived from the
// filesystem on every run and never persisted. The only state the tool
// leaves behind is the copied files themselves.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
