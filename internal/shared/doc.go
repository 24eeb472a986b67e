// Package shared holds helpers that belong to no single domain package.
//
// The testutil subpackage provides the in-memory slog capture handler used
// by tests that assert on log output.
package shared
