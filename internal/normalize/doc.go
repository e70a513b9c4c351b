// Package normalize converts a GitHub issue title and its metadata into a
// deterministic branch name and a rendered commit message.
//
// Every function in the package is pure: the same input always yields the same
// output and nothing is retained between calls.
package normalize
