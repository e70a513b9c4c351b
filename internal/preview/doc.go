// Package preview provides the branch-name command, which computes the branch
// name and commit message for an issue title offline, without an event payload
// or GitHub access.
package preview
