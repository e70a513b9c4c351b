// Package githubapi wraps the go-github REST client for the issue comment
// operations issue-helper performs.
//
// It layers typed request and response structures over go-github, converts
// GitHub error responses into package error types, and walks paginated
// listings so callers receive complete results.
package githubapi
