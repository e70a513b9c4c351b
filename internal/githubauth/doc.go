// Package githubauth resolves the token used to authenticate against the GitHub API.
package githubauth
