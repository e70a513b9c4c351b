package githubauth

import (
	"errors"
	"os"
	"strings"
)

// Environment variable names consulted for GitHub authentication tokens.
const (
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

const tokenNotFoundMessageConstant = "github token not found: provide the token input or set GITHUB_TOKEN"

// ErrTokenNotFound indicates that neither an explicit token nor a token environment variable was available.
var ErrTokenNotFound = errors.New(tokenNotFoundMessageConstant)

var tokenPreference = []string{
	EnvGitHubToken,
	EnvGitHubCLIToken,
	EnvGitHubAPIToken,
}

// ResolveToken returns the explicit token when it is non-blank, otherwise the first
// non-empty token observed in the provided environment map or the process environment.
func ResolveToken(explicitToken string, environment map[string]string) (string, bool) {
	trimmedExplicitToken := strings.TrimSpace(explicitToken)
	if len(trimmedExplicitToken) > 0 {
		return trimmedExplicitToken, true
	}

	for _, key := range tokenPreference {
		if value, ok := lookup(environment, key); ok {
			return value, true
		}
	}
	for _, key := range tokenPreference {
		if value, ok := os.LookupEnv(key); ok {
			value = strings.TrimSpace(value)
			if len(value) > 0 {
				return value, true
			}
		}
	}
	return "", false
}

// RequireToken behaves like ResolveToken but reports ErrTokenNotFound when no token is available.
func RequireToken(explicitToken string, environment map[string]string) (string, error) {
	token, found := ResolveToken(explicitToken, environment)
	if !found {
		return "", ErrTokenNotFound
	}
	return token, nil
}

func lookup(environment map[string]string, key string) (string, bool) {
	if environment == nil {
		return "", false
	}
	value, exists := environment[key]
	if !exists {
		return "", false
	}
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return "", false
	}
	return value, true
}
