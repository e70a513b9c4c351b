package actionio

import (
	"os"
	"strings"
)

// Runner environment variable names.
const (
	EnvironmentActions    = "GITHUB_ACTIONS"
	EnvironmentEventName  = "GITHUB_EVENT_NAME"
	EnvironmentEventPath  = "GITHUB_EVENT_PATH"
	EnvironmentOutputFile = "GITHUB_OUTPUT"
	EnvironmentAPIURL     = "GITHUB_API_URL"
)

const actionsEnabledValueConstant = "true"

// Environment resolves runner variables from an explicit map before falling back to the process environment.
type Environment struct {
	values map[string]string
}

// NewEnvironment constructs an Environment. A nil map consults only the process environment.
func NewEnvironment(values map[string]string) Environment {
	return Environment{values: values}
}

// Lookup returns the trimmed, non-empty value of the named variable.
func (environment Environment) Lookup(name string) (string, bool) {
	if value, exists := environment.values[name]; exists {
		trimmedValue := strings.TrimSpace(value)
		return trimmedValue, len(trimmedValue) > 0
	}
	trimmedValue := strings.TrimSpace(os.Getenv(name))
	return trimmedValue, len(trimmedValue) > 0
}

// Value returns the named variable or an empty string.
func (environment Environment) Value(name string) string {
	value, _ := environment.Lookup(name)
	return value
}

// Map returns a copy of the explicit values.
func (environment Environment) Map() map[string]string {
	duplicatedValues := make(map[string]string, len(environment.values))
	for key, value := range environment.values {
		duplicatedValues[key] = value
	}
	return duplicatedValues
}

// RunningInActions reports whether the process runs inside a GitHub Actions job.
func (environment Environment) RunningInActions() bool {
	return strings.EqualFold(environment.Value(EnvironmentActions), actionsEnabledValueConstant)
}
