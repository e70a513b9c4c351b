// Package actionio exchanges data with the GitHub Actions runner: it names the
// runner environment variables, appends step outputs to the GITHUB_OUTPUT file,
// and formats workflow commands such as ::error::.
package actionio
