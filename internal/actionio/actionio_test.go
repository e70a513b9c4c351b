package actionio_test

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/issuehelper/internal/actionio"
)

var outputRecordPattern = regexp.MustCompile(`(?s)^branchName<<(ghadelimiter_[0-9a-f-]{36})\n(.*?)\n(ghadelimiter_[0-9a-f-]{36})\ncommitMessage<<(ghadelimiter_[0-9a-f-]{36})\n(.*?)\n(ghadelimiter_[0-9a-f-]{36})\n$`)

func TestOutputWriterAppendsDelimitedRecords(testInstance *testing.T) {
	outputPath := filepath.Join(testInstance.TempDir(), "output")
	require.NoError(testInstance, os.WriteFile(outputPath, nil, 0o600))

	writer := actionio.NewOutputWriter(outputPath)
	require.True(testInstance, writer.Enabled())

	setError := writer.SetOutputs(
		actionio.Output{Name: "branchName", Value: "20240305_#3_로그인_오류"},
		actionio.Output{Name: "commitMessage", Value: "line one\nline two"},
	)
	require.NoError(testInstance, setError)

	content, readError := os.ReadFile(outputPath)
	require.NoError(testInstance, readError)

	matches := outputRecordPattern.FindStringSubmatch(string(content))
	require.Len(testInstance, matches, 7, string(content))
	require.Equal(testInstance, matches[1], matches[3])
	require.Equal(testInstance, "20240305_#3_로그인_오류", matches[2])
	require.Equal(testInstance, matches[4], matches[6])
	require.Equal(testInstance, "line one\nline two", matches[5])
}

func TestOutputWriterWithoutPathDiscards(testInstance *testing.T) {
	writer := actionio.NewOutputWriter("  ")
	require.False(testInstance, writer.Enabled())
	require.NoError(testInstance, writer.SetOutputs(actionio.Output{Name: "branchName", Value: "x"}))
}

func TestOutputWriterRejectsUnnamedOutput(testInstance *testing.T) {
	outputPath := filepath.Join(testInstance.TempDir(), "output")
	writer := actionio.NewOutputWriter(outputPath)

	setError := writer.SetOutputs(actionio.Output{Name: " ", Value: "x"})
	require.ErrorIs(testInstance, setError, actionio.ErrOutputNameRequired)

	_, statError := os.Stat(outputPath)
	require.True(testInstance, os.IsNotExist(statError))
}

func TestWriteErrorEscapesCommandData(testInstance *testing.T) {
	buffer := &bytes.Buffer{}
	require.NoError(testInstance, actionio.WriteError(buffer, "100% failed\r\nsecond line"))
	require.Equal(testInstance, "::error::100%25 failed%0D%0Asecond line\n", buffer.String())

	buffer.Reset()
	require.NoError(testInstance, actionio.WriteNotice(buffer, "comment updated"))
	require.Equal(testInstance, "::notice::comment updated\n", buffer.String())
}

func TestEnvironmentLookup(testInstance *testing.T) {
	testInstance.Setenv(actionio.EnvironmentEventName, "issues")
	testInstance.Setenv(actionio.EnvironmentActions, "true")
	testInstance.Setenv(actionio.EnvironmentOutputFile, "")

	processEnvironment := actionio.NewEnvironment(nil)
	require.Equal(testInstance, "issues", processEnvironment.Value(actionio.EnvironmentEventName))
	require.True(testInstance, processEnvironment.RunningInActions())

	explicitEnvironment := actionio.NewEnvironment(map[string]string{
		actionio.EnvironmentEventName: " pull_request ",
		actionio.EnvironmentActions:   "",
	})
	require.Equal(testInstance, "pull_request", explicitEnvironment.Value(actionio.EnvironmentEventName))
	require.False(testInstance, explicitEnvironment.RunningInActions())

	_, found := explicitEnvironment.Lookup(actionio.EnvironmentOutputFile)
	require.False(testInstance, found)
}
