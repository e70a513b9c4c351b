package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/issuehelper/cmd/cli"
	"github.com/temirov/issuehelper/internal/githubapi"
	"github.com/temirov/issuehelper/internal/issuecomment"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testIssueTitleConstant            = "[BUG] 로그인 오류 😀"
	testIssueURLConstant              = "https://github.com/octo/widgets/issues/42"
	testEventPayloadConstant          = `{"action":"opened","issue":{"number":42,"title":"[BUG] 로그인 오류 😀","html_url":"https://github.com/octo/widgets/issues/42"},"repository":{"name":"widgets","owner":{"login":"octo"}}}`
	testExpectedBranchConstant        = "20240305_#42_로그인_오류"
	testActionDefinitionPathConstant  = "../../action.yml"
)

var isolatedEnvironmentVariables = []string{
	"ISSUEHELPER_COMMON_LOG_LEVEL",
	"ISSUEHELPER_COMMON_LOG_FORMAT",
	"ISSUEHELPER_ISSUE_TOKEN",
	"ISSUEHELPER_ISSUE_COMMENT_MARKER",
	"ISSUEHELPER_ISSUE_BRANCH_PREFIX",
	"ISSUEHELPER_ISSUE_MAX_BRANCH_LENGTH",
	"ISSUEHELPER_ISSUE_COMMIT_TEMPLATE",
	"ISSUEHELPER_ISSUE_TIME_ZONE",
	"ISSUEHELPER_ISSUE_API_URL",
	"INPUT_TOKEN",
	"INPUT_COMMENT_MARKER",
	"INPUT_BRANCH_PREFIX",
	"INPUT_MAX_BRANCH_LENGTH",
	"INPUT_COMMIT_TEMPLATE",
	"INPUT_TIME_ZONE",
	"INPUT_API_URL",
	"GITHUB_API_URL",
	"GITHUB_TOKEN",
	"GH_TOKEN",
	"GITHUB_API_TOKEN",
}

type recordingCommentClient struct {
	createdBodies []string
}

func (client *recordingCommentClient) ListIssueComments(context.Context, githubapi.RepositoryReference, int) ([]githubapi.IssueComment, error) {
	return nil, nil
}

func (client *recordingCommentClient) CreateIssueComment(_ context.Context, _ githubapi.RepositoryReference, _ int, body string) (githubapi.IssueComment, error) {
	client.createdBodies = append(client.createdBodies, body)
	return githubapi.IssueComment{ID: 1, Body: body}, nil
}

func (client *recordingCommentClient) UpdateIssueComment(context.Context, githubapi.RepositoryReference, int64, string) (githubapi.IssueComment, error) {
	return githubapi.IssueComment{}, nil
}

func isolateEnvironment(testInstance *testing.T) {
	testInstance.Helper()
	for _, environmentVariable := range isolatedEnvironmentVariables {
		testInstance.Setenv(environmentVariable, "")
	}
}

func fixedClock() time.Time {
	return time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
}

func runApplication(testInstance *testing.T, options cli.ApplicationOptions, arguments ...string) (*cli.Application, string, error) {
	testInstance.Helper()
	if len(options.ConfigurationSearchPaths) == 0 {
		options.ConfigurationSearchPaths = []string{testInstance.TempDir()}
	}
	if options.LogWriter == nil {
		options.LogWriter = &bytes.Buffer{}
	}
	if options.Clock == nil {
		options.Clock = fixedClock
	}

	application := cli.NewApplicationWithOptions(options)
	outputBuffer := &bytes.Buffer{}
	application.Command().SetOut(outputBuffer)
	application.Command().SetErr(&bytes.Buffer{})
	application.Command().SetArgs(append([]string{}, arguments...))

	executionError := application.Execute()
	return application, outputBuffer.String(), executionError
}

func TestApplicationRegistersCommands(testInstance *testing.T) {
	application := cli.NewApplication()

	registeredNames := make([]string, 0)
	for _, command := range application.Command().Commands() {
		registeredNames = append(registeredNames, command.Name())
	}

	require.Contains(testInstance, registeredNames, "issue-comment")
	require.Contains(testInstance, registeredNames, "branch-name")
	require.NotNil(testInstance, application.Command().PersistentFlags().Lookup("config"))
	require.NotNil(testInstance, application.Command().PersistentFlags().Lookup("log-level"))
	require.NotNil(testInstance, application.Command().PersistentFlags().Lookup("log-format"))
}

func TestApplicationConfigurationPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		fileContent           string
		environment           map[string]string
		expectedBranchPrefix  string
		expectedMaxLength     string
		expectedCommentMarker string
	}{
		{
			name:                  "embedded_defaults",
			expectedMaxLength:     issuecomment.DefaultMaxBranchLength,
			expectedCommentMarker: issuecomment.DefaultCommentMarker,
		},
		{
			name:                  "configuration_file",
			fileContent:           "issue:\n  branch_prefix: feature/\n  max_branch_length: 60\n",
			expectedBranchPrefix:  "feature/",
			expectedMaxLength:     "60",
			expectedCommentMarker: issuecomment.DefaultCommentMarker,
		},
		{
			name:                  "action_inputs_override_file",
			fileContent:           "issue:\n  branch_prefix: feature/\n",
			environment:           map[string]string{"INPUT_BRANCH_PREFIX": "fix/", "INPUT_COMMENT_MARKER": "<!-- custom -->"},
			expectedBranchPrefix:  "fix/",
			expectedMaxLength:     issuecomment.DefaultMaxBranchLength,
			expectedCommentMarker: "<!-- custom -->",
		},
		{
			name:                  "prefixed_environment_overrides_action_inputs",
			environment:           map[string]string{"INPUT_BRANCH_PREFIX": "fix/", "ISSUEHELPER_ISSUE_BRANCH_PREFIX": "chore/"},
			expectedBranchPrefix:  "chore/",
			expectedMaxLength:     issuecomment.DefaultMaxBranchLength,
			expectedCommentMarker: issuecomment.DefaultCommentMarker,
		},
		{
			name:                  "blank_action_inputs_keep_defaults",
			environment:           map[string]string{"INPUT_MAX_BRANCH_LENGTH": "", "INPUT_COMMENT_MARKER": ""},
			expectedMaxLength:     issuecomment.DefaultMaxBranchLength,
			expectedCommentMarker: issuecomment.DefaultCommentMarker,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			isolateEnvironment(testInstance)
			for environmentVariable, environmentValue := range testCase.environment {
				testInstance.Setenv(environmentVariable, environmentValue)
			}

			arguments := []string{"branch-name", "--title", "x", "--number", "1"}
			if len(testCase.fileContent) > 0 {
				configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
				require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testCase.fileContent), 0o600))
				arguments = append([]string{"--config", configurationPath}, arguments...)
			}

			application, _, executionError := runApplication(testInstance, cli.ApplicationOptions{}, arguments...)
			require.NoError(testInstance, executionError)

			issueConfiguration := application.Configuration().Issue
			require.Equal(testInstance, testCase.expectedBranchPrefix, issueConfiguration.BranchPrefix)
			require.Equal(testInstance, testCase.expectedMaxLength, issueConfiguration.MaxBranchLength)
			require.Equal(testInstance, testCase.expectedCommentMarker, issueConfiguration.CommentMarker)
			require.Equal(testInstance, issuecomment.DefaultCommitTemplate, issueConfiguration.CommitTemplate)
		})
	}
}

func TestApplicationLoggingFlags(testInstance *testing.T) {
	isolateEnvironment(testInstance)

	logBuffer := &bytes.Buffer{}
	application, _, executionError := runApplication(
		testInstance,
		cli.ApplicationOptions{LogWriter: logBuffer},
		"--log-level", "debug", "--log-format", "console", "branch-name", "--title", "x", "--number", "1",
	)
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "debug", application.Configuration().Common.LogLevel)
	require.Equal(testInstance, "console", application.Configuration().Common.LogFormat)
	require.Contains(testInstance, logBuffer.String(), "configuration initialized")

	_, _, invalidLevelError := runApplication(testInstance, cli.ApplicationOptions{}, "--log-level", "verbose", "branch-name", "--title", "x", "--number", "1")
	require.Error(testInstance, invalidLevelError)
	require.Contains(testInstance, invalidLevelError.Error(), "unable to create logger")
}

func TestApplicationBranchNameUsesEmbeddedDefaults(testInstance *testing.T) {
	isolateEnvironment(testInstance)
	testInstance.Setenv("INPUT_TIME_ZONE", "UTC")

	_, output, executionError := runApplication(testInstance, cli.ApplicationOptions{}, "branch-name", "--title", testIssueTitleConstant, "--url", testIssueURLConstant)
	require.NoError(testInstance, executionError)

	outputLines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(testInstance, outputLines, 2)
	require.Equal(testInstance, testExpectedBranchConstant, outputLines[0])
	require.Equal(testInstance, "로그인 오류 : feat : {변경 사항에 대한 설명} "+testIssueURLConstant, outputLines[1])
}

func TestApplicationIssueCommentEndToEnd(testInstance *testing.T) {
	isolateEnvironment(testInstance)
	testInstance.Setenv("INPUT_TOKEN", "input-token")
	testInstance.Setenv("INPUT_TIME_ZONE", "UTC")

	workingDirectory := testInstance.TempDir()
	eventPath := filepath.Join(workingDirectory, "event.json")
	require.NoError(testInstance, os.WriteFile(eventPath, []byte(testEventPayloadConstant), 0o600))
	outputPath := filepath.Join(workingDirectory, "outputs")

	commentClient := &recordingCommentClient{}
	var receivedToken string
	options := cli.ApplicationOptions{
		ClientFactory: func(_ context.Context, clientOptions githubapi.ClientOptions) (issuecomment.CommentClient, error) {
			receivedToken = clientOptions.Token
			return commentClient, nil
		},
		Environment: map[string]string{
			"GITHUB_EVENT_PATH": eventPath,
			"GITHUB_EVENT_NAME": "issues",
			"GITHUB_OUTPUT":     outputPath,
		},
	}

	_, output, executionError := runApplication(testInstance, options, "issue-comment")
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, testExpectedBranchConstant)
	require.Equal(testInstance, "input-token", receivedToken)
	require.Len(testInstance, commentClient.createdBodies, 1)
	require.True(testInstance, strings.HasPrefix(commentClient.createdBodies[0], issuecomment.DefaultCommentMarker))

	outputContent, readError := os.ReadFile(outputPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(outputContent), testExpectedBranchConstant)
}

func TestEmbeddedDefaultConfigurationMatchesIssueDefaults(testInstance *testing.T) {
	configurationContent, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)

	var document map[string]any
	require.NoError(testInstance, yaml.Unmarshal(configurationContent, &document))

	var embeddedIssueConfiguration issuecomment.CommandConfiguration
	require.NoError(testInstance, mapstructure.Decode(document["issue"], &embeddedIssueConfiguration))
	require.Equal(testInstance, issuecomment.DefaultCommandConfiguration(), embeddedIssueConfiguration)

	common, isMap := document["common"].(map[string]any)
	require.True(testInstance, isMap)
	require.Equal(testInstance, "info", common["log_level"])
	require.Equal(testInstance, "structured", common["log_format"])
}

type actionDefinition struct {
	Runs struct {
		Using string   `yaml:"using"`
		Image string   `yaml:"image"`
		Args  []string `yaml:"args"`
	} `yaml:"runs"`
	Inputs  map[string]actionInput `yaml:"inputs"`
	Outputs map[string]any         `yaml:"outputs"`
}

type actionInput struct {
	Required bool   `yaml:"required"`
	Default  string `yaml:"default"`
}

func TestActionDefinitionMatchesConfigurationAliases(testInstance *testing.T) {
	definitionContent, readError := os.ReadFile(testActionDefinitionPathConstant)
	require.NoError(testInstance, readError)

	var definition actionDefinition
	require.NoError(testInstance, yaml.Unmarshal(definitionContent, &definition))

	require.Equal(testInstance, "docker", definition.Runs.Using)
	require.Equal(testInstance, []string{"issue-comment"}, definition.Runs.Args)
	require.Contains(testInstance, definition.Outputs, "branchName")
	require.Contains(testInstance, definition.Outputs, "commitMessage")

	declaredInputVariables := make(map[string]struct{}, len(definition.Inputs))
	for inputName := range definition.Inputs {
		declaredInputVariables["INPUT_"+strings.ToUpper(inputName)] = struct{}{}
	}

	for configurationKey, environmentNames := range issuecomment.EnvironmentAliases("issue") {
		require.Contains(testInstance, declaredInputVariables, environmentNames[0], configurationKey)
	}
	require.Equal(testInstance, "120", definition.Inputs["max_branch_length"].Default)
}
