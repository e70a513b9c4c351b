package issuecomment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/issuehelper/internal/actionio"
	"github.com/temirov/issuehelper/internal/githubapi"
	"github.com/temirov/issuehelper/internal/githubauth"
	"github.com/temirov/issuehelper/internal/utils/flags"
)

const (
	commandUseConstant                     = "issue-comment"
	commandShortDescriptionConstant        = "Post the branch name and commit message guide on the triggering issue"
	commandLongDescriptionConstant         = "issue-comment reads the GitHub issues event that triggered the workflow, derives a branch name and commit message from the issue title, and creates or updates a single marker-tagged comment on the issue."
	commandExecutionErrorTemplateConstant  = "issue comment failed: %w"
	unexpectedArgumentsMessageConstant     = "issue-comment does not accept positional arguments"
	eventPathMissingMessageConstant        = "event payload path not provided; set --event-path or GITHUB_EVENT_PATH"
	eventReadErrorTemplateConstant         = "unable to read event payload %s: %w"
	clientCreationErrorTemplateConstant    = "unable to create GitHub client: %w"
	outputWriteErrorTemplateConstant       = "unable to write step outputs: %w"
	flagEventPathNameConstant              = "event-path"
	flagEventPathDescriptionConstant       = "Path to the event payload (defaults to GITHUB_EVENT_PATH)"
	flagEventNameNameConstant              = "event-name"
	flagEventNameDescriptionConstant       = "Name of the triggering event (defaults to GITHUB_EVENT_NAME)"
	branchNameOutputConstant               = "branchName"
	commitMessageOutputConstant            = "commitMessage"
	resultLineTemplateConstant             = "%s: %s\n"
	branchNameLabelConstant                = "Branch"
	commitMessageLabelConstant             = "Commit message"
	commentLabelConstant                   = "Comment"
	commentActionLabelConstant             = "Action"
	commentBodySeparatorConstant           = "\n"
	eventLoadedMessageConstant             = "loaded issues event"
	eventReadMessageConstant               = "read event payload"
	commentPublishedNoticeTemplateConstant = "helper comment %s: %s"
	logFieldEventPathConstant              = "event_path"
	logFieldEventNameConstant              = "event_name"
	logFieldDryRunConstant                 = "dry_run"
)

var (
	errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)
	errEventPathMissing    = errors.New(eventPathMissingMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current issue helper configuration.
type ConfigurationProvider func() CommandConfiguration

// ClientFactory constructs the comment client used to publish the helper comment.
type ClientFactory func(executionContext context.Context, options githubapi.ClientOptions) (CommentClient, error)

// CommandBuilder assembles the issue-comment command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	ClientFactory         ClientFactory
	Environment           map[string]string
	Clock                 func() time.Time
}

// Build constructs the issue-comment command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagEventPathNameConstant, "", flagEventPathDescriptionConstant)
	command.Flags().String(flagEventNameNameConstant, "", flagEventNameDescriptionConstant)
	flags.BindExecutionFlags(command, flags.ExecutionDefaults{}, flags.DefaultExecutionFlagDefinitions())

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	logger := builder.resolveLogger()
	environment := actionio.NewEnvironment(builder.Environment)
	dryRun := flags.DryRunRequested(command)

	configuration := builder.resolveConfiguration().Sanitize()
	settings, settingsError := configuration.Settings()
	if settingsError != nil {
		return settingsError
	}

	event, eventError := builder.loadEvent(command, environment)
	if eventError != nil {
		return eventError
	}
	logger.Debug(eventLoadedMessageConstant, zap.String(logFieldActionConstant, event.Action), zap.Bool(logFieldDryRunConstant, dryRun))

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	commentClient, clientError := builder.resolveClient(executionContext, configuration, environment, event, dryRun)
	if clientError != nil {
		return clientError
	}

	service, serviceError := NewService(ServiceDependencies{CommentClient: commentClient, Clock: builder.Clock, Logger: logger})
	if serviceError != nil {
		return serviceError
	}

	result, handleError := service.Handle(executionContext, Options{Event: event, Settings: settings, DryRun: dryRun})
	if handleError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, handleError)
	}

	if result.Action == CommentActionSkipped {
		return nil
	}

	outputWriter := actionio.NewOutputWriter(environment.Value(actionio.EnvironmentOutputFile))
	if outputError := outputWriter.SetOutputs(
		actionio.Output{Name: branchNameOutputConstant, Value: result.BranchName},
		actionio.Output{Name: commitMessageOutputConstant, Value: result.CommitMessage},
	); outputError != nil {
		return fmt.Errorf(outputWriteErrorTemplateConstant, outputError)
	}

	if printError := printResult(command.OutOrStdout(), result); printError != nil {
		return printError
	}

	if environment.RunningInActions() && len(result.CommentURL) > 0 {
		return actionio.WriteNotice(command.OutOrStdout(), fmt.Sprintf(commentPublishedNoticeTemplateConstant, result.Action, result.CommentURL))
	}
	return nil
}

func (builder *CommandBuilder) loadEvent(command *cobra.Command, environment actionio.Environment) (IssueEvent, error) {
	eventPath, _ := command.Flags().GetString(flagEventPathNameConstant)
	eventPath = strings.TrimSpace(eventPath)
	if len(eventPath) == 0 {
		eventPath = environment.Value(actionio.EnvironmentEventPath)
	}
	if len(eventPath) == 0 {
		return IssueEvent{}, errEventPathMissing
	}

	eventName, _ := command.Flags().GetString(flagEventNameNameConstant)
	eventName = strings.TrimSpace(eventName)
	if len(eventName) == 0 {
		eventName = environment.Value(actionio.EnvironmentEventName)
	}

	payload, readError := os.ReadFile(eventPath)
	if readError != nil {
		return IssueEvent{}, fmt.Errorf(eventReadErrorTemplateConstant, eventPath, readError)
	}

	builder.resolveLogger().Debug(eventReadMessageConstant, zap.String(logFieldEventPathConstant, eventPath), zap.String(logFieldEventNameConstant, eventName))

	return DecodeEvent(eventName, payload)
}

// resolveClient returns a client for non-skipped events. Dry runs without a token get a client that never publishes.
func (builder *CommandBuilder) resolveClient(executionContext context.Context, configuration CommandConfiguration, environment actionio.Environment, event IssueEvent, dryRun bool) (CommentClient, error) {
	if !event.ShouldProcess() || dryRun {
		return unpublishedCommentClient{}, nil
	}

	token, tokenError := githubauth.RequireToken(configuration.Token, environment.Map())
	if tokenError != nil {
		return nil, tokenError
	}

	baseURL := configuration.APIURL
	if len(baseURL) == 0 {
		baseURL = environment.Value(actionio.EnvironmentAPIURL)
	}

	clientFactory := builder.ClientFactory
	if clientFactory == nil {
		clientFactory = newGitHubCommentClient
	}

	commentClient, creationError := clientFactory(executionContext, githubapi.ClientOptions{Token: token, BaseURL: baseURL})
	if creationError != nil {
		return nil, fmt.Errorf(clientCreationErrorTemplateConstant, creationError)
	}
	return commentClient, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func newGitHubCommentClient(executionContext context.Context, options githubapi.ClientOptions) (CommentClient, error) {
	client, creationError := githubapi.NewClient(executionContext, options)
	if creationError != nil {
		return nil, creationError
	}
	return client, nil
}

func printResult(writer io.Writer, result Result) error {
	lines := []string{
		fmt.Sprintf(resultLineTemplateConstant, branchNameLabelConstant, result.BranchName),
		fmt.Sprintf(resultLineTemplateConstant, commitMessageLabelConstant, result.CommitMessage),
		fmt.Sprintf(resultLineTemplateConstant, commentActionLabelConstant, result.Action),
	}
	if len(result.CommentURL) > 0 {
		lines = append(lines, fmt.Sprintf(resultLineTemplateConstant, commentLabelConstant, result.CommentURL))
	}
	if result.Action == CommentActionPreviewed {
		lines = append(lines, commentBodySeparatorConstant, result.Body, commentBodySeparatorConstant)
	}

	for _, line := range lines {
		if _, writeError := io.WriteString(writer, line); writeError != nil {
			return writeError
		}
	}
	return nil
}

// unpublishedCommentClient backs dry runs and skipped events, where no API call may happen.
type unpublishedCommentClient struct{}

func (unpublishedCommentClient) ListIssueComments(context.Context, githubapi.RepositoryReference, int) ([]githubapi.IssueComment, error) {
	return nil, githubapi.ErrClientNotConfigured
}

func (unpublishedCommentClient) CreateIssueComment(context.Context, githubapi.RepositoryReference, int, string) (githubapi.IssueComment, error) {
	return githubapi.IssueComment{}, githubapi.ErrClientNotConfigured
}

func (unpublishedCommentClient) UpdateIssueComment(context.Context, githubapi.RepositoryReference, int64, string) (githubapi.IssueComment, error) {
	return githubapi.IssueComment{}, githubapi.ErrClientNotConfigured
}
