package preview

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/issuehelper/internal/issuecomment"
	"github.com/temirov/issuehelper/internal/normalize"
	"github.com/temirov/issuehelper/internal/utils/flags"
)

const (
	commandUseConstant                 = "branch-name"
	commandShortDescriptionConstant    = "Print the branch name and commit message for an issue title"
	commandLongDescriptionConstant     = "branch-name derives the branch name and commit message for an issue title using the configured prefix, length limit, commit template, and time zone."
	unexpectedArgumentsMessageConstant = "branch-name does not accept positional arguments"
	missingTitleMessageConstant        = "issue title must be provided with --title"
	missingIssueMessageConstant        = "issue must be identified with --url or --number"
	negativeNumberMessageConstant      = "issue number must not be negative"
	invalidDateTemplateConstant        = "invalid --date %q: expected YYYY-MM-DD"
	renderErrorTemplateConstant        = "unable to render %s output: %w"
	previewFailureTemplateConstant     = "branch name preview failed: %w"
	flagTitleNameConstant              = "title"
	flagTitleDescriptionConstant       = "Issue title as written on GitHub"
	flagURLNameConstant                = "url"
	flagURLDescriptionConstant         = "Issue URL; its last path segment is the issue number"
	flagNumberNameConstant             = "number"
	flagNumberDescriptionConstant      = "Issue number, used when --url is absent or ends without a number"
	flagDateNameConstant               = "date"
	flagDateDescriptionConstant        = "Date stamp source as YYYY-MM-DD (defaults to today in the configured time zone)"
	flagOutputNameConstant             = "output"
	flagOutputDescriptionConstant      = "Output format."
	dateLayoutConstant                 = "2006-01-02"
	outputFormatTextConstant           = "text"
	outputFormatYAMLConstant           = "yaml"
	outputFormatJSONConstant           = "json"
	jsonIndentConstant                 = "  "
	textOutputTemplateConstant         = "%s\n%s\n"
	previewComputedMessageConstant     = "computed branch name preview"
	logFieldBranchNameConstant         = "branch_name"
	logFieldOutputFormatConstant       = "output_format"
)

var (
	errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)
	errMissingTitle        = errors.New(missingTitleMessageConstant)
	errMissingIssue        = errors.New(missingIssueMessageConstant)
	errNegativeNumber      = errors.New(negativeNumberMessageConstant)
	outputFormats          = []string{outputFormatTextConstant, outputFormatYAMLConstant, outputFormatJSONConstant}
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the issue helper configuration shared with issue-comment.
type ConfigurationProvider func() issuecomment.CommandConfiguration

// CommandBuilder assembles the branch-name command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Clock                 func() time.Time
}

// Options describe a single preview request.
type Options struct {
	Title        string
	IssueURL     string
	IssueNumber  int
	Date         string
	OutputFormat string
}

// Build constructs the branch-name command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagTitleNameConstant, "", flagTitleDescriptionConstant)
	command.Flags().String(flagURLNameConstant, "", flagURLDescriptionConstant)
	command.Flags().Int(flagNumberNameConstant, 0, flagNumberDescriptionConstant)
	command.Flags().String(flagDateNameConstant, "", flagDateDescriptionConstant)
	command.Flags().String(flagOutputNameConstant, outputFormatTextConstant, flags.FormatChoiceUsage(outputFormatTextConstant, outputFormats, flagOutputDescriptionConstant))

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options := parseOptions(command)
	outputFormat, formatError := flags.ResolveChoice(flagOutputNameConstant, options.OutputFormat, outputFormatTextConstant, outputFormats)
	if formatError != nil {
		return formatError
	}

	result, previewError := builder.Preview(options)
	if previewError != nil {
		return fmt.Errorf(previewFailureTemplateConstant, previewError)
	}

	builder.resolveLogger().Debug(
		previewComputedMessageConstant,
		zap.String(logFieldBranchNameConstant, result.BranchName),
		zap.String(logFieldOutputFormatConstant, outputFormat),
	)

	return writeResult(command.OutOrStdout(), outputFormat, result)
}

// Preview computes the branch name and commit message for the options using the configured settings.
func (builder *CommandBuilder) Preview(options Options) (normalize.Result, error) {
	if len(strings.TrimSpace(options.Title)) == 0 {
		return normalize.Result{}, errMissingTitle
	}
	if options.IssueNumber < 0 {
		return normalize.Result{}, errNegativeNumber
	}
	issueURL := strings.TrimSpace(options.IssueURL)
	if len(normalize.ExtractIssueNumber(issueURL)) == 0 && options.IssueNumber == 0 {
		return normalize.Result{}, errMissingIssue
	}

	settings, settingsError := builder.resolveConfiguration().Settings()
	if settingsError != nil {
		return normalize.Result{}, settingsError
	}

	referenceTime, dateError := builder.resolveDate(options.Date, settings.Location)
	if dateError != nil {
		return normalize.Result{}, dateError
	}

	event := issuecomment.IssueEvent{
		Action:      issuecomment.IssueActionOpened,
		IssueNumber: options.IssueNumber,
		Title:       options.Title,
		HTMLURL:     issueURL,
	}
	return issuecomment.Derive(event, settings, referenceTime)
}

func (builder *CommandBuilder) resolveDate(rawDate string, location *time.Location) (time.Time, error) {
	trimmedDate := strings.TrimSpace(rawDate)
	if len(trimmedDate) == 0 {
		clock := builder.Clock
		if clock == nil {
			clock = time.Now
		}
		return clock(), nil
	}

	parsedDate, parseError := time.ParseInLocation(dateLayoutConstant, trimmedDate, location)
	if parseError != nil {
		return time.Time{}, fmt.Errorf(invalidDateTemplateConstant, trimmedDate)
	}
	return parsedDate, nil
}

func parseOptions(command *cobra.Command) Options {
	titleValue, _ := command.Flags().GetString(flagTitleNameConstant)
	urlValue, _ := command.Flags().GetString(flagURLNameConstant)
	numberValue, _ := command.Flags().GetInt(flagNumberNameConstant)
	dateValue, _ := command.Flags().GetString(flagDateNameConstant)
	outputValue, _ := command.Flags().GetString(flagOutputNameConstant)

	return Options{
		Title:        titleValue,
		IssueURL:     urlValue,
		IssueNumber:  numberValue,
		Date:         dateValue,
		OutputFormat: outputValue,
	}
}

func writeResult(writer io.Writer, outputFormat string, result normalize.Result) error {
	switch outputFormat {
	case outputFormatYAMLConstant:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(2)
		if encodeError := encoder.Encode(result); encodeError != nil {
			return fmt.Errorf(renderErrorTemplateConstant, outputFormat, encodeError)
		}
		return encoder.Close()
	case outputFormatJSONConstant:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", jsonIndentConstant)
		encoder.SetEscapeHTML(false)
		if encodeError := encoder.Encode(result); encodeError != nil {
			return fmt.Errorf(renderErrorTemplateConstant, outputFormat, encodeError)
		}
		return nil
	default:
		_, writeError := fmt.Fprintf(writer, textOutputTemplateConstant, result.BranchName, result.CommitMessage)
		return writeError
	}
}

func (builder *CommandBuilder) resolveConfiguration() issuecomment.CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return issuecomment.DefaultCommandConfiguration()
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
