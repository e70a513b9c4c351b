package issuecomment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/issuehelper/internal/githubapi"
	"github.com/temirov/issuehelper/internal/normalize"
)

const (
	commentClientMissingMessageConstant  = "comment client not configured"
	normalizationFailureTemplateConstant = "failed to derive branch name: %w"
	listCommentsFailureTemplateConstant  = "failed to list issue comments: %w"
	createCommentFailureTemplateConstant = "failed to create issue comment: %w"
	updateCommentFailureTemplateConstant = "failed to update issue comment %d: %w"
	eventSkippedMessageConstant          = "event is neither an opened issue nor a title edit; skipping"
	commentCreatedMessageConstant        = "created helper comment"
	commentUpdatedMessageConstant        = "updated existing helper comment"
	commentVanishedMessageConstant       = "helper comment disappeared before update; creating a new one"
	commentPreviewedMessageConstant      = "dry run: helper comment not published"
	branchDerivedMessageConstant         = "derived branch name"
	logFieldActionConstant               = "action"
	logFieldRepositoryConstant           = "repository"
	logFieldIssueNumberConstant          = "issue_number"
	logFieldBranchNameConstant           = "branch_name"
	logFieldCommitMessageConstant        = "commit_message"
	logFieldCommentIdentifierConstant    = "comment_id"
	logFieldExistingCommentCountConstant = "existing_comment_count"
)

// ErrCommentClientNotConfigured indicates the comment client dependency was missing.
var ErrCommentClientNotConfigured = errors.New(commentClientMissingMessageConstant)

// CommentClient lists, creates, and updates issue comments.
type CommentClient interface {
	ListIssueComments(executionContext context.Context, repository githubapi.RepositoryReference, issueNumber int) ([]githubapi.IssueComment, error)
	CreateIssueComment(executionContext context.Context, repository githubapi.RepositoryReference, issueNumber int, body string) (githubapi.IssueComment, error)
	UpdateIssueComment(executionContext context.Context, repository githubapi.RepositoryReference, commentID int64, body string) (githubapi.IssueComment, error)
}

// CommentAction describes what the handler did with the helper comment.
type CommentAction string

// Comment action enumerations.
const (
	CommentActionSkipped   CommentAction = CommentAction("skipped")
	CommentActionCreated   CommentAction = CommentAction("created")
	CommentActionUpdated   CommentAction = CommentAction("updated")
	CommentActionPreviewed CommentAction = CommentAction("previewed")
)

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	CommentClient CommentClient
	Clock         func() time.Time
	Logger        *zap.Logger
}

// Options configure a single event handling run.
type Options struct {
	Event    IssueEvent
	Settings Settings
	DryRun   bool
}

// Result captures the outcome of handling an event.
type Result struct {
	Action        CommentAction
	BranchName    string
	CommitMessage string
	Body          string
	CommentID     int64
	CommentURL    string
}

// Service derives the branch name and commit message for an issue and maintains the helper comment.
type Service struct {
	commentClient CommentClient
	clock         func() time.Time
	logger        *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.CommentClient == nil {
		return nil, ErrCommentClientNotConfigured
	}

	clock := dependencies.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{commentClient: dependencies.CommentClient, clock: clock, logger: logger}, nil
}

// Handle processes one issues event. Events other than opened issues and title edits are skipped.
func (service *Service) Handle(executionContext context.Context, options Options) (Result, error) {
	event := options.Event
	if !event.ShouldProcess() {
		service.logger.Info(eventSkippedMessageConstant, zap.String(logFieldActionConstant, event.Action))
		return Result{Action: CommentActionSkipped}, nil
	}

	normalizationResult, normalizationError := Derive(event, options.Settings, service.clock())
	if normalizationError != nil {
		return Result{}, fmt.Errorf(normalizationFailureTemplateConstant, normalizationError)
	}

	service.logger.Info(
		branchDerivedMessageConstant,
		zap.String(logFieldRepositoryConstant, event.Repository.String()),
		zap.Int(logFieldIssueNumberConstant, event.IssueNumber),
		zap.String(logFieldBranchNameConstant, normalizationResult.BranchName),
		zap.String(logFieldCommitMessageConstant, normalizationResult.CommitMessage),
	)

	result := Result{
		BranchName:    normalizationResult.BranchName,
		CommitMessage: normalizationResult.CommitMessage,
		Body:          RenderCommentBody(options.Settings.CommentMarker, normalizationResult),
	}

	if options.DryRun {
		service.logger.Info(commentPreviewedMessageConstant)
		result.Action = CommentActionPreviewed
		return result, nil
	}

	publishedComment, action, publishError := service.publish(executionContext, event, options.Settings.CommentMarker, result.Body)
	if publishError != nil {
		return Result{}, publishError
	}

	result.Action = action
	result.CommentID = publishedComment.ID
	result.CommentURL = publishedComment.HTMLURL
	return result, nil
}

// Derive computes the branch name and commit message for the event using the settings and the current time.
func Derive(event IssueEvent, settings Settings, now time.Time) (normalize.Result, error) {
	issueNumber := normalize.ExtractIssueNumber(event.HTMLURL)
	if len(issueNumber) == 0 {
		issueNumber = strconv.Itoa(event.IssueNumber)
	}

	location := settings.Location
	if location == nil {
		location = time.Local
	}

	return normalize.NormalizeAll(normalize.Input{
		RawTitle:        event.Title,
		IssueURL:        event.HTMLURL,
		IssueNumber:     issueNumber,
		Date:            now.In(location),
		BranchPrefix:    settings.BranchPrefix,
		MaxBranchLength: settings.MaxBranchLength,
		CommitTemplate:  settings.CommitTemplate,
	})
}

func (service *Service) publish(executionContext context.Context, event IssueEvent, marker string, body string) (githubapi.IssueComment, CommentAction, error) {
	existingComments, listError := service.commentClient.ListIssueComments(executionContext, event.Repository, event.IssueNumber)
	if listError != nil {
		return githubapi.IssueComment{}, "", fmt.Errorf(listCommentsFailureTemplateConstant, listError)
	}

	markedComment, found := findLatestMarkedComment(existingComments, marker)
	if found {
		updatedComment, updateError := service.commentClient.UpdateIssueComment(executionContext, event.Repository, markedComment.ID, body)
		switch {
		case updateError == nil:
			service.logger.Info(
				commentUpdatedMessageConstant,
				zap.Int64(logFieldCommentIdentifierConstant, updatedComment.ID),
				zap.Int(logFieldExistingCommentCountConstant, len(existingComments)),
			)
			return updatedComment, CommentActionUpdated, nil
		case githubapi.IsNotFound(updateError):
			// The comment was deleted after listing.
			service.logger.Warn(commentVanishedMessageConstant, zap.Int64(logFieldCommentIdentifierConstant, markedComment.ID))
		default:
			return githubapi.IssueComment{}, "", fmt.Errorf(updateCommentFailureTemplateConstant, markedComment.ID, updateError)
		}
	}

	createdComment, createError := service.commentClient.CreateIssueComment(executionContext, event.Repository, event.IssueNumber, body)
	if createError != nil {
		return githubapi.IssueComment{}, "", fmt.Errorf(createCommentFailureTemplateConstant, createError)
	}
	service.logger.Info(
		commentCreatedMessageConstant,
		zap.Int64(logFieldCommentIdentifierConstant, createdComment.ID),
		zap.Int(logFieldExistingCommentCountConstant, len(existingComments)),
	)
	return createdComment, CommentActionCreated, nil
}

// findLatestMarkedComment returns the most recently listed comment whose body carries the marker.
func findLatestMarkedComment(comments []githubapi.IssueComment, marker string) (githubapi.IssueComment, bool) {
	for commentIndex := len(comments) - 1; commentIndex >= 0; commentIndex-- {
		if ContainsMarker(comments[commentIndex].Body, marker) {
			return comments[commentIndex], true
		}
	}
	return githubapi.IssueComment{}, false
}
