package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout bounds every HTTP request issued by the client.
	DefaultTimeout = 30 * time.Second

	commentsPerPageConstant                 = 100
	urlPathSeparatorConstant                = "/"
	ownerFieldNameConstant                  = "owner"
	repositoryFieldNameConstant             = "repository"
	issueNumberFieldNameConstant            = "issue_number"
	commentIdentifierFieldNameConstant      = "comment_id"
	baseURLFieldNameConstant                = "base_url"
	requiredValueMessageConstant            = "value required"
	positiveValueMessageConstant            = "must be positive"
	invalidURLMessageTemplateConstant       = "invalid url: %v"
	repositoryReferenceTemplateConstant     = "%s/%s"
	listIssueCommentsOperationNameConstant  = OperationName("ListIssueComments")
	createIssueCommentOperationNameConstant = OperationName("CreateIssueComment")
	updateIssueCommentOperationNameConstant = OperationName("UpdateIssueComment")
)

// OperationName describes a named GitHub API workflow supported by the client.
type OperationName string

// RepositoryReference identifies a repository by owner and name.
type RepositoryReference struct {
	Owner string
	Name  string
}

// String renders the reference as owner/name.
func (reference RepositoryReference) String() string {
	return fmt.Sprintf(repositoryReferenceTemplateConstant, reference.Owner, reference.Name)
}

// IssueComment represents the comment details issue-helper relies on.
type IssueComment struct {
	ID        int64
	Body      string
	HTMLURL   string
	CreatedAt time.Time
}

// ClientOptions configures NewClient.
type ClientOptions struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client performs issue comment operations through go-github.
type Client struct {
	github *gh.Client
}

// NewClient constructs a Client. A non-blank token authenticates requests through an
// oauth2 static token source layered over the optional HTTP client.
func NewClient(executionContext context.Context, options ClientOptions) (*Client, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := options.HTTPClient
	trimmedToken := strings.TrimSpace(options.Token)
	if len(trimmedToken) > 0 {
		if httpClient != nil {
			executionContext = context.WithValue(executionContext, oauth2.HTTPClient, httpClient)
		}
		tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken})
		httpClient = oauth2.NewClient(executionContext, tokenSource)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	} else {
		clientCopy := *httpClient
		httpClient = &clientCopy
	}
	httpClient.Timeout = timeout

	githubClient := gh.NewClient(httpClient)

	trimmedBaseURL := strings.TrimSpace(options.BaseURL)
	if len(trimmedBaseURL) > 0 {
		baseURL, parseError := parseBaseURL(trimmedBaseURL)
		if parseError != nil {
			return nil, parseError
		}
		githubClient.BaseURL = baseURL
	}

	return &Client{github: githubClient}, nil
}

func parseBaseURL(rawBaseURL string) (*url.URL, error) {
	if !strings.HasSuffix(rawBaseURL, urlPathSeparatorConstant) {
		rawBaseURL += urlPathSeparatorConstant
	}
	parsedURL, parseError := url.Parse(rawBaseURL)
	if parseError != nil {
		return nil, InvalidInputError{FieldName: baseURLFieldNameConstant, Message: fmt.Sprintf(invalidURLMessageTemplateConstant, parseError)}
	}
	if len(parsedURL.Scheme) == 0 || len(parsedURL.Host) == 0 {
		return nil, InvalidInputError{FieldName: baseURLFieldNameConstant, Message: fmt.Sprintf(invalidURLMessageTemplateConstant, rawBaseURL)}
	}
	return parsedURL, nil
}

// ListIssueComments returns every comment on the issue in creation order, walking all pages.
func (client *Client) ListIssueComments(executionContext context.Context, repository RepositoryReference, issueNumber int) ([]IssueComment, error) {
	if client == nil || client.github == nil {
		return nil, ErrClientNotConfigured
	}
	if validationError := validateIssueTarget(repository, issueNumber); validationError != nil {
		return nil, validationError
	}

	listOptions := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: commentsPerPageConstant},
	}

	var comments []IssueComment
	for {
		select {
		case <-executionContext.Done():
			return nil, OperationError{Operation: listIssueCommentsOperationNameConstant, Cause: executionContext.Err()}
		default:
		}

		pageComments, response, listError := client.github.Issues.ListComments(executionContext, repository.Owner, repository.Name, issueNumber, listOptions)
		if listError != nil {
			return nil, wrapError(listIssueCommentsOperationNameConstant, listError)
		}

		for _, pageComment := range pageComments {
			comments = append(comments, convertComment(pageComment))
		}

		if response == nil || response.NextPage == 0 {
			break
		}
		listOptions.Page = response.NextPage
	}

	return comments, nil
}

// CreateIssueComment posts a new comment on the issue.
func (client *Client) CreateIssueComment(executionContext context.Context, repository RepositoryReference, issueNumber int, body string) (IssueComment, error) {
	if client == nil || client.github == nil {
		return IssueComment{}, ErrClientNotConfigured
	}
	if validationError := validateIssueTarget(repository, issueNumber); validationError != nil {
		return IssueComment{}, validationError
	}

	createdComment, _, createError := client.github.Issues.CreateComment(executionContext, repository.Owner, repository.Name, issueNumber, &gh.IssueComment{Body: gh.Ptr(body)})
	if createError != nil {
		return IssueComment{}, wrapError(createIssueCommentOperationNameConstant, createError)
	}

	return convertComment(createdComment), nil
}

// UpdateIssueComment replaces the body of an existing comment.
func (client *Client) UpdateIssueComment(executionContext context.Context, repository RepositoryReference, commentID int64, body string) (IssueComment, error) {
	if client == nil || client.github == nil {
		return IssueComment{}, ErrClientNotConfigured
	}
	if validationError := validateRepository(repository); validationError != nil {
		return IssueComment{}, validationError
	}
	if commentID <= 0 {
		return IssueComment{}, InvalidInputError{FieldName: commentIdentifierFieldNameConstant, Message: positiveValueMessageConstant}
	}

	updatedComment, _, updateError := client.github.Issues.EditComment(executionContext, repository.Owner, repository.Name, commentID, &gh.IssueComment{Body: gh.Ptr(body)})
	if updateError != nil {
		return IssueComment{}, wrapError(updateIssueCommentOperationNameConstant, updateError)
	}

	return convertComment(updatedComment), nil
}

func validateIssueTarget(repository RepositoryReference, issueNumber int) error {
	if validationError := validateRepository(repository); validationError != nil {
		return validationError
	}
	if issueNumber <= 0 {
		return InvalidInputError{FieldName: issueNumberFieldNameConstant, Message: positiveValueMessageConstant}
	}
	return nil
}

func validateRepository(repository RepositoryReference) error {
	if len(strings.TrimSpace(repository.Owner)) == 0 {
		return InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(repository.Name)) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}

func convertComment(comment *gh.IssueComment) IssueComment {
	if comment == nil {
		return IssueComment{}
	}
	return IssueComment{
		ID:        comment.GetID(),
		Body:      comment.GetBody(),
		HTMLURL:   comment.GetHTMLURL(),
		CreatedAt: comment.GetCreatedAt().Time,
	}
}

func wrapError(operation OperationName, cause error) error {
	var errorResponse *gh.ErrorResponse
	if errors.As(cause, &errorResponse) && errorResponse.Response != nil {
		return OperationError{Operation: operation, Cause: &APIError{StatusCode: errorResponse.Response.StatusCode, Message: errorResponse.Message}}
	}

	var rateLimitError *gh.RateLimitError
	if errors.As(cause, &rateLimitError) && rateLimitError.Response != nil {
		return OperationError{Operation: operation, Cause: &APIError{StatusCode: rateLimitError.Response.StatusCode, Message: rateLimitError.Message}}
	}

	return OperationError{Operation: operation, Cause: cause}
}
