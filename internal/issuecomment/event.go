package issuecomment

import (
	"fmt"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/temirov/issuehelper/internal/githubapi"
)

// Issue event names and actions the handler recognizes.
const (
	IssuesEventName   = "issues"
	IssueActionOpened = "opened"
	IssueActionEdited = "edited"
)

const (
	invalidEventPrefixConstant              = "not an issues event"
	invalidEventTemplateConstant            = "%s: %s"
	invalidEventWithCauseTemplateConstant   = "%s: %s: %v"
	unsupportedEventReasonTemplateConstant  = "unsupported event %q"
	payloadDecodingReasonConstant           = "payload decoding failed"
	unexpectedPayloadReasonTemplateConstant = "unexpected payload type %T"
	missingFieldReasonTemplateConstant      = "payload missing %s"
	actionFieldNameConstant                 = "action"
	issueFieldNameConstant                  = "issue"
	issueNumberFieldNameConstant            = "issue.number"
	issueTitleFieldNameConstant             = "issue.title"
	issueURLFieldNameConstant               = "issue.html_url"
	repositoryNameFieldNameConstant         = "repository.name"
	repositoryOwnerFieldNameConstant        = "repository.owner.login"
)

// InvalidEventError reports a triggering event that is not a well-formed issues event.
type InvalidEventError struct {
	Reason string
	Cause  error
}

// Error describes the rejected event.
func (eventError InvalidEventError) Error() string {
	if eventError.Cause == nil {
		return fmt.Sprintf(invalidEventTemplateConstant, invalidEventPrefixConstant, eventError.Reason)
	}
	return fmt.Sprintf(invalidEventWithCauseTemplateConstant, invalidEventPrefixConstant, eventError.Reason, eventError.Cause)
}

// Unwrap exposes the decoding failure, if any.
func (eventError InvalidEventError) Unwrap() error {
	return eventError.Cause
}

// IssueEvent holds the issues event fields the handler relies on.
type IssueEvent struct {
	Action       string
	TitleChanged bool
	Repository   githubapi.RepositoryReference
	IssueNumber  int
	Title        string
	HTMLURL      string
}

// ShouldProcess reports whether the event opened an issue or changed its title.
func (event IssueEvent) ShouldProcess() bool {
	switch event.Action {
	case IssueActionOpened:
		return true
	case IssueActionEdited:
		return event.TitleChanged
	default:
		return false
	}
}

// DecodeEvent parses an issues webhook payload. A blank event name is treated as an issues event.
func DecodeEvent(eventName string, payload []byte) (IssueEvent, error) {
	trimmedEventName := strings.TrimSpace(eventName)
	if len(trimmedEventName) == 0 {
		trimmedEventName = IssuesEventName
	}
	if trimmedEventName != IssuesEventName {
		return IssueEvent{}, InvalidEventError{Reason: fmt.Sprintf(unsupportedEventReasonTemplateConstant, trimmedEventName)}
	}

	parsedEvent, parseError := gh.ParseWebHook(trimmedEventName, payload)
	if parseError != nil {
		return IssueEvent{}, InvalidEventError{Reason: payloadDecodingReasonConstant, Cause: parseError}
	}

	issuesEvent, isIssuesEvent := parsedEvent.(*gh.IssuesEvent)
	if !isIssuesEvent || issuesEvent == nil {
		return IssueEvent{}, InvalidEventError{Reason: fmt.Sprintf(unexpectedPayloadReasonTemplateConstant, parsedEvent)}
	}

	if missingField := firstMissingField(issuesEvent); len(missingField) > 0 {
		return IssueEvent{}, InvalidEventError{Reason: fmt.Sprintf(missingFieldReasonTemplateConstant, missingField)}
	}

	titleChanged := issuesEvent.Changes != nil && issuesEvent.Changes.Title != nil

	return IssueEvent{
		Action:       issuesEvent.GetAction(),
		TitleChanged: titleChanged,
		Repository: githubapi.RepositoryReference{
			Owner: issuesEvent.Repo.Owner.GetLogin(),
			Name:  issuesEvent.Repo.GetName(),
		},
		IssueNumber: issuesEvent.Issue.GetNumber(),
		Title:       issuesEvent.Issue.GetTitle(),
		HTMLURL:     issuesEvent.Issue.GetHTMLURL(),
	}, nil
}

func firstMissingField(issuesEvent *gh.IssuesEvent) string {
	switch {
	case issuesEvent.Action == nil:
		return actionFieldNameConstant
	case issuesEvent.Issue == nil:
		return issueFieldNameConstant
	case issuesEvent.Issue.Number == nil:
		return issueNumberFieldNameConstant
	case issuesEvent.Issue.Title == nil:
		return issueTitleFieldNameConstant
	case issuesEvent.Issue.HTMLURL == nil:
		return issueURLFieldNameConstant
	case issuesEvent.Repo == nil || issuesEvent.Repo.Name == nil:
		return repositoryNameFieldNameConstant
	case issuesEvent.Repo.Owner == nil || issuesEvent.Repo.Owner.Login == nil:
		return repositoryOwnerFieldNameConstant
	default:
		return ""
	}
}
