package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	branchBaseTemplateConstant                = "%s_#%s_%s"
	issueTitlePlaceholderConstant             = "${issueTitle}"
	issueURLPlaceholderConstant               = "${issueUrl}"
	issueNumberPlaceholderConstant            = "${issueNumber}"
	branchNamePlaceholderConstant             = "${branchName}"
	datePlaceholderConstant                   = "${date}"
	invalidConfigurationMessageConstant       = "invalid configuration"
	negativeBranchLengthErrorTemplateConstant = "max branch length must be zero or greater, got %d: %w"
)

// ErrInvalidConfiguration marks inputs that violate the normalization preconditions.
var ErrInvalidConfiguration = errors.New(invalidConfigurationMessageConstant)

// Input carries everything required to derive a branch name and commit message for one issue.
type Input struct {
	RawTitle        string
	IssueURL        string
	IssueNumber     string
	Date            time.Time
	BranchPrefix    string
	MaxBranchLength int
	CommitTemplate  string
}

// Result holds the derived branch name and commit message.
type Result struct {
	BranchName    string `json:"branchName" yaml:"branchName"`
	CommitMessage string `json:"commitMessage" yaml:"commitMessage"`
}

// TemplateContext supplies substitution values for commit templates.
type TemplateContext struct {
	IssueTitle  string
	IssueURL    string
	IssueNumber string
	BranchName  string
	DateStamp   string
}

// CreateBranchName composes "{dateStamp}_#{issueNumber}_{token}" and prepends the prefix.
// A positive maxBranchLength bounds the composed part in characters; the prefix is never counted or truncated.
func CreateBranchName(issueTitle string, issueNumber string, dateStamp string, branchPrefix string, maxBranchLength int) string {
	branchBase := fmt.Sprintf(branchBaseTemplateConstant, dateStamp, issueNumber, NormalizeTitle(issueTitle))
	if maxBranchLength > 0 {
		branchBase = truncateCharacters(branchBase, maxBranchLength)
	}
	return branchPrefix + branchBase
}

func truncateCharacters(text string, maximumCharacters int) string {
	if utf8.RuneCountInString(text) <= maximumCharacters {
		return text
	}

	characterCount := 0
	for byteIndex := range text {
		if characterCount == maximumCharacters {
			return text[:byteIndex]
		}
		characterCount++
	}
	return text
}

// RenderCommitMessage substitutes the known placeholders in a single pass and trims the result.
// Unknown placeholders are left untouched and substituted values are never rescanned.
func RenderCommitMessage(template string, context TemplateContext) string {
	placeholderReplacer := strings.NewReplacer(
		issueTitlePlaceholderConstant, context.IssueTitle,
		issueURLPlaceholderConstant, context.IssueURL,
		issueNumberPlaceholderConstant, context.IssueNumber,
		branchNamePlaceholderConstant, context.BranchName,
		datePlaceholderConstant, context.DateStamp,
	)
	return strings.TrimSpace(placeholderReplacer.Replace(template))
}

// NormalizeAll derives the branch name and commit message for the provided input.
// The commit template's ${issueTitle} receives the extracted title, not the branch token.
func NormalizeAll(input Input) (Result, error) {
	if input.MaxBranchLength < 0 {
		return Result{}, fmt.Errorf(negativeBranchLengthErrorTemplateConstant, input.MaxBranchLength, ErrInvalidConfiguration)
	}

	issueTitle := ExtractIssueTitle(input.RawTitle)
	branchToken := NormalizeTitle(issueTitle)
	dateStamp := FormatDateStamp(input.Date)

	branchName := CreateBranchName(branchToken, input.IssueNumber, dateStamp, input.BranchPrefix, input.MaxBranchLength)

	commitMessage := RenderCommitMessage(input.CommitTemplate, TemplateContext{
		IssueTitle:  issueTitle,
		IssueURL:    input.IssueURL,
		IssueNumber: input.IssueNumber,
		BranchName:  branchName,
		DateStamp:   dateStamp,
	})

	return Result{BranchName: branchName, CommitMessage: commitMessage}, nil
}
