package issuecomment

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/temirov/issuehelper/internal/normalize"
)

// Default values applied when configuration leaves a setting blank.
const (
	DefaultCommentMarker   = "<!-- 이 댓글은 SUH-ISSUE-HELPER 에 의해 자동으로 생성되었습니다. - https://github.com/Cassiiopeia/github-issue-helper -->"
	DefaultMaxBranchLength = "120"
	DefaultCommitTemplate  = "${issueTitle} : feat : {변경 사항에 대한 설명} ${issueUrl}"
)

const (
	tokenConfigurationKeyConstant             = "token"
	commentMarkerConfigurationKeyConstant     = "comment_marker"
	branchPrefixConfigurationKeyConstant      = "branch_prefix"
	maxBranchLengthConfigurationKeyConstant   = "max_branch_length"
	commitTemplateConfigurationKeyConstant    = "commit_template"
	timeZoneConfigurationKeyConstant          = "time_zone"
	apiURLConfigurationKeyConstant            = "api_url"
	configurationKeySeparatorConstant         = "."
	nonNegativeNumberMessageTemplateConstant  = "must be a non-negative number, got %q"
	unknownTimeZoneMessageTemplateConstant    = "unknown time zone %q: %v"
	invalidConfigurationTemplateConstant      = "invalid configuration: %s: %s"
)

// InvalidConfigurationError reports a configuration value rejected before normalization runs.
type InvalidConfigurationError struct {
	FieldName string
	Message   string
}

// Error describes the invalid configuration value.
func (configurationError InvalidConfigurationError) Error() string {
	return fmt.Sprintf(invalidConfigurationTemplateConstant, configurationError.FieldName, configurationError.Message)
}

// Unwrap ties configuration failures to normalize.ErrInvalidConfiguration.
func (configurationError InvalidConfigurationError) Unwrap() error {
	return normalize.ErrInvalidConfiguration
}

// CommandConfiguration captures the issue helper inputs.
type CommandConfiguration struct {
	Token           string `mapstructure:"token"`
	CommentMarker   string `mapstructure:"comment_marker"`
	BranchPrefix    string `mapstructure:"branch_prefix"`
	MaxBranchLength string `mapstructure:"max_branch_length"`
	CommitTemplate  string `mapstructure:"commit_template"`
	TimeZone        string `mapstructure:"time_zone"`
	APIURL          string `mapstructure:"api_url"`
}

// Settings are the validated values the handler works with.
type Settings struct {
	CommentMarker   string
	BranchPrefix    string
	MaxBranchLength int
	CommitTemplate  string
	Location        *time.Location
}

// DefaultCommandConfiguration provides baseline configuration values.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		CommentMarker:   DefaultCommentMarker,
		MaxBranchLength: DefaultMaxBranchLength,
		CommitTemplate:  DefaultCommitTemplate,
	}
}

// DefaultConfigurationValues returns the default configuration map rooted at the provided key prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		qualifyKey(prefix, tokenConfigurationKeyConstant):           defaults.Token,
		qualifyKey(prefix, commentMarkerConfigurationKeyConstant):   defaults.CommentMarker,
		qualifyKey(prefix, branchPrefixConfigurationKeyConstant):    defaults.BranchPrefix,
		qualifyKey(prefix, maxBranchLengthConfigurationKeyConstant): defaults.MaxBranchLength,
		qualifyKey(prefix, commitTemplateConfigurationKeyConstant):  defaults.CommitTemplate,
		qualifyKey(prefix, timeZoneConfigurationKeyConstant):        defaults.TimeZone,
		qualifyKey(prefix, apiURLConfigurationKeyConstant):          defaults.APIURL,
	}
}

// EnvironmentAliases maps each configuration key rooted at prefix to the GitHub Actions
// input variables that may supply it.
func EnvironmentAliases(prefix string) map[string][]string {
	return map[string][]string{
		qualifyKey(prefix, tokenConfigurationKeyConstant):           {"INPUT_TOKEN"},
		qualifyKey(prefix, commentMarkerConfigurationKeyConstant):   {"INPUT_COMMENT_MARKER"},
		qualifyKey(prefix, branchPrefixConfigurationKeyConstant):    {"INPUT_BRANCH_PREFIX"},
		qualifyKey(prefix, maxBranchLengthConfigurationKeyConstant): {"INPUT_MAX_BRANCH_LENGTH"},
		qualifyKey(prefix, commitTemplateConfigurationKeyConstant):  {"INPUT_COMMIT_TEMPLATE"},
		qualifyKey(prefix, timeZoneConfigurationKeyConstant):        {"INPUT_TIME_ZONE"},
		qualifyKey(prefix, apiURLConfigurationKeyConstant):          {"INPUT_API_URL", "GITHUB_API_URL"},
	}
}

func qualifyKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}

// Sanitize trims values and restores defaults for blank marker, length, and template settings.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.Token = strings.TrimSpace(configuration.Token)
	sanitized.MaxBranchLength = strings.TrimSpace(configuration.MaxBranchLength)
	sanitized.TimeZone = strings.TrimSpace(configuration.TimeZone)
	sanitized.APIURL = strings.TrimSpace(configuration.APIURL)

	if len(strings.TrimSpace(sanitized.CommentMarker)) == 0 {
		sanitized.CommentMarker = DefaultCommentMarker
	}
	if len(sanitized.MaxBranchLength) == 0 {
		sanitized.MaxBranchLength = DefaultMaxBranchLength
	}
	if len(strings.TrimSpace(sanitized.CommitTemplate)) == 0 {
		sanitized.CommitTemplate = DefaultCommitTemplate
	}

	return sanitized
}

// Settings validates the sanitized configuration and converts it into Settings.
func (configuration CommandConfiguration) Settings() (Settings, error) {
	sanitized := configuration.Sanitize()

	maxBranchLength, lengthValid := parseBranchLength(sanitized.MaxBranchLength)
	if !lengthValid {
		return Settings{}, InvalidConfigurationError{
			FieldName: maxBranchLengthConfigurationKeyConstant,
			Message:   fmt.Sprintf(nonNegativeNumberMessageTemplateConstant, sanitized.MaxBranchLength),
		}
	}

	location := time.Local
	if len(sanitized.TimeZone) > 0 {
		loadedLocation, locationError := time.LoadLocation(sanitized.TimeZone)
		if locationError != nil {
			return Settings{}, InvalidConfigurationError{
				FieldName: timeZoneConfigurationKeyConstant,
				Message:   fmt.Sprintf(unknownTimeZoneMessageTemplateConstant, sanitized.TimeZone, locationError),
			}
		}
		location = loadedLocation
	}

	return Settings{
		CommentMarker:   sanitized.CommentMarker,
		BranchPrefix:    sanitized.BranchPrefix,
		MaxBranchLength: maxBranchLength,
		CommitTemplate:  sanitized.CommitTemplate,
		Location:        location,
	}, nil
}

// parseBranchLength accepts any finite non-negative number and floors fractions.
func parseBranchLength(rawLength string) (int, bool) {
	parsedLength, parseError := strconv.ParseFloat(rawLength, 64)
	if parseError != nil || math.IsNaN(parsedLength) || parsedLength < 0 || parsedLength > math.MaxInt32 {
		return 0, false
	}
	return int(math.Floor(parsedLength)), true
}
