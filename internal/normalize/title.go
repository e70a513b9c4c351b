package normalize

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	branchTokenSeparatorConstant  = '_'
	hangulSyllableFirstConstant   = '가'
	hangulSyllableLastConstant    = '힣'
	issueURLPathSeparatorConstant = "/"
	dateStampLayoutConstant       = "20060102"
)

var bracketedTagPattern = regexp.MustCompile(`\[.*?\]`)

// ExtractIssueTitle removes bracketed tags, symbols and format characters from a raw issue title.
// When nothing textual remains the trimmed raw title is returned instead.
func ExtractIssueTitle(rawTitle string) string {
	withoutTags := strings.TrimSpace(bracketedTagPattern.ReplaceAllString(rawTitle, ""))

	strippedTitle := strings.TrimSpace(strings.Map(func(character rune) rune {
		if isDiscardedTitleRune(character) {
			return -1
		}
		return character
	}, withoutTags))

	if len(strippedTitle) == 0 {
		return strings.TrimSpace(rawTitle)
	}
	return strippedTitle
}

// isDiscardedTitleRune also drops runes outside every assigned category, so emoji newer
// than the runtime's Unicode tables are removed like the ones it knows.
func isDiscardedTitleRune(character rune) bool {
	return unicode.Is(unicode.So, character) ||
		unicode.In(character, unicode.C) ||
		unicode.Is(unicode.Variation_Selector, character) ||
		!unicode.In(character, unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Z)
}

// NormalizeTitle collapses a title into a branch-safe token made of ASCII letters,
// ASCII digits, Hangul syllables and single underscores.
func NormalizeTitle(title string) string {
	composedTitle := norm.NFC.String(title)

	var tokenBuilder strings.Builder
	tokenBuilder.Grow(len(composedTitle))

	previousWasSeparator := false
	for _, character := range composedTitle {
		if isBranchTokenRune(character) {
			tokenBuilder.WriteRune(character)
			previousWasSeparator = false
			continue
		}
		if previousWasSeparator {
			continue
		}
		tokenBuilder.WriteRune(branchTokenSeparatorConstant)
		previousWasSeparator = true
	}

	return strings.Trim(tokenBuilder.String(), string(branchTokenSeparatorConstant))
}

func isBranchTokenRune(character rune) bool {
	switch {
	case character >= 'a' && character <= 'z':
		return true
	case character >= 'A' && character <= 'Z':
		return true
	case character >= '0' && character <= '9':
		return true
	case character >= hangulSyllableFirstConstant && character <= hangulSyllableLastConstant:
		return true
	default:
		return false
	}
}

// ExtractIssueNumber returns the final path segment of an issue URL, ignoring trailing slashes.
func ExtractIssueNumber(issueURL string) string {
	trimmedURL := strings.TrimRight(strings.TrimSpace(issueURL), issueURLPathSeparatorConstant)
	separatorIndex := strings.LastIndex(trimmedURL, issueURLPathSeparatorConstant)
	if separatorIndex < 0 {
		return trimmedURL
	}
	return trimmedURL[separatorIndex+1:]
}

// FormatDateStamp renders the calendar date of the provided time as YYYYMMDD in its own location.
func FormatDateStamp(date time.Time) string {
	return date.Format(dateStampLayoutConstant)
}
