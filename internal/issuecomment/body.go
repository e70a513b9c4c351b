package issuecomment

import (
	"fmt"
	"strings"

	"github.com/temirov/issuehelper/internal/normalize"
)

const commentBodyTemplateConstant = "%[1]s\n\nGuide by SUH-LAB\n---\n\n### 브랜치\n```\n%[2]s\n```\n\n### 커밋 메시지\n```\n%[3]s\n```\n\n%[1]s"

// RenderCommentBody builds the helper comment with the marker at its start and end.
func RenderCommentBody(marker string, result normalize.Result) string {
	return fmt.Sprintf(commentBodyTemplateConstant, marker, result.BranchName, result.CommitMessage)
}

// ContainsMarker reports whether a comment body carries the marker.
func ContainsMarker(body string, marker string) bool {
	if len(marker) == 0 {
		return false
	}
	return strings.Contains(body, marker)
}
