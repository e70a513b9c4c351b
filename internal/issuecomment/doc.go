// Package issuecomment handles GitHub issues events: it decodes the event
// payload, derives the branch name and commit message for the issue, renders
// the helper comment, and creates or updates that comment through a marker
// string embedded at the start and end of its body.
package issuecomment
