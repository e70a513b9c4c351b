package actionio

import (
	"fmt"
	"io"
	"strings"
)

const (
	errorCommandTemplateConstant  = "::error::%s\n"
	noticeCommandTemplateConstant = "::notice::%s\n"
)

var commandDataEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

// EscapeCommandData escapes a message for use as workflow command data.
func EscapeCommandData(message string) string {
	return commandDataEscaper.Replace(message)
}

// WriteError emits an ::error:: workflow command that marks the step annotation as failed.
func WriteError(writer io.Writer, message string) error {
	_, writeError := fmt.Fprintf(writer, errorCommandTemplateConstant, EscapeCommandData(message))
	return writeError
}

// WriteNotice emits a ::notice:: workflow command.
func WriteNotice(writer io.Writer, message string) error {
	_, writeError := fmt.Fprintf(writer, noticeCommandTemplateConstant, EscapeCommandData(message))
	return writeError
}
