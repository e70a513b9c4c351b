package actionio

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

const (
	outputNameRequiredMessageConstant       = "output name must be provided"
	outputDelimiterCollisionMessageConstant = "output value contains its delimiter"
	outputFileOpenErrorTemplateConstant     = "unable to open output file %s: %w"
	outputFileWriteErrorTemplateConstant    = "unable to write output %s: %w"
	outputDelimiterPrefixConstant           = "ghadelimiter_"
	outputRecordTemplateConstant            = "%s<<%s\n%s\n%s\n"
	outputFilePermissionsConstant           = 0o644
)

var (
	// ErrOutputNameRequired indicates an output without a name.
	ErrOutputNameRequired = errors.New(outputNameRequiredMessageConstant)
	// ErrOutputDelimiterCollision indicates an output value containing the generated delimiter.
	ErrOutputDelimiterCollision = errors.New(outputDelimiterCollisionMessageConstant)
)

// Output is a single named step output.
type Output struct {
	Name  string
	Value string
}

// OutputWriter appends step outputs to the runner-provided output file.
type OutputWriter struct {
	filePath         string
	delimiterFactory func() string
}

// NewOutputWriter constructs an OutputWriter for the provided file path.
// An empty path produces a writer that discards outputs.
func NewOutputWriter(filePath string) *OutputWriter {
	return &OutputWriter{
		filePath: strings.TrimSpace(filePath),
		delimiterFactory: func() string {
			return outputDelimiterPrefixConstant + uuid.NewString()
		},
	}
}

// Enabled reports whether the writer has a destination file.
func (writer *OutputWriter) Enabled() bool {
	return writer != nil && len(writer.filePath) > 0
}

// SetOutputs appends every output using the multi-line name<<delimiter form.
func (writer *OutputWriter) SetOutputs(outputs ...Output) error {
	if !writer.Enabled() {
		return nil
	}

	var recordBuilder strings.Builder
	for _, output := range outputs {
		trimmedName := strings.TrimSpace(output.Name)
		if len(trimmedName) == 0 {
			return fmt.Errorf(outputFileWriteErrorTemplateConstant, output.Name, ErrOutputNameRequired)
		}

		delimiter := writer.delimiterFactory()
		if strings.Contains(output.Value, delimiter) {
			return fmt.Errorf(outputFileWriteErrorTemplateConstant, trimmedName, ErrOutputDelimiterCollision)
		}
		fmt.Fprintf(&recordBuilder, outputRecordTemplateConstant, trimmedName, delimiter, output.Value, delimiter)
	}

	outputFile, openError := os.OpenFile(writer.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, outputFilePermissionsConstant)
	if openError != nil {
		return fmt.Errorf(outputFileOpenErrorTemplateConstant, writer.filePath, openError)
	}

	_, writeError := outputFile.WriteString(recordBuilder.String())
	closeError := outputFile.Close()
	if writeError != nil {
		return fmt.Errorf(outputFileWriteErrorTemplateConstant, writer.filePath, writeError)
	}
	if closeError != nil {
		return fmt.Errorf(outputFileWriteErrorTemplateConstant, writer.filePath, closeError)
	}
	return nil
}
