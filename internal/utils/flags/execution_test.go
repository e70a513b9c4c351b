package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestBindExecutionFlagsRegistersDryRun(testInstance *testing.T) {
	testCases := []struct {
		name           string
		arguments      []string
		defaults       ExecutionDefaults
		expectedDryRun bool
	}{
		{name: "DefaultFalse", arguments: []string{}, expectedDryRun: false},
		{name: "FlagPresent", arguments: []string{"--dry-run"}, expectedDryRun: true},
		{name: "ExplicitFalse", arguments: []string{"--dry-run=false"}, defaults: ExecutionDefaults{DryRun: true}, expectedDryRun: false},
		{name: "DefaultTrue", arguments: []string{}, defaults: ExecutionDefaults{DryRun: true}, expectedDryRun: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command := &cobra.Command{Use: "dry-run-command"}
			BindExecutionFlags(command, testCase.defaults, DefaultExecutionFlagDefinitions())

			require.NoError(testInstance, command.ParseFlags(testCase.arguments))
			require.Equal(testInstance, testCase.expectedDryRun, DryRunRequested(command))
		})
	}
}

func TestBindExecutionFlagsSkipsDisabledDefinitions(testInstance *testing.T) {
	command := &cobra.Command{Use: "dry-run-command"}
	BindExecutionFlags(command, ExecutionDefaults{}, ExecutionFlagDefinitions{})

	require.Nil(testInstance, command.Flags().Lookup(DryRunFlagName))
	require.False(testInstance, DryRunRequested(command))
	require.False(testInstance, DryRunRequested(nil))
}

func TestBindExecutionFlagsIsIdempotent(testInstance *testing.T) {
	command := &cobra.Command{Use: "dry-run-command"}
	BindExecutionFlags(command, ExecutionDefaults{}, DefaultExecutionFlagDefinitions())
	require.NotPanics(testInstance, func() {
		BindExecutionFlags(command, ExecutionDefaults{}, DefaultExecutionFlagDefinitions())
	})
}

func TestBindExecutionFlagsRegistersLongFormOnly(testInstance *testing.T) {
	command := &cobra.Command{Use: "dry-run-command"}
	BindExecutionFlags(command, ExecutionDefaults{}, DefaultExecutionFlagDefinitions())

	dryRunFlag := command.Flags().Lookup(DryRunFlagName)
	require.NotNil(testInstance, dryRunFlag)
	require.Empty(testInstance, dryRunFlag.Shorthand)
	require.Equal(testInstance, DryRunFlagUsage, dryRunFlag.Usage)
}
