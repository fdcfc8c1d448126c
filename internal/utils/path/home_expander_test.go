package pathutils_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/pushgate/pushgate/internal/utils/path"
)

const (
	homeExpanderSubtestNameTemplateConstant = "%d_%s"
	testHomeDirectoryConstant               = "/home/tester"
	testHomeLookupFailureMessageConstant    = "home directory unavailable"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name          string
		candidatePath string
		expectedPath  string
	}{
		{
			name:          "empty path unchanged",
			candidatePath: "",
			expectedPath:  "",
		},
		{
			name:          "absolute path unchanged",
			candidatePath: "/var/repositories/service",
			expectedPath:  "/var/repositories/service",
		},
		{
			name:          "relative path unchanged",
			candidatePath: "repositories/service",
			expectedPath:  "repositories/service",
		},
		{
			name:          "bare tilde resolves to home",
			candidatePath: "~",
			expectedPath:  testHomeDirectoryConstant,
		},
		{
			name:          "tilde prefix resolves under home",
			candidatePath: "~/repositories/service",
			expectedPath:  filepath.Join(testHomeDirectoryConstant, "repositories", "service"),
		},
		{
			name:          "tilde username form unchanged",
			candidatePath: "~tester/repositories",
			expectedPath:  "~tester/repositories",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(homeExpanderSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			homeExpander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
				return testHomeDirectoryConstant, nil
			})

			expandedPath := homeExpander.Expand(testCase.candidatePath)
			require.Equal(testInstance, testCase.expectedPath, expandedPath)
		})
	}
}

func TestHomeExpanderExpandWithoutHomeDirectory(testInstance *testing.T) {
	homeExpander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New(testHomeLookupFailureMessageConstant)
	})

	require.Equal(testInstance, "~/repositories", homeExpander.Expand("~/repositories"))
}
