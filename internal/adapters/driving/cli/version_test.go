package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Short(t *testing.T) {
	assert.Equal(t, "Print the version number", versionCmd.Short)
}

func TestVersionCmd_Executes(t *testing.T) {
	// Save and restore version
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "docqa version test-version-1.0.0")
}

func TestExecute_WritesToStdout(t *testing.T) {
	originalVersion, originalStdout := version, stdout
	version = "1.2.3"
	out := new(bytes.Buffer)
	stdout = out
	errOut := new(bytes.Buffer)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		version, stdout = originalVersion, originalStdout
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
	}()

	err := Execute()

	assert.NoError(t, err)
	assert.Contains(t, out.String(), "docqa version 1.2.3")
	assert.Empty(t, errOut.String())
}

func TestVersionCmd_DisplaysDevByDefault(t *testing.T) {
	// Save and restore version
	originalVersion := version
	version = "dev"
	defer func() { version = originalVersion }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "docqa version dev")
}
