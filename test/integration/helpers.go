//go:build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	URL          string
	TenantID     string
	ClientID     string
	ClientSecret string
	Solution     string
	DvdocPath    string
	Verbose      bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		URL:          os.Getenv("DVDOC_URL"),
		TenantID:     os.Getenv("DVDOC_TENANT_ID"),
		ClientID:     os.Getenv("DVDOC_CLIENT_ID"),
		ClientSecret: os.Getenv("DVDOC_CLIENT_SECRET"),
		Solution:     os.Getenv("DVDOC_SOLUTION"),
		DvdocPath:    getDvdocPath(),
		Verbose:      os.Getenv("DVDOC_TEST_VERBOSE") == "true",
	}
}

// getDvdocPath determines the path to the dvdoc binary.
func getDvdocPath() string {
	if path := os.Getenv("DVDOC_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../dvdoc",
		"./dvdoc",
		"../dvdoc",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "dvdoc"
}

// SkipIfMissingConfig skips the test unless a service principal and a
// solution are configured.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.URL == "" || config.TenantID == "" || config.ClientID == "" || config.ClientSecret == "" {
		t.Skip("DVDOC_URL, DVDOC_TENANT_ID, DVDOC_CLIENT_ID and DVDOC_CLIENT_SECRET must be set")
	}

	if config.Solution == "" {
		t.Skip("DVDOC_SOLUTION not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.DvdocPath); err != nil {
		t.Skipf("dvdoc binary not found at %s, skipping integration test", config.DvdocPath)
	}
}

// CommandRunner runs the dvdoc binary as a service principal.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a dvdoc command and returns its output. Credentials reach the
// process through the inherited DVDOC_* environment.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, exitCode int) {
	args = append([]string{"--auth-mode", "serviceprincipal", "--no-color"}, args...)

	//nolint:gosec // binary path comes from the test environment
	cmd := exec.Command(runner.config.DvdocPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.DvdocPath, strings.Join(args, " "))
	}

	err := cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		exitCode = -1
		if exitErr, ok := err.(*exec.ExitError); ok { //nolint:errorlint // exec returns it unwrapped
			exitCode = exitErr.ExitCode()
		}

		if runner.config.Verbose {
			runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
		}
	}

	return stdout, stderr, exitCode
}
