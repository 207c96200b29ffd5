//go:build integration

package integration

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"github.com/fivetwenty-io/jira-client/pkg/jiraclient"
	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Endpoint   string
	Token      string
	Username   string
	Password   string
	Project    string
	Group      string
	NATSURL    string
	BinaryPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Endpoint:   os.Getenv("JIRA_ENDPOINT"),
		Token:      os.Getenv("JIRA_TOKEN"),
		Username:   os.Getenv("JIRA_USERNAME"),
		Password:   os.Getenv("JIRA_PASSWORD"),
		Project:    os.Getenv("JIRA_TEST_PROJECT"),
		Group:      os.Getenv("JIRA_TEST_GROUP"),
		NATSURL:    os.Getenv("NATS_URL"),
		BinaryPath: getBinaryPath(),
		Verbose:    os.Getenv("JIRA_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the jira binary
func getBinaryPath() string {
	if path := os.Getenv("JIRA_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../jira", "./jira", "../jira"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "jira"
}

// SkipIfMissingConfig skips test if no Jira server is configured
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Endpoint == "" {
		t.Skip("JIRA_ENDPOINT not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips test if the jira binary was not built
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("jira binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// ClientConfig builds the library configuration for the test server.
func (config *TestConfig) ClientConfig() *jira.Config {
	return &jira.Config{
		Endpoint: config.Endpoint,
		Token:    config.Token,
		Username: config.Username,
		Password: config.Password,
	}
}

// NewClient creates a client for the test server.
func (config *TestConfig) NewClient(t *testing.T) jira.Client {
	t.Helper()

	client, err := jiraclient.New(context.Background(), config.ClientConfig())
	require.NoError(t, err)

	return client
}

// CommandRunner provides utilities for running jira commands
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a jira command against the test server and returns output
func (runner *CommandRunner) Run(args ...string) (string, string, error) {
	global := []string{"--endpoint", runner.config.Endpoint}
	if runner.config.Token != "" {
		global = append(global, "--token", runner.config.Token)
	} else if runner.config.Username != "" {
		global = append(global, "--user", runner.config.Username)
	}

	cmd := exec.Command(runner.config.BinaryPath, append(global, args...)...) // #nosec G204 -- test binary path
	cmd.Env = append(os.Environ(), "JIRA_PASSWORD="+runner.config.Password)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err := cmd.Run()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdoutBuf.String(), stderrBuf.String())
	}

	return stdoutBuf.String(), stderrBuf.String(), err
}
