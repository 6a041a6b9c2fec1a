//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	APIKey      string
	APIURL      string
	Org         string
	Space       string
	Instance    string
	App         string
	NuvolosPath string
	Verbose     bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIKey:      os.Getenv("NUVOLOS_API_KEY"),
		APIURL:      os.Getenv("NUVOLOS_API_URL"),
		Org:         os.Getenv("NUVOLOS_TEST_ORG"),
		Space:       os.Getenv("NUVOLOS_TEST_SPACE"),
		Instance:    os.Getenv("NUVOLOS_TEST_INSTANCE"),
		App:         os.Getenv("NUVOLOS_TEST_APP"),
		NuvolosPath: nuvolosPath(),
		Verbose:     os.Getenv("NUVOLOS_TEST_VERBOSE") == "true",
	}
}

func nuvolosPath() string {
	if path := os.Getenv("NUVOLOS_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../nuvolos", "./nuvolos", "../nuvolos"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "nuvolos"
}

// SkipIfMissingConfig skips the test when no API key or binary is available.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.APIKey == "" {
		t.Skip("NUVOLOS_API_KEY not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.NuvolosPath); err != nil {
		t.Skipf("nuvolos binary not found at %s, skipping integration test", config.NuvolosPath)
	}
}

// SkipIfMissingScope skips the test unless an instance to work in is named.
func (config *TestConfig) SkipIfMissingScope(t *testing.T) {
	t.Helper()

	if config.Org == "" || config.Space == "" || config.Instance == "" {
		t.Skip("NUVOLOS_TEST_ORG, NUVOLOS_TEST_SPACE and NUVOLOS_TEST_INSTANCE must be set")
	}
}

// ScopeArgs returns the --org/--space/--instance flags of the test instance.
func (config *TestConfig) ScopeArgs() []string {
	return []string{"--org", config.Org, "--space", config.Space, "--instance", config.Instance}
}

// CommandRunner runs the nuvolos binary against an isolated home directory.
type CommandRunner struct {
	config *TestConfig
	home   string
	t      *testing.T
}

// NewCommandRunner creates a command runner with its own config file.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{config: config, home: t.TempDir(), t: t}
}

// Run executes a nuvolos command and returns its output.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.NuvolosPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+runner.home, "NUVOLOS_API_KEY="+runner.config.APIKey)

	if runner.config.APIURL != "" {
		cmd.Env = append(cmd.Env, "NUVOLOS_API_URL="+runner.config.APIURL)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.NuvolosPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunJSON executes a command with --output json and decodes stdout into v.
func (runner *CommandRunner) RunJSON(v interface{}, args ...string) error {
	stdout, _, err := runner.Run(append([]string{"--output", "json"}, args...)...)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(stdout), v)
}
