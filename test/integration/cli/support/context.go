// Package support provides the shared godog step context for the hseg
// CLI integration suite: spawning `hseg` as a subprocess, capturing its
// output/exit code, and tracking temp files created during a scenario.
package support

import (
	"fmt"
	"os"
	"path/filepath"
)

// TestContext holds the state for integration tests.
type TestContext struct {
	// Command execution state
	LastCommand  string
	LastOutput   string
	LastErr      error
	LastExitCode int

	// Test environment
	WorkingDir string
	TempDir    string

	// Test artifacts
	CreatedFiles []string
}

// NewTestContext creates a new test context.
func NewTestContext() (*TestContext, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	// If we're in a subdirectory, find the project root by locating go.mod.
	currentDir := workingDir
	for {
		if _, err := os.Stat(filepath.Join(currentDir, "go.mod")); err == nil {
			workingDir = currentDir
			break
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	tempDir, err := os.MkdirTemp("", "hseg-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &TestContext{WorkingDir: workingDir, TempDir: tempDir}, nil
}

// Cleanup removes all temporary files and directories created by the scenario.
func (testCtx *TestContext) Cleanup() error {
	return os.RemoveAll(testCtx.TempDir)
}

// TrackFile adds a file to be cleaned up after tests.
func (testCtx *TestContext) TrackFile(filename string) {
	testCtx.CreatedFiles = append(testCtx.CreatedFiles, filename)
}

// TempPath returns a path inside the scenario's temp directory.
func (testCtx *TestContext) TempPath(name string) string {
	return filepath.Join(testCtx.TempDir, name)
}
