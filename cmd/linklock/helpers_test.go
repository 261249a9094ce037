package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bashhack/linklock/internal/config"
	"github.com/bashhack/linklock/internal/demo"
	"github.com/bashhack/linklock/internal/owner"
)

// MockLogger implements the logger.Logger interface for testing
type MockLogger struct {
	mu          sync.Mutex
	Messages    []string
	CloseCalled bool
	CloseErr    error
}

func (m *MockLogger) record(level, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, level+": "+fmt.Sprintf(format, args...))
}

// Info logs an info message
func (m *MockLogger) Info(format string, args ...interface{}) {
	m.record("info", format, args...)
}

// Warning logs a warning message
func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.record("warning", format, args...)
}

// Error logs an error message
func (m *MockLogger) Error(format string, args ...interface{}) {
	m.record("error", format, args...)
}

// InfoToUser logs an info message to the user
func (m *MockLogger) InfoToUser(format string, args ...interface{}) {
	m.record("info", format, args...)
}

// WarningToUser logs a warning message to the user
func (m *MockLogger) WarningToUser(format string, args ...interface{}) {
	m.record("warning", format, args...)
}

// Success logs a success message
func (m *MockLogger) Success(format string, args ...interface{}) {
	m.record("success", format, args...)
}

// StatusMessage logs a status message
func (m *MockLogger) StatusMessage(format string, args ...interface{}) {
	m.record("status", format, args...)
}

// Close records the call
func (m *MockLogger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return m.CloseErr
}

// Contains reports whether any recorded message contains substr
func (m *MockLogger) Contains(substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.Messages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// testApp bundles an App with its captured output
type testApp struct {
	*App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	dir    string
}

// newTestApp creates an App whose lock and content files live in a temp dir.
// Demo pauses are disabled and the log directory is redirected.
func newTestApp(t *testing.T, opts AppOptions) *testApp {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dir := t.TempDir()
	if opts.Config == nil {
		opts.Config = config.New()
	}
	opts.Config.LockPath = filepath.Join(dir, "content.lock")
	opts.Config.ContentPath = filepath.Join(dir, "content.json")

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	opts.Stdout = stdout
	opts.Stderr = stderr
	if opts.Exit == nil {
		opts.Exit = func(int) {}
	}

	app := NewApp(opts)
	app.writerHold = demo.NoDelay
	app.writerPause = demo.NoDelay
	app.readerPause = demo.NoDelay

	return &testApp{App: app, stdout: stdout, stderr: stderr, dir: dir}
}

// fixedAlive returns an Alive func that answers the same for every id
func fixedAlive(alive, known bool) func(owner.ID) (bool, bool) {
	return func(owner.ID) (bool, bool) {
		return alive, known
	}
}
