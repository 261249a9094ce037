package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := map[string]struct {
		enabled  bool
		logFile  func(dir string) string
		wantFile bool
	}{
		"DebugDisabled": {
			enabled:  false,
			logFile:  func(dir string) string { return filepath.Join(dir, "test.log") },
			wantFile: false,
		},
		"DebugEnabled": {
			enabled:  true,
			logFile:  func(dir string) string { return filepath.Join(dir, "test.log") },
			wantFile: true,
		},
		"CreatesLogDirectory": {
			enabled:  true,
			logFile:  func(dir string) string { return filepath.Join(dir, "linklock", "logs", "linklock-0123abcd.log") },
			wantFile: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			logFile := tc.logFile(t.TempDir())
			stdout := &bytes.Buffer{}

			logger := NewWithOutput(tc.enabled, logFile, true, stdout, &bytes.Buffer{})
			defer func() {
				_ = logger.Close()
			}()

			content, err := os.ReadFile(logFile)
			if !tc.wantFile {
				if err == nil {
					t.Error("Expected no log file to be created when debug is disabled")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected log file to be created when debug is enabled: %v", err)
			}
			if !strings.Contains(string(content), "linklock debug logging started") {
				t.Error("Expected initial message to be logged")
			}
			if !strings.Contains(stdout.String(), logFile) {
				t.Errorf("Expected the log location to be announced, got: %s", stdout.String())
			}
		})
	}
}

func TestLogging(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	logger := NewWithOutput(true, logFile, false, stdout, stderr)

	logger.Info("Trying to acquire lock %s", "/tmp/content.lock")
	logger.Warning("Failed to watch %s, falling back to polling", "/tmp")
	logger.Error("Failed to release lock: %s", "filesystem fault")

	if err := logger.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	logContent := string(content)

	for _, want := range []string{
		"level=INFO msg=\"Trying to acquire lock /tmp/content.lock\"",
		"level=WARN msg=\"Failed to watch /tmp, falling back to polling\"",
		"level=ERROR msg=\"Failed to release lock: filesystem fault\"",
	} {
		if !strings.Contains(logContent, want) {
			t.Errorf("Expected %q in log file, got:\n%s", want, logContent)
		}
	}

	// Info and Warning stay out of a quiet console; errors always reach stderr
	if strings.Contains(stdout.String(), "Trying to acquire") || strings.Contains(stdout.String(), "Failed to watch") {
		t.Errorf("Expected nothing on stdout, got: %s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "❌ Failed to release lock") {
		t.Errorf("Expected error on stderr, got: %s", stderr.String())
	}
}

func TestSetOwnerTagsRecords(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "owner.log")

	stdout := &bytes.Buffer{}
	logger := NewWithOutput(true, logFile, false, stdout, &bytes.Buffer{})
	logger.SetOwner("host_42_01ABC")
	logger.Info("Obtained lock")

	if err := logger.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	for _, want := range []string{"owner=host_42_01ABC", "pid=", "Obtained lock"} {
		if !strings.Contains(string(content), want) {
			t.Errorf("Expected log file to contain %q, got: %s", want, content)
		}
	}

	// A second Close is a no-op
	if err := logger.Close(); err != nil {
		t.Errorf("Expected second Close to succeed, got: %v", err)
	}
}
