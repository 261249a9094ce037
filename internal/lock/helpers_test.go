package lock

import (
	"fmt"
	"strings"
	"sync"
)

// recordingLogger implements common.Recorder and keeps every message
type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingLogger) record(level, format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, level+": "+fmt.Sprintf(format, args...))
}

func (r *recordingLogger) Info(format string, args ...interface{}) {
	r.record("info", format, args...)
}

func (r *recordingLogger) Warning(format string, args ...interface{}) {
	r.record("warning", format, args...)
}

func (r *recordingLogger) Error(format string, args ...interface{}) {
	r.record("error", format, args...)
}

func (r *recordingLogger) lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func (r *recordingLogger) contains(substr string) bool {
	for _, line := range r.lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
