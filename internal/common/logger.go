package common

// Recorder receives diagnostic records that only go to the debug log.
// Library code such as the lock takes a Recorder, since it never talks to
// the user directly.
type Recorder interface {
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Logger is a Recorder that can also print messages for the person running
// a command.
type Logger interface {
	Recorder

	// InfoToUser prints an informational message and records it
	InfoToUser(format string, args ...interface{})

	// WarningToUser prints a warning and records it
	WarningToUser(format string, args ...interface{})

	// Success prints a success message and records it
	Success(format string, args ...interface{})

	// StatusMessage prints a progress line without recording it
	StatusMessage(format string, args ...interface{})
}

// Discard is a Recorder that drops everything.
type Discard struct{}

func (Discard) Info(string, ...interface{})    {}
func (Discard) Warning(string, ...interface{}) {}
func (Discard) Error(string, ...interface{})   {}
