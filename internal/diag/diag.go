// Package diag implements the diagnostics subsystem (spec §6, §7): log
// records the compiler and runtime emit, plus the "worst severity" that
// gates exit codes. Grounded on teacher's internal/errors/errors.go (fluent
// typed-error builder), expanded to the spec's (source, range, severity,
// message) record shape.
package diag

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"egg/internal/ir"
)

// Source identifies which subsystem produced a log record (spec §6).
type Source int

const (
	SourceCompiler Source = iota
	SourceRuntime
	SourceUser
	SourceCommand
)

func (s Source) String() string {
	switch s {
	case SourceCompiler:
		return "compiler"
	case SourceRuntime:
		return "runtime"
	case SourceUser:
		return "user"
	case SourceCommand:
		return "command"
	default:
		return "?"
	}
}

// Severity orders log records; Error sets the program's worst severity
// (spec §6).
type Severity int

const (
	Debug Severity = iota
	Verbose
	Information
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Debug:
		return "debug"
	case Verbose:
		return "verbose"
	case Information:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "?"
	}
}

// Record is one diagnostic entry.
type Record struct {
	Source   Source
	Severity Severity
	Range    ir.Range
	Message  string
}

func (r Record) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", r.Source, r.Severity)
	if r.Range.File != "" {
		fmt.Fprintf(&sb, " %s:%d:%d", r.Range.File, r.Range.StartLine, r.Range.StartColumn)
	}
	sb.WriteString(": " + r.Message)
	return sb.String()
}

// Sink accumulates diagnostic records and tracks the worst severity seen,
// which ultimately gates the exit code (spec §6).
type Sink struct {
	records []Record
	worst   Severity
}

// NewSink creates an empty diagnostics sink.
func NewSink() *Sink {
	return &Sink{worst: Debug}
}

// Log appends r and updates the worst-severity tracker.
func (s *Sink) Log(r Record) {
	s.records = append(s.records, r)
	if r.Severity > s.worst {
		s.worst = r.Severity
	}
}

// Logf is a convenience wrapper building a Record from a format string.
func (s *Sink) Logf(source Source, severity Severity, rng ir.Range, format string, args ...interface{}) {
	s.Log(Record{Source: source, Severity: severity, Range: rng, Message: fmt.Sprintf(format, args...)})
}

// Records returns every logged record in emission order.
func (s *Sink) Records() []Record {
	return s.records
}

// WorstSeverity returns the highest severity logged so far.
func (s *Sink) WorstSeverity() Severity {
	return s.worst
}

// HasErrors reports whether any Error-severity record was logged (spec §4.6.7:
// "compile() returns no module if any error was logged").
func (s *Sink) HasErrors() bool {
	for _, r := range s.records {
		if r.Severity == Error {
			return true
		}
	}
	return false
}

// ExitCode maps the worst severity to the driver's stable exit codes (spec
// §6): 0=OK, 1=Error. (2=Usage is a CLI-argument concern, out of this
// package's scope.)
func (s *Sink) ExitCode() int {
	if s.HasErrors() {
		return 1
	}
	return 0
}

// Internal wraps an invariant failure (spec §7 "Internal" error kind, "an
// opcode or operator the runtime does not recognise") with a stack-shaped
// cause via pkg/errors, distinguishing it from ordinary thrown Values, which
// never reach this function.
func Internal(format string, args ...interface{}) error {
	return errors.Errorf("internal: "+format, args...)
}

// WrapInternal attaches additional context to a lower-level error while
// preserving its cause chain (pkg/errors.Cause).
func WrapInternal(err error, context string) error {
	return errors.Wrap(err, context)
}
