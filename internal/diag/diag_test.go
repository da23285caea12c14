package diag

import (
	"testing"

	"egg/internal/ir"
)

func TestSinkTracksWorstSeverity(t *testing.T) {
	s := NewSink()
	s.Logf(SourceCompiler, Information, ir.Range{}, "starting")
	s.Logf(SourceCompiler, Warning, ir.Range{}, "suspicious")
	if s.WorstSeverity() != Warning {
		t.Fatalf("expected worst severity Warning, got %v", s.WorstSeverity())
	}
	if s.HasErrors() {
		t.Fatalf("expected no errors logged")
	}
	if s.ExitCode() != 0 {
		t.Fatalf("expected exit code 0, got %d", s.ExitCode())
	}
}

func TestSinkExitCodeOnError(t *testing.T) {
	s := NewSink()
	s.Logf(SourceRuntime, Error, ir.Range{File: "a.egg", StartLine: 1, StartColumn: 1}, "boom: %d", 42)
	if !s.HasErrors() {
		t.Fatalf("expected HasErrors true")
	}
	if s.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %d", s.ExitCode())
	}
	rec := s.Records()[0]
	if rec.Message != "boom: 42" {
		t.Fatalf("expected formatted message, got %q", rec.Message)
	}
}

func TestRecordString(t *testing.T) {
	r := Record{Source: SourceCompiler, Severity: Error, Range: ir.Range{File: "x.egg", StartLine: 2, StartColumn: 5}, Message: "bad"}
	got := r.String()
	want := "[compiler] error x.egg:2:5: bad"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
