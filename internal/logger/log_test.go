package logger

import "testing"

func TestConsoleLoggerRespectsLevel(t *testing.T) {
	buf := &BufferPrinter{}
	l := NewConsoleLogger(buf, func(int) {})
	l.SetLevel(WARN)

	l.Debug("debug line")
	l.Info("info line")
	l.Warn("warn line")
	l.Error("error line")

	lines := buf.All()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines past the WARN threshold, got %d: %+v", len(lines), lines)
	}
	if lines[0].Level != WARN || lines[1].Level != ERROR {
		t.Fatalf("unexpected levels: %+v", lines)
	}
}

func TestWithFieldsIsImmutable(t *testing.T) {
	buf := &BufferPrinter{}
	base := NewConsoleLogger(buf, func(int) {})

	tagged := base.WithFields(StringField("bot_id", "b1"))
	tagged.Info("hello")
	base.Info("world")

	lines := buf.All()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if len(lines[0].Fields) != 1 || lines[0].Fields[0].Key() != "bot_id" {
		t.Fatalf("expected tagged line to carry bot_id field, got %+v", lines[0].Fields)
	}
	if len(lines[1].Fields) != 0 {
		t.Fatalf("expected base logger to remain untagged, got %+v", lines[1].Fields)
	}
}
