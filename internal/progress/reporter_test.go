package progress

import (
	"bytes"
	"testing"
)

func TestLineReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &LineReporter{Task: "Importing templates", Out: &buf}
	r.Start(2)
	r.Update(1, "a.json")
	r.Update(2, "b.yaml")
	r.Finish()

	want := "Importing templates: 2 item(s)\n[1/2] a.json\n[2/2] b.yaml\nImporting templates: done\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter("x").(*LineReporter); !ok {
		t.Error("expected LineReporter under CI")
	}
}

func TestTerminalReporterWithoutStart(t *testing.T) {
	r := &TerminalReporter{Task: "x"}
	r.Update(1, "ignored")
	r.Finish()
}
