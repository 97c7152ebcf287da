package prompt

import (
	"net/http/httptest"
	"testing"
)

func TestAlways(t *testing.T) {
	if !Always(true).Confirm("Delete?") {
		t.Error("Always(true) declined")
	}
	if Always(false).Confirm("Delete?") {
		t.Error("Always(false) confirmed")
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{Answer: true}
	var c Confirmer = r
	if !c.Confirm("Discard changes?") {
		t.Error("expected confirmation")
	}
	if r.Question != "Discard changes?" {
		t.Errorf("Question = %q", r.Question)
	}
}

func TestConfirmFunc(t *testing.T) {
	var asked string
	c := ConfirmFunc(func(q string) bool {
		asked = q
		return false
	})
	if c.Confirm("x") || asked != "x" {
		t.Errorf("ConfirmFunc: asked=%q", asked)
	}
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("DELETE", "/api/sites/a?confirm=true", nil)
	if !FromRequest(r).Confirm("Delete?") {
		t.Error("confirm=true should confirm")
	}
	r = httptest.NewRequest("DELETE", "/api/sites/a", nil)
	rec := FromRequest(r)
	if rec.Confirm("Delete?") || rec.Question != "Delete?" {
		t.Errorf("missing flag: %+v", rec)
	}
}
