// Package prompt asks the user to confirm destructive or lossy actions.
// Controllers take a Confirmer per call so each surface answers in its own
// way: the CLI asks on the terminal, the HTTP API reads a confirm flag.
package prompt

import (
	"errors"
	"net/http"

	"github.com/manifoldco/promptui"
)

// ErrDeclined is returned by an operation the user did not confirm.
var ErrDeclined = errors.New("action not confirmed")

// Confirmer answers a yes/no question.
type Confirmer interface {
	Confirm(question string) bool
}

// ConfirmFunc adapts a function to a Confirmer.
type ConfirmFunc func(question string) bool

func (f ConfirmFunc) Confirm(question string) bool { return f(question) }

// Always returns a Confirmer that answers every question with answer.
func Always(answer bool) Confirmer {
	return ConfirmFunc(func(string) bool { return answer })
}

// Recorder is a Confirmer that remembers the last question and answers
// with Answer.
type Recorder struct {
	Answer   bool
	Question string
}

func (r *Recorder) Confirm(question string) bool {
	r.Question = question
	return r.Answer
}

// FromRequest answers with the request's confirm query flag. HTTP
// clients retry with confirm=true after showing the recorded question.
func FromRequest(r *http.Request) *Recorder {
	return &Recorder{Answer: r.URL.Query().Get("confirm") == "true"}
}

// Terminal asks on the controlling terminal.
type Terminal struct{}

// Confirm shows a y/N prompt. Any prompt error, including Ctrl-C, counts
// as a refusal.
func (Terminal) Confirm(question string) bool {
	p := promptui.Prompt{
		Label:     question,
		IsConfirm: true,
	}
	_, err := p.Run()
	return err == nil
}

// Ask displays a free-form prompt with a default value and returns the
// user's input.
func Ask(label, def string) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
	}
	return p.Run()
}
