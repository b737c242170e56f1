package domain

import (
	"fmt"
	"strings"

	apperrors "thermolab/internal/platform/errors"
)

// Answer holds either free text or the selected options of a multi-select
// question. Selected is kept in the question's option order.
type Answer struct {
	Text     string
	Selected []string
}

// Answers maps question ids to answers. It only ever contains the ids of the
// schema it was built for.
type Answers map[string]Answer

func NewAnswers(schema Schema) Answers {
	out := make(Answers, len(schema.Questions))
	for _, q := range schema.Questions {
		out[q.ID] = Answer{}
	}
	return out
}

func (a Answers) clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		v.Selected = append([]string(nil), v.Selected...)
		out[k] = v
	}
	return out
}

// Wire renders the answer to q the way the collector stores it.
func (a Answers) Wire(q Question) string {
	ans := a[q.ID]
	if q.Kind == AnswerMulti {
		return strings.Join(ans.Selected, MultiSeparator)
	}
	return ans.Text
}

func (a Answers) setText(schema Schema, questionID, text string) error {
	q, ok := schema.Question(questionID)
	if !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownQuestion, questionID)
	}
	if q.Kind != AnswerText {
		return fmt.Errorf("%w: question %q is multi-select", apperrors.ErrInvalidInput, questionID)
	}
	a[q.ID] = Answer{Text: text}
	return nil
}

// toggle flips option in the selection. Reselecting an option puts it back at
// its option-list position rather than at the end.
func (a Answers) toggle(schema Schema, questionID, option string) error {
	q, ok := schema.Question(questionID)
	if !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownQuestion, questionID)
	}
	if q.Kind != AnswerMulti {
		return fmt.Errorf("%w: question %q takes free text", apperrors.ErrInvalidInput, questionID)
	}
	if q.optionIndex(option) < 0 {
		return fmt.Errorf("%w: %q for question %q", apperrors.ErrUnknownOption, option, questionID)
	}
	on := make(map[string]bool, len(q.Options))
	for _, s := range a[q.ID].Selected {
		on[s] = true
	}
	on[option] = !on[option]
	selected := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		if on[opt] {
			selected = append(selected, opt)
		}
	}
	a[q.ID] = Answer{Selected: selected}
	return nil
}
