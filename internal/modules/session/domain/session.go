package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "thermolab/internal/platform/errors"
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSubmitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is one student's form: identity, readings, reflection answers and
// submission state. It is not safe for concurrent use; callers serialize
// access to a session.
type Session struct {
	id        string
	schema    Schema
	startedAt time.Time
	name      string
	readings  []Reading
	answers   Answers
	state     State
	lastErr   error
}

// NewSession starts with one empty reading row.
func NewSession(id string, schema Schema, startedAt time.Time) *Session {
	return &Session{
		id:        id,
		schema:    schema,
		startedAt: startedAt,
		readings:  []Reading{NewReading()},
		answers:   NewAnswers(schema),
		state:     StateIdle,
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Schema() Schema       { return s.schema }
func (s *Session) StartedAt() time.Time { return s.startedAt }
func (s *Session) Name() string         { return s.name }
func (s *Session) State() State         { return s.state }
func (s *Session) LastError() error     { return s.lastErr }
func (s *Session) Answers() Answers     { return s.answers.clone() }

func (s *Session) Readings() []Reading {
	return append([]Reading(nil), s.readings...)
}

// Locked reports whether edits are refused because the session was
// submitted under a lock schema.
func (s *Session) Locked() bool {
	return s.state == StateSubmitted && s.schema.PostSubmit == PostSubmitLock
}

func (s *Session) editable() error {
	switch {
	case s.state == StateSubmitting || s.state == StateValidating:
		return apperrors.ErrSubmitInProgress
	case s.Locked():
		return apperrors.ErrSessionLocked
	}
	return nil
}

func (s *Session) SetName(name string) error {
	if err := s.editable(); err != nil {
		return err
	}
	s.name = name
	return nil
}

func (s *Session) AddRow() error {
	if err := s.editable(); err != nil {
		return err
	}
	next := make([]Reading, len(s.readings), len(s.readings)+1)
	copy(next, s.readings)
	s.readings = append(next, NewReading())
	return nil
}

func (s *Session) EditField(index int, field Field, raw string) error {
	if err := s.editable(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.readings) {
		return fmt.Errorf("%w: %d of %d", apperrors.ErrRowOutOfRange, index, len(s.readings))
	}
	updated, err := s.readings[index].WithField(field, raw)
	if err != nil {
		return err
	}
	next := s.Readings()
	next[index] = updated
	s.readings = next
	return nil
}

// DeleteRow removes the row at index; later rows shift up by one. Deleting
// the last row leaves an empty list.
func (s *Session) DeleteRow(index int) error {
	if err := s.editable(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.readings) {
		return fmt.Errorf("%w: %d of %d", apperrors.ErrRowOutOfRange, index, len(s.readings))
	}
	next := make([]Reading, 0, len(s.readings)-1)
	next = append(next, s.readings[:index]...)
	s.readings = append(next, s.readings[index+1:]...)
	return nil
}

func (s *Session) SetText(questionID, text string) error {
	if err := s.editable(); err != nil {
		return err
	}
	next := s.answers.clone()
	if err := next.setText(s.schema, questionID, text); err != nil {
		return err
	}
	s.answers = next
	return nil
}

func (s *Session) ToggleOption(questionID, option string) error {
	if err := s.editable(); err != nil {
		return err
	}
	next := s.answers.clone()
	if err := next.toggle(s.schema, questionID, option); err != nil {
		return err
	}
	s.answers = next
	return nil
}

func (s *Session) Series() Series {
	return DeriveSeries(s.readings)
}

// Validate checks the respondent name first, then that at least one reading
// is valid. Incomplete rows are not reported individually.
func (s *Session) Validate() error {
	if strings.TrimSpace(s.name) == "" {
		return apperrors.ErrMissingIdentity
	}
	if len(ValidReadings(s.readings)) == 0 {
		return apperrors.ErrNoValidReadings
	}
	return nil
}

func (s *Session) Payload() Payload {
	return BuildPayload(s.id, s.name, s.schema, s.answers, s.readings)
}

// BeginSubmit moves Idle or Failed through Validating. An invalid form
// returns to Idle with the validation error; a valid one enters Submitting
// and yields the payload to transmit.
func (s *Session) BeginSubmit() (Payload, error) {
	switch s.state {
	case StateValidating, StateSubmitting:
		return Payload{}, apperrors.ErrSubmitInProgress
	case StateSubmitted:
		return Payload{}, apperrors.ErrAlreadySubmitted
	}
	s.state = StateValidating
	if err := s.Validate(); err != nil {
		s.state = StateIdle
		s.lastErr = err
		return Payload{}, err
	}
	s.state = StateSubmitting
	s.lastErr = nil
	return s.Payload(), nil
}

// CompleteSubmit records the transmission result. Failure keeps all input
// for a retry. Success under a reset schema clears the form but keeps the
// session id, and the session is usable again.
func (s *Session) CompleteSubmit(err error) (State, error) {
	if s.state != StateSubmitting {
		return s.state, fmt.Errorf("%w: complete submit in state %s", apperrors.ErrInvalidInput, s.state)
	}
	if err != nil {
		s.state = StateFailed
		s.lastErr = err
		return s.state, nil
	}
	s.lastErr = nil
	if s.schema.PostSubmit == PostSubmitReset {
		s.name = ""
		s.readings = []Reading{NewReading()}
		s.answers = NewAnswers(s.schema)
		s.state = StateIdle
		return StateSubmitted, nil
	}
	s.state = StateSubmitted
	return s.state, nil
}

// ExportView is a printable snapshot of the session.
type ExportView struct {
	SessionID   string
	SchemaID    string
	SchemaTitle string
	Name        string
	State       State
	StartedAt   time.Time
	GeneratedAt time.Time
	Readings    []Reading
	Series      Series
	Scatter     Series
	Questions   []Question
	Answers     Answers
}

func (s *Session) ExportView(now time.Time) ExportView {
	series := s.Series()
	return ExportView{
		SessionID:   s.id,
		SchemaID:    s.schema.ID,
		SchemaTitle: s.schema.Title,
		Name:        s.name,
		State:       s.state,
		StartedAt:   s.startedAt,
		GeneratedAt: now,
		Readings:    s.Readings(),
		Series:      series,
		Scatter:     series.Scatter(s.schema.ScatterJitter),
		Questions:   append([]Question(nil), s.schema.Questions...),
		Answers:     s.answers.clone(),
	}
}
