package domain

import (
	"fmt"
	"strings"

	apperrors "thermolab/internal/platform/errors"
)

type AnswerKind string

const (
	AnswerText  AnswerKind = "text"
	AnswerMulti AnswerKind = "multi"
)

// PostSubmit decides what the form does after a successful submission.
type PostSubmit string

const (
	// PostSubmitReset clears readings, answers and name and keeps the session id.
	PostSubmitReset PostSubmit = "reset"
	// PostSubmitLock keeps everything on screen read-only until a new session.
	PostSubmitLock PostSubmit = "lock"
)

// TransportKind names the payload shape the collector expects.
type TransportKind string

const (
	TransportForm TransportKind = "form"
	TransportJSON TransportKind = "json"
)

// MultiSeparator joins multi-select answers on the wire.
const MultiSeparator = "; "

type Question struct {
	ID      string     `yaml:"id"`
	Prompt  string     `yaml:"prompt"`
	Kind    AnswerKind `yaml:"kind"`
	Options []string   `yaml:"options,omitempty"`
}

// Schema is one versioned form variant: its questions plus the submission
// and post-submit behavior that goes with them.
type Schema struct {
	ID            string        `yaml:"id"`
	Title         string        `yaml:"title"`
	Version       int           `yaml:"version"`
	PostSubmit    PostSubmit    `yaml:"post_submit"`
	Transport     TransportKind `yaml:"transport"`
	ScatterJitter float64       `yaml:"scatter_jitter"`
	Questions     []Question    `yaml:"questions"`
}

func (s Schema) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: schema id is required", apperrors.ErrInvalidInput)
	}
	switch s.PostSubmit {
	case PostSubmitReset, PostSubmitLock:
	default:
		return fmt.Errorf("%w: schema %s: post_submit %q", apperrors.ErrInvalidInput, s.ID, s.PostSubmit)
	}
	switch s.Transport {
	case TransportForm, TransportJSON:
	default:
		return fmt.Errorf("%w: schema %s: transport %q", apperrors.ErrInvalidInput, s.ID, s.Transport)
	}
	if s.ScatterJitter < 0 {
		return fmt.Errorf("%w: schema %s: scatter_jitter must not be negative", apperrors.ErrInvalidInput, s.ID)
	}
	seen := make(map[string]struct{}, len(s.Questions))
	for _, q := range s.Questions {
		if err := q.validate(); err != nil {
			return fmt.Errorf("schema %s: %w", s.ID, err)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: schema %s: duplicate question %q", apperrors.ErrInvalidInput, s.ID, q.ID)
		}
		if reservedKey(q.ID) {
			return fmt.Errorf("%w: schema %s: question id %q collides with a payload field", apperrors.ErrInvalidInput, s.ID, q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}

func (q Question) validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("%w: question id is required", apperrors.ErrInvalidInput)
	}
	switch q.Kind {
	case AnswerText:
		if len(q.Options) > 0 {
			return fmt.Errorf("%w: text question %q must not list options", apperrors.ErrInvalidInput, q.ID)
		}
	case AnswerMulti:
		if len(q.Options) == 0 {
			return fmt.Errorf("%w: multi-select question %q needs options", apperrors.ErrInvalidInput, q.ID)
		}
		seen := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			if _, dup := seen[opt]; dup || strings.TrimSpace(opt) == "" {
				return fmt.Errorf("%w: question %q has a blank or repeated option %q", apperrors.ErrInvalidInput, q.ID, opt)
			}
			seen[opt] = struct{}{}
		}
	default:
		return fmt.Errorf("%w: question %q has unknown kind %q", apperrors.ErrInvalidInput, q.ID, q.Kind)
	}
	return nil
}

func (s Schema) Question(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

func (q Question) optionIndex(option string) int {
	for i, opt := range q.Options {
		if opt == option {
			return i
		}
	}
	return -1
}

// reservedKey reports whether a question id would shadow a fixed or
// per-reading payload key.
func reservedKey(id string) bool {
	switch id {
	case "sessionId", "name", "numRows":
		return true
	}
	for _, prefix := range []string{"ambient", "bird", "behavior"} {
		if rest, ok := strings.CutPrefix(id, prefix); ok && rest != "" && strings.Trim(rest, "0123456789") == "" {
			return true
		}
	}
	return false
}
