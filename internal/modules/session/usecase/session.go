package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"thermolab/internal/modules/session/domain"
	sessiondto "thermolab/internal/modules/session/dto"
	sessionin "thermolab/internal/modules/session/port/in"
	sessionout "thermolab/internal/modules/session/port/out"
	"thermolab/internal/modules/session/service"
	apperrors "thermolab/internal/platform/errors"
)

// Interactor owns every live session. Sessions are independent of each other;
// each one is guarded by its own lock so a slow submission never blocks
// another session.
type Interactor struct {
	svc     *service.SessionService
	schemas sessionout.SchemaStore

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session *domain.Session
}

func NewInteractor(svc *service.SessionService, schemas sessionout.SchemaStore) sessionin.Usecase {
	return &Interactor{svc: svc, schemas: schemas, sessions: map[string]*entry{}}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.SessionOutput, error) {
	schemaID := strings.TrimSpace(input.SchemaID)
	if schemaID == "" {
		return sessiondto.SessionOutput{}, fmt.Errorf("%w: schema id is required", apperrors.ErrInvalidInput)
	}
	schema, err := i.schemas.Get(ctx, schemaID)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.start(schema)
}

func (i *Interactor) start(schema domain.Schema) (sessiondto.SessionOutput, error) {
	session, err := i.svc.Start(schema)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	i.mu.Lock()
	if _, taken := i.sessions[session.ID()]; taken {
		i.mu.Unlock()
		return sessiondto.SessionOutput{}, fmt.Errorf("%w: session id %s is already in use", apperrors.ErrInvalidInput, session.ID())
	}
	i.sessions[session.ID()] = &entry{session: session}
	i.mu.Unlock()
	return toSessionOutput(session), nil
}

func (i *Interactor) Get(_ context.Context, sessionID string) (sessiondto.SessionOutput, error) {
	var out sessiondto.SessionOutput
	err := i.with(sessionID, func(s *domain.Session) error {
		out = toSessionOutput(s)
		return nil
	})
	return out, err
}

// Close discards a session and everything entered into it.
func (i *Interactor) Close(_ context.Context, sessionID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.sessions[sessionID]; !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrNoSession, sessionID)
	}
	delete(i.sessions, sessionID)
	return nil
}

// NewSession replaces sessionID with a fresh session on the same schema. The
// old session is discarded without archival.
func (i *Interactor) NewSession(ctx context.Context, sessionID string) (sessiondto.SessionOutput, error) {
	var schema domain.Schema
	err := i.with(sessionID, func(s *domain.Session) error {
		if s.State() == domain.StateSubmitting {
			return apperrors.ErrSubmitInProgress
		}
		schema = s.Schema()
		return nil
	})
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if err := i.Close(ctx, sessionID); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.start(schema)
}

func (i *Interactor) SetName(_ context.Context, sessionID, name string) (sessiondto.SessionOutput, error) {
	return i.mutate(sessionID, func(s *domain.Session) error { return s.SetName(name) })
}

func (i *Interactor) AddRow(_ context.Context, sessionID string) (sessiondto.SessionOutput, error) {
	return i.mutate(sessionID, func(s *domain.Session) error { return s.AddRow() })
}

func (i *Interactor) EditField(_ context.Context, input sessiondto.EditInput) (sessiondto.SessionOutput, error) {
	field, err := domain.ParseField(input.Field)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.mutate(input.SessionID, func(s *domain.Session) error {
		return s.EditField(input.Index, field, input.Value)
	})
}

func (i *Interactor) DeleteRow(_ context.Context, sessionID string, index int) (sessiondto.SessionOutput, error) {
	return i.mutate(sessionID, func(s *domain.Session) error { return s.DeleteRow(index) })
}

func (i *Interactor) SetText(_ context.Context, input sessiondto.AnswerInput) (sessiondto.SessionOutput, error) {
	return i.mutate(input.SessionID, func(s *domain.Session) error {
		return s.SetText(input.QuestionID, input.Value)
	})
}

func (i *Interactor) ToggleOption(_ context.Context, input sessiondto.AnswerInput) (sessiondto.SessionOutput, error) {
	return i.mutate(input.SessionID, func(s *domain.Session) error {
		return s.ToggleOption(input.QuestionID, input.Value)
	})
}

func (i *Interactor) Series(_ context.Context, sessionID string) (sessiondto.SeriesOutput, error) {
	var out sessiondto.SeriesOutput
	err := i.with(sessionID, func(s *domain.Session) error {
		out = toSeriesOutput(s.Series(), s.Schema().ScatterJitter)
		return nil
	})
	return out, err
}

// Preview validates the session and returns what Submit would send, without
// changing its state.
func (i *Interactor) Preview(_ context.Context, sessionID string) (sessiondto.PreviewOutput, error) {
	var out sessiondto.PreviewOutput
	err := i.with(sessionID, func(s *domain.Session) error {
		out.SessionID = s.ID()
		out.Series = toSeriesOutput(s.Series(), s.Schema().ScatterJitter)
		if err := s.Validate(); err != nil {
			return err
		}
		for _, f := range s.Payload().Fields {
			out.Fields = append(out.Fields, sessiondto.FieldOutput{Key: f.Key, Value: f.Value})
		}
		return nil
	})
	return out, err
}

// Submit validates and transmits the session once. The returned output always
// carries the message to show the user, also when err is non-nil.
func (i *Interactor) Submit(ctx context.Context, sessionID string) (sessiondto.SubmitOutput, error) {
	e, err := i.lookup(sessionID)
	if err != nil {
		return sessiondto.SubmitOutput{SessionID: sessionID, Message: apperrors.UserMessage(err)}, err
	}

	e.mu.Lock()
	payload, err := e.session.BeginSubmit()
	schema := e.session.Schema()
	if err != nil {
		out := submitOutput(e.session, e.session.State(), 0, err)
		e.mu.Unlock()
		return out, err
	}
	e.mu.Unlock()

	sendErr := i.svc.Transmit(ctx, schema, payload)

	e.mu.Lock()
	defer e.mu.Unlock()
	final, err := e.session.CompleteSubmit(sendErr)
	if err != nil {
		return submitOutput(e.session, e.session.State(), 0, err), err
	}
	return submitOutput(e.session, final, payload.NumRows(), sendErr), sendErr
}

func (i *Interactor) Export(ctx context.Context, input sessiondto.ExportInput) (sessiondto.ExportOutput, error) {
	e, err := i.lookup(input.SessionID)
	if err != nil {
		return sessiondto.ExportOutput{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	path, err := i.svc.Export(ctx, input.Dir, e.session)
	if err != nil {
		return sessiondto.ExportOutput{}, err
	}
	return sessiondto.ExportOutput{SessionID: e.session.ID(), Path: path}, nil
}

func (i *Interactor) Schemas(ctx context.Context) ([]sessiondto.SchemaOutput, error) {
	schemas, err := i.schemas.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]sessiondto.SchemaOutput, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, toSchemaOutput(s))
	}
	return out, nil
}

func (i *Interactor) lookup(sessionID string) (*entry, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	e, ok := i.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNoSession, sessionID)
	}
	return e, nil
}

func (i *Interactor) with(sessionID string, fn func(*domain.Session) error) error {
	e, err := i.lookup(sessionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

func (i *Interactor) mutate(sessionID string, fn func(*domain.Session) error) (sessiondto.SessionOutput, error) {
	var out sessiondto.SessionOutput
	err := i.with(sessionID, func(s *domain.Session) error {
		if err := fn(s); err != nil {
			return err
		}
		out = toSessionOutput(s)
		return nil
	})
	return out, err
}
