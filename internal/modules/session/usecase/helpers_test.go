package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"thermolab/internal/modules/session/domain"
	sessiondto "thermolab/internal/modules/session/dto"
	sessionin "thermolab/internal/modules/session/port/in"
	sessionout "thermolab/internal/modules/session/port/out"
	"thermolab/internal/modules/session/service"
	"thermolab/internal/modules/session/usecase"
	"thermolab/internal/platform/clock"
	apperrors "thermolab/internal/platform/errors"
)

type counterID struct {
	mu sync.Mutex
	n  int
}

func (c *counterID) New() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return fmt.Sprintf("S%06d", c.n)
}

type fakeSchemas struct{ schemas []domain.Schema }

func (f fakeSchemas) List(context.Context) ([]domain.Schema, error) { return f.schemas, nil }

func (f fakeSchemas) Get(_ context.Context, id string) (domain.Schema, error) {
	for _, s := range f.schemas {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Schema{}, apperrors.ErrUnknownSchema
}

// fakeSubmitter records payloads. When gate is set each call signals entered
// and waits for gate before answering.
type fakeSubmitter struct {
	mu       sync.Mutex
	payloads []domain.Payload
	err      error
	entered  chan struct{}
	gate     chan struct{}
}

func (f *fakeSubmitter) Submit(ctx context.Context, payload domain.Payload) (domain.Receipt, error) {
	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	err := f.err
	f.mu.Unlock()
	if f.gate != nil {
		f.entered <- struct{}{}
		select {
		case <-f.gate:
		case <-ctx.Done():
			return domain.Receipt{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.Receipt{}, err
	}
	return domain.Receipt{HTTPStatus: 200, Status: "success"}, nil
}

func (f *fakeSubmitter) calls() []domain.Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Payload(nil), f.payloads...)
}

type fakeExporter struct {
	views []domain.ExportView
}

func (f *fakeExporter) Export(_ context.Context, dir string, view domain.ExportView) (string, error) {
	f.views = append(f.views, view)
	return dir + "/" + view.SessionID + ".md", nil
}

func testSchema(id string, post domain.PostSubmit, transport domain.TransportKind) domain.Schema {
	return domain.Schema{
		ID:            id,
		Title:         "Bird Thermoregulation",
		Version:       1,
		PostSubmit:    post,
		Transport:     transport,
		ScatterJitter: 0.2,
		Questions: []domain.Question{
			{ID: "q1", Prompt: "Why?", Kind: domain.AnswerText},
			{ID: "q2", Prompt: "Which?", Kind: domain.AnswerMulti, Options: []string{"A", "B", "C"}},
		},
	}
}

type harness struct {
	uc       sessionin.Usecase
	form     *fakeSubmitter
	json     *fakeSubmitter
	exporter *fakeExporter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{form: &fakeSubmitter{}, json: &fakeSubmitter{}, exporter: &fakeExporter{}}
	svc := service.NewSessionService(
		clock.Fixed(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)),
		&counterID{},
		map[domain.TransportKind]sessionout.Submitter{
			domain.TransportForm: h.form,
			domain.TransportJSON: h.json,
		},
		h.exporter,
		nil,
	)
	h.uc = usecase.NewInteractor(svc, fakeSchemas{schemas: []domain.Schema{
		testSchema("reset-form", domain.PostSubmitReset, domain.TransportForm),
		testSchema("lock-json", domain.PostSubmitLock, domain.TransportJSON),
	}})
	return h
}

func (h *harness) start(t *testing.T, schemaID string) sessiondto.SessionOutput {
	t.Helper()
	out, err := h.uc.Start(context.Background(), sessiondto.StartInput{SchemaID: schemaID})
	if err != nil {
		t.Fatalf("start %s: %v", schemaID, err)
	}
	return out
}

// fill names the respondent and enters one valid reading in row 0.
func (h *harness) fill(t *testing.T, sessionID string) {
	t.Helper()
	ctx := context.Background()
	if _, err := h.uc.SetName(ctx, sessionID, "Ana"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	for field, value := range map[string]string{"ambient": "10", "bird": "38", "behavior": "low"} {
		if _, err := h.uc.EditField(ctx, sessiondto.EditInput{SessionID: sessionID, Index: 0, Field: field, Value: value}); err != nil {
			t.Fatalf("edit %s: %v", field, err)
		}
	}
}
