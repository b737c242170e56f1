package usecase_test

import (
	"context"
	"errors"
	"testing"

	sessiondto "thermolab/internal/modules/session/dto"
	apperrors "thermolab/internal/platform/errors"
)

func TestSubmitRequiresIdentityBeforeReadings(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	s := h.start(t, "reset-form")

	out, err := h.uc.Submit(context.Background(), s.SessionID)
	if !errors.Is(err, apperrors.ErrMissingIdentity) {
		t.Fatalf("expected missing identity, got %v", err)
	}
	if out.Message != apperrors.MsgMissingIdentity || out.State != "idle" {
		t.Fatalf("unexpected output %+v", out)
	}

	if _, err := h.uc.SetName(context.Background(), s.SessionID, "  Ana "); err != nil {
		t.Fatalf("set name: %v", err)
	}
	out, err = h.uc.Submit(context.Background(), s.SessionID)
	if !errors.Is(err, apperrors.ErrNoValidReadings) || out.Message != apperrors.MsgNoValidReadings {
		t.Fatalf("expected no valid readings, got %v (%+v)", err, out)
	}
	if len(h.form.calls()) != 0 {
		t.Fatalf("invalid forms must not reach the collector")
	}

	got, _ := h.uc.Get(context.Background(), s.SessionID)
	if got.LastError != apperrors.MsgNoValidReadings {
		t.Fatalf("expected last error to be recorded, got %q", got.LastError)
	}
}

func TestSubmitResetSchemaClearsFormAndKeepsSessionID(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	s := h.start(t, "reset-form")
	h.fill(t, s.SessionID)
	if _, err := h.uc.SetText(context.Background(), sessiondto.AnswerInput{SessionID: s.SessionID, QuestionID: "q1", Value: "insulation"}); err != nil {
		t.Fatalf("set text: %v", err)
	}

	out, err := h.uc.Submit(context.Background(), s.SessionID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !out.Reset || out.Locked || out.Rows != 1 || out.State != "submitted" || out.Message != apperrors.MsgSubmitted {
		t.Fatalf("unexpected submit output %+v", out)
	}
	calls := h.form.calls()
	if len(calls) != 1 || calls[0].Map()["q1"] != "insulation" || calls[0].Map()["sessionId"] != s.SessionID {
		t.Fatalf("unexpected payloads %+v", calls)
	}
	if len(h.json.calls()) != 0 {
		t.Fatalf("form schema must not use the json transport")
	}

	got, err := h.uc.Get(context.Background(), s.SessionID)
	if err != nil {
		t.Fatalf("get after reset: %v", err)
	}
	if got.SessionID != s.SessionID || got.Name != "" || len(got.Readings) != 1 || got.Readings[0].Valid || got.State != "idle" {
		t.Fatalf("form not reset: %+v", got)
	}
	if got.Questions[0].Text != "" {
		t.Fatalf("answers not reset: %+v", got.Questions)
	}
}

func TestSubmitLockSchemaFreezesSession(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	s := h.start(t, "lock-json")
	h.fill(t, s.SessionID)

	out, err := h.uc.Submit(context.Background(), s.SessionID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !out.Locked || out.Reset {
		t.Fatalf("expected locked output, got %+v", out)
	}
	if len(h.json.calls()) != 1 {
		t.Fatalf("expected json transport to be used once")
	}
	if _, err := h.uc.AddRow(context.Background(), s.SessionID); !errors.Is(err, apperrors.ErrSessionLocked) {
		t.Fatalf("expected locked session, got %v", err)
	}
	if _, err := h.uc.Submit(context.Background(), s.SessionID); !errors.Is(err, apperrors.ErrAlreadySubmitted) {
		t.Fatalf("expected already submitted, got %v", err)
	}
	got, _ := h.uc.Get(context.Background(), s.SessionID)
	if got.Name != "Ana" || len(got.Readings) != 1 || !got.Readings[0].Valid {
		t.Fatalf("locked session must keep its data: %+v", got)
	}
}

func TestSubmitFailureKeepsDataForRetry(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.form.err = errors.New("dial tcp: connection refused")
	s := h.start(t, "reset-form")
	h.fill(t, s.SessionID)

	out, err := h.uc.Submit(context.Background(), s.SessionID)
	if !errors.Is(err, apperrors.ErrTransportFailure) {
		t.Fatalf("expected transport failure, got %v", err)
	}
	if out.State != "failed" || out.Message != apperrors.MsgSubmitFailed || out.Reset {
		t.Fatalf("unexpected failure output %+v", out)
	}
	got, _ := h.uc.Get(context.Background(), s.SessionID)
	if got.Name != "Ana" || !got.Readings[0].Valid || got.Busy {
		t.Fatalf("failed submit must keep data: %+v", got)
	}

	h.form.mu.Lock()
	h.form.err = nil
	h.form.mu.Unlock()
	if _, err := h.uc.Submit(context.Background(), s.SessionID); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(h.form.calls()) != 2 {
		t.Fatalf("expected a retry to resend")
	}
}

func TestSubmitApplicationFailureShowsServerMessage(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.json.err = &apperrors.ServerMessageError{Kind: apperrors.ErrApplicationFailure, Message: "sheet locked"}
	s := h.start(t, "lock-json")
	h.fill(t, s.SessionID)

	out, err := h.uc.Submit(context.Background(), s.SessionID)
	if !errors.Is(err, apperrors.ErrApplicationFailure) {
		t.Fatalf("expected application failure, got %v", err)
	}
	if out.Message != apperrors.MsgSubmitFailed+" (sheet locked)" || out.Locked {
		t.Fatalf("unexpected output %+v", out)
	}
}

func TestSubmitInProgressRejectsEditsAndSecondSubmit(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.form.entered = make(chan struct{}, 1)
	h.form.gate = make(chan struct{})
	s := h.start(t, "reset-form")
	h.fill(t, s.SessionID)

	done := make(chan error, 1)
	go func() {
		_, err := h.uc.Submit(context.Background(), s.SessionID)
		done <- err
	}()
	<-h.form.entered

	got, err := h.uc.Get(context.Background(), s.SessionID)
	if err != nil || !got.Busy || got.State != "submitting" {
		t.Fatalf("expected busy session, got %+v (%v)", got, err)
	}
	if _, err := h.uc.Submit(context.Background(), s.SessionID); !errors.Is(err, apperrors.ErrSubmitInProgress) {
		t.Fatalf("expected in-progress guard, got %v", err)
	}
	if _, err := h.uc.SetName(context.Background(), s.SessionID, "Bo"); !errors.Is(err, apperrors.ErrSubmitInProgress) {
		t.Fatalf("expected edits to be refused, got %v", err)
	}
	if _, err := h.uc.NewSession(context.Background(), s.SessionID); !errors.Is(err, apperrors.ErrSubmitInProgress) {
		t.Fatalf("expected new session to wait, got %v", err)
	}

	other := h.start(t, "lock-json")
	if _, err := h.uc.SetName(context.Background(), other.SessionID, "Cy"); err != nil {
		t.Fatalf("other sessions must stay editable: %v", err)
	}

	close(h.form.gate)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(h.form.calls()) != 1 {
		t.Fatalf("expected exactly one transmission, got %d", len(h.form.calls()))
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	a := h.start(t, "reset-form")
	b := h.start(t, "reset-form")
	if a.SessionID == b.SessionID {
		t.Fatalf("expected distinct session ids")
	}
	h.fill(t, a.SessionID)
	got, _ := h.uc.Get(context.Background(), b.SessionID)
	if got.Name != "" || got.Readings[0].Valid {
		t.Fatalf("editing one session leaked into another: %+v", got)
	}
}

func TestNewSessionAndClose(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	s := h.start(t, "lock-json")
	h.fill(t, s.SessionID)
	if _, err := h.uc.Submit(context.Background(), s.SessionID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	fresh, err := h.uc.NewSession(context.Background(), s.SessionID)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if fresh.SessionID == s.SessionID || fresh.SchemaID != "lock-json" || fresh.Locked || fresh.Name != "" {
		t.Fatalf("unexpected fresh session %+v", fresh)
	}
	if _, err := h.uc.Get(context.Background(), s.SessionID); !errors.Is(err, apperrors.ErrNoSession) {
		t.Fatalf("old session must be discarded, got %v", err)
	}

	if err := h.uc.Close(context.Background(), fresh.SessionID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := h.uc.Close(context.Background(), fresh.SessionID); !errors.Is(err, apperrors.ErrNoSession) {
		t.Fatalf("expected closing twice to fail, got %v", err)
	}
}

func TestStartUnknownSchema(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	if _, err := h.uc.Start(context.Background(), sessiondto.StartInput{SchemaID: "nope"}); !errors.Is(err, apperrors.ErrUnknownSchema) {
		t.Fatalf("expected unknown schema, got %v", err)
	}
	if _, err := h.uc.Start(context.Background(), sessiondto.StartInput{}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestPreviewSeriesAndToggle(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	s := h.start(t, "reset-form")
	h.fill(t, s.SessionID)
	if _, err := h.uc.AddRow(ctx, s.SessionID); err != nil {
		t.Fatalf("add row: %v", err)
	}
	for field, value := range map[string]string{"ambient": "5", "bird": "39", "behavior": "High Altitude"} {
		if _, err := h.uc.EditField(ctx, sessiondto.EditInput{SessionID: s.SessionID, Index: 1, Field: field, Value: value}); err != nil {
			t.Fatalf("edit %s: %v", field, err)
		}
	}
	for _, opt := range []string{"C", "A"} {
		if _, err := h.uc.ToggleOption(ctx, sessiondto.AnswerInput{SessionID: s.SessionID, QuestionID: "q2", Value: opt}); err != nil {
			t.Fatalf("toggle %s: %v", opt, err)
		}
	}

	series, err := h.uc.Series(ctx, s.SessionID)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if len(series.Low) != 1 || len(series.High) != 1 || series.High[0].Bird != 39 {
		t.Fatalf("unexpected series %+v", series)
	}
	if series.ScatterHigh[0].Ambient <= series.High[0].Ambient {
		t.Fatalf("expected high scatter to shift right: %+v", series)
	}

	preview, err := h.uc.Preview(ctx, s.SessionID)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	keys := []string{}
	values := map[string]string{}
	for _, f := range preview.Fields {
		keys = append(keys, f.Key)
		values[f.Key] = f.Value
	}
	want := []string{"sessionId", "name", "numRows", "q1", "q2", "ambient0", "bird0", "behavior0", "ambient1", "bird1", "behavior1"}
	if len(keys) != len(want) {
		t.Fatalf("unexpected preview keys %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("unexpected preview keys %v", keys)
		}
	}
	if values["q2"] != "A; C" || values["numRows"] != "2" {
		t.Fatalf("unexpected preview values %v", values)
	}

	got, _ := h.uc.Get(ctx, s.SessionID)
	if got.State != "idle" {
		t.Fatalf("preview must not change state, got %s", got.State)
	}
}

func TestEditFieldRejectsBadInput(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	s := h.start(t, "reset-form")
	if _, err := h.uc.EditField(ctx, sessiondto.EditInput{SessionID: s.SessionID, Index: 3, Field: "ambient", Value: "1"}); !errors.Is(err, apperrors.ErrRowOutOfRange) {
		t.Fatalf("expected row out of range, got %v", err)
	}
	if _, err := h.uc.EditField(ctx, sessiondto.EditInput{SessionID: s.SessionID, Index: 0, Field: "wing", Value: "1"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid field, got %v", err)
	}
	if _, err := h.uc.ToggleOption(ctx, sessiondto.AnswerInput{SessionID: s.SessionID, QuestionID: "q2", Value: "Z"}); !errors.Is(err, apperrors.ErrUnknownOption) {
		t.Fatalf("expected unknown option, got %v", err)
	}
	if _, err := h.uc.DeleteRow(ctx, "missing", 0); !errors.Is(err, apperrors.ErrNoSession) {
		t.Fatalf("expected no session, got %v", err)
	}
}

func TestExportPassesSnapshot(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	s := h.start(t, "reset-form")
	h.fill(t, s.SessionID)
	out, err := h.uc.Export(context.Background(), sessiondto.ExportInput{SessionID: s.SessionID, Dir: "reports"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out.Path != "reports/"+s.SessionID+".md" || len(h.exporter.views) != 1 {
		t.Fatalf("unexpected export %+v", out)
	}
	if view := h.exporter.views[0]; view.Name != "Ana" || view.Series.Len() != 1 {
		t.Fatalf("unexpected export view %+v", view)
	}
}

func TestSchemasListsStore(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	schemas, err := h.uc.Schemas(context.Background())
	if err != nil || len(schemas) != 2 || schemas[1].Transport != "json" || len(schemas[0].Questions) != 2 {
		t.Fatalf("unexpected schemas %+v (%v)", schemas, err)
	}
}
