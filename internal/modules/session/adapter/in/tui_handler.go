package in

import (
	"context"

	sessiondto "thermolab/internal/modules/session/dto"
	sessionin "thermolab/internal/modules/session/port/in"
)

// TUIHandler exposes the session usecase one edit at a time, the way the
// interactive form drives it.
type TUIHandler struct {
	usecase sessionin.Usecase
}

func NewTUIHandler(usecase sessionin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.SessionOutput, error) {
	return h.usecase.Start(ctx, input)
}

func (h TUIHandler) Get(ctx context.Context, sessionID string) (sessiondto.SessionOutput, error) {
	return h.usecase.Get(ctx, sessionID)
}

func (h TUIHandler) NewSession(ctx context.Context, sessionID string) (sessiondto.SessionOutput, error) {
	return h.usecase.NewSession(ctx, sessionID)
}

func (h TUIHandler) SetName(ctx context.Context, sessionID, name string) (sessiondto.SessionOutput, error) {
	return h.usecase.SetName(ctx, sessionID, name)
}

func (h TUIHandler) AddRow(ctx context.Context, sessionID string) (sessiondto.SessionOutput, error) {
	return h.usecase.AddRow(ctx, sessionID)
}

func (h TUIHandler) EditField(ctx context.Context, input sessiondto.EditInput) (sessiondto.SessionOutput, error) {
	return h.usecase.EditField(ctx, input)
}

func (h TUIHandler) DeleteRow(ctx context.Context, sessionID string, index int) (sessiondto.SessionOutput, error) {
	return h.usecase.DeleteRow(ctx, sessionID, index)
}

func (h TUIHandler) SetText(ctx context.Context, input sessiondto.AnswerInput) (sessiondto.SessionOutput, error) {
	return h.usecase.SetText(ctx, input)
}

func (h TUIHandler) ToggleOption(ctx context.Context, input sessiondto.AnswerInput) (sessiondto.SessionOutput, error) {
	return h.usecase.ToggleOption(ctx, input)
}

func (h TUIHandler) Series(ctx context.Context, sessionID string) (sessiondto.SeriesOutput, error) {
	return h.usecase.Series(ctx, sessionID)
}

func (h TUIHandler) Submit(ctx context.Context, sessionID string) (sessiondto.SubmitOutput, error) {
	return h.usecase.Submit(ctx, sessionID)
}

func (h TUIHandler) Export(ctx context.Context, input sessiondto.ExportInput) (sessiondto.ExportOutput, error) {
	return h.usecase.Export(ctx, input)
}
