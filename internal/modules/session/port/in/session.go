package in

import (
	"context"

	"thermolab/internal/modules/session/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error)
	Get(ctx context.Context, sessionID string) (dto.SessionOutput, error)
	Close(ctx context.Context, sessionID string) error
	NewSession(ctx context.Context, sessionID string) (dto.SessionOutput, error)

	SetName(ctx context.Context, sessionID, name string) (dto.SessionOutput, error)
	AddRow(ctx context.Context, sessionID string) (dto.SessionOutput, error)
	EditField(ctx context.Context, input dto.EditInput) (dto.SessionOutput, error)
	DeleteRow(ctx context.Context, sessionID string, index int) (dto.SessionOutput, error)
	SetText(ctx context.Context, input dto.AnswerInput) (dto.SessionOutput, error)
	ToggleOption(ctx context.Context, input dto.AnswerInput) (dto.SessionOutput, error)

	Series(ctx context.Context, sessionID string) (dto.SeriesOutput, error)
	Preview(ctx context.Context, sessionID string) (dto.PreviewOutput, error)
	Submit(ctx context.Context, sessionID string) (dto.SubmitOutput, error)
	Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)

	Schemas(ctx context.Context) ([]dto.SchemaOutput, error)
}
