package in

import (
	"context"
	"fmt"
	"strings"

	sessiondto "thermolab/internal/modules/session/dto"
	sessionin "thermolab/internal/modules/session/port/in"
	apperrors "thermolab/internal/platform/errors"
)

// FormInput is a whole form given on the command line.
type FormInput struct {
	SchemaID string
	Name     string
	// Readings are "ambient,bird[,behavior]" triples.
	Readings []string
	// Answers are "question=value"; multi-select values separate options with "|".
	Answers []string
}

type RowInput struct {
	Ambient  string
	Bird     string
	Behavior string
}

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Fill starts a session and enters everything in input. The session stays
// open for Submit, Preview or Export.
func (h CLIHandler) Fill(ctx context.Context, input FormInput) (sessiondto.SessionOutput, error) {
	rows := make([]RowInput, 0, len(input.Readings))
	for _, raw := range input.Readings {
		row, err := ParseReading(raw)
		if err != nil {
			return sessiondto.SessionOutput{}, err
		}
		rows = append(rows, row)
	}

	out, err := h.usecase.Start(ctx, sessiondto.StartInput{SchemaID: input.SchemaID})
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	id := out.SessionID
	fail := func(err error) (sessiondto.SessionOutput, error) {
		_ = h.usecase.Close(ctx, id)
		return sessiondto.SessionOutput{}, err
	}

	if out, err = h.usecase.SetName(ctx, id, input.Name); err != nil {
		return fail(err)
	}
	if len(rows) > 0 {
		if out, err = h.usecase.DeleteRow(ctx, id, 0); err != nil {
			return fail(err)
		}
	}
	for idx, row := range rows {
		if out, err = h.usecase.AddRow(ctx, id); err != nil {
			return fail(err)
		}
		for _, edit := range []sessiondto.EditInput{
			{SessionID: id, Index: idx, Field: "ambient", Value: row.Ambient},
			{SessionID: id, Index: idx, Field: "bird", Value: row.Bird},
			{SessionID: id, Index: idx, Field: "behavior", Value: row.Behavior},
		} {
			if out, err = h.usecase.EditField(ctx, edit); err != nil {
				return fail(err)
			}
		}
	}

	kinds := map[string]string{}
	for _, q := range out.Questions {
		kinds[q.ID] = q.Kind
	}
	for _, raw := range input.Answers {
		questionID, value, ok := strings.Cut(raw, "=")
		questionID = strings.TrimSpace(questionID)
		if !ok || questionID == "" {
			return fail(fmt.Errorf("%w: answer %q must look like question=value", apperrors.ErrInvalidInput, raw))
		}
		kind, known := kinds[questionID]
		if !known {
			return fail(fmt.Errorf("%w: %q", apperrors.ErrUnknownQuestion, questionID))
		}
		if kind != "multi" {
			if out, err = h.usecase.SetText(ctx, sessiondto.AnswerInput{SessionID: id, QuestionID: questionID, Value: value}); err != nil {
				return fail(err)
			}
			continue
		}
		for _, opt := range strings.Split(value, "|") {
			if opt = strings.TrimSpace(opt); opt == "" {
				continue
			}
			if out, err = h.usecase.ToggleOption(ctx, sessiondto.AnswerInput{SessionID: id, QuestionID: questionID, Value: opt}); err != nil {
				return fail(err)
			}
		}
	}
	return out, nil
}

func (h CLIHandler) Submit(ctx context.Context, sessionID string) (sessiondto.SubmitOutput, error) {
	return h.usecase.Submit(ctx, sessionID)
}

func (h CLIHandler) Preview(ctx context.Context, sessionID string) (sessiondto.PreviewOutput, error) {
	return h.usecase.Preview(ctx, sessionID)
}

func (h CLIHandler) Export(ctx context.Context, sessionID, dir string) (sessiondto.ExportOutput, error) {
	return h.usecase.Export(ctx, sessiondto.ExportInput{SessionID: sessionID, Dir: dir})
}

func (h CLIHandler) Close(ctx context.Context, sessionID string) error {
	return h.usecase.Close(ctx, sessionID)
}

func (h CLIHandler) Schemas(ctx context.Context) ([]sessiondto.SchemaOutput, error) {
	return h.usecase.Schemas(ctx)
}

func (h CLIHandler) Schema(ctx context.Context, schemaID string) (sessiondto.SchemaOutput, error) {
	schemas, err := h.usecase.Schemas(ctx)
	if err != nil {
		return sessiondto.SchemaOutput{}, err
	}
	for _, s := range schemas {
		if s.ID == schemaID {
			return s, nil
		}
	}
	return sessiondto.SchemaOutput{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownSchema, schemaID)
}

// ParseReading splits "ambient,bird[,behavior]". Temperatures are passed
// through unparsed; behavior defaults to Low Altitude.
func ParseReading(raw string) (RowInput, error) {
	parts := strings.Split(raw, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return RowInput{}, fmt.Errorf("%w: reading %q must look like ambient,bird[,behavior]", apperrors.ErrInvalidInput, raw)
	}
	row := RowInput{Ambient: strings.TrimSpace(parts[0]), Bird: strings.TrimSpace(parts[1]), Behavior: "low"}
	if len(parts) == 3 && strings.TrimSpace(parts[2]) != "" {
		row.Behavior = strings.TrimSpace(parts[2])
	}
	return row, nil
}
