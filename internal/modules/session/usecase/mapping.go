package usecase

import (
	"thermolab/internal/modules/session/domain"
	sessiondto "thermolab/internal/modules/session/dto"
	apperrors "thermolab/internal/platform/errors"
)

func toSessionOutput(s *domain.Session) sessiondto.SessionOutput {
	out := sessiondto.SessionOutput{
		SessionID:   s.ID(),
		SchemaID:    s.Schema().ID,
		SchemaTitle: s.Schema().Title,
		Name:        s.Name(),
		State:       s.State().String(),
		Submitted:   s.State() == domain.StateSubmitted,
		Locked:      s.Locked(),
		Busy:        s.State() == domain.StateSubmitting || s.State() == domain.StateValidating,
		StartedAt:   s.StartedAt(),
	}
	if err := s.LastError(); err != nil {
		out.LastError = apperrors.UserMessage(err)
	}
	for idx, r := range s.Readings() {
		out.Readings = append(out.Readings, sessiondto.ReadingOutput{
			Index:    idx,
			Ambient:  r.Ambient.String(),
			Bird:     r.Bird.String(),
			Behavior: string(r.Behavior),
			Valid:    r.Valid(),
		})
	}
	answers := s.Answers()
	for _, q := range s.Schema().Questions {
		qo := toQuestionOutput(q)
		qo.Text = answers[q.ID].Text
		qo.Selected = append([]string(nil), answers[q.ID].Selected...)
		qo.Value = answers.Wire(q)
		out.Questions = append(out.Questions, qo)
	}
	return out
}

func toQuestionOutput(q domain.Question) sessiondto.QuestionOutput {
	return sessiondto.QuestionOutput{
		ID:      q.ID,
		Prompt:  q.Prompt,
		Kind:    string(q.Kind),
		Options: append([]string(nil), q.Options...),
	}
}

func toSchemaOutput(s domain.Schema) sessiondto.SchemaOutput {
	out := sessiondto.SchemaOutput{
		ID:            s.ID,
		Title:         s.Title,
		Version:       s.Version,
		PostSubmit:    string(s.PostSubmit),
		Transport:     string(s.Transport),
		ScatterJitter: s.ScatterJitter,
	}
	for _, q := range s.Questions {
		out.Questions = append(out.Questions, toQuestionOutput(q))
	}
	return out
}

func toSeriesOutput(series domain.Series, jitter float64) sessiondto.SeriesOutput {
	scatter := series.Scatter(jitter)
	return sessiondto.SeriesOutput{
		Low:         toPoints(series.Low),
		High:        toPoints(series.High),
		ScatterLow:  toPoints(scatter.Low),
		ScatterHigh: toPoints(scatter.High),
	}
}

func toPoints(points []domain.Point) []sessiondto.PointOutput {
	out := make([]sessiondto.PointOutput, len(points))
	for i, p := range points {
		out[i] = sessiondto.PointOutput{Ambient: p.Ambient, Bird: p.Bird}
	}
	return out
}

func submitOutput(s *domain.Session, state domain.State, rows int, err error) sessiondto.SubmitOutput {
	return sessiondto.SubmitOutput{
		SessionID: s.ID(),
		State:     state.String(),
		Rows:      rows,
		Reset:     err == nil && state == domain.StateSubmitted && s.Schema().PostSubmit == domain.PostSubmitReset,
		Locked:    s.Locked(),
		Message:   apperrors.UserMessage(err),
	}
}
