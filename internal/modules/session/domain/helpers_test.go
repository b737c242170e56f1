package domain_test

import (
	"time"

	"thermolab/internal/modules/session/domain"
)

var startedAt = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func reflectionSchema(post domain.PostSubmit) domain.Schema {
	return domain.Schema{
		ID:            "test-v1",
		Title:         "Bird Thermoregulation",
		Version:       1,
		PostSubmit:    post,
		Transport:     domain.TransportForm,
		ScatterJitter: 0.2,
		Questions: []domain.Question{
			{ID: "q1", Prompt: "Why?", Kind: domain.AnswerText},
			{ID: "q2", Prompt: "Which?", Kind: domain.AnswerMulti, Options: []string{"A", "B", "C"}},
		},
	}
}

func reading(ambient, bird string, behavior domain.Behavior) domain.Reading {
	return domain.Reading{
		Ambient:  domain.ParseTemperature(ambient),
		Bird:     domain.ParseTemperature(bird),
		Behavior: behavior,
	}
}

// newSession builds a session whose rows are exactly rows.
func newSession(post domain.PostSubmit, rows ...domain.Reading) *domain.Session {
	s := domain.NewSession("S000001", reflectionSchema(post), startedAt)
	_ = s.DeleteRow(0)
	for i, r := range rows {
		_ = s.AddRow()
		_ = s.EditField(i, domain.FieldAmbient, r.Ambient.String())
		_ = s.EditField(i, domain.FieldBird, r.Bird.String())
		_ = s.EditField(i, domain.FieldBehavior, string(r.Behavior))
	}
	return s
}
