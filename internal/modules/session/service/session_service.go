package service

import (
	"context"
	"errors"
	"fmt"

	"thermolab/internal/modules/session/domain"
	sessionout "thermolab/internal/modules/session/port/out"
	"thermolab/internal/platform/clock"
	apperrors "thermolab/internal/platform/errors"
	"thermolab/internal/platform/id"
	"thermolab/internal/platform/logging"
)

type SessionService struct {
	clock      clock.Clock
	idGen      id.Generator
	submitters map[domain.TransportKind]sessionout.Submitter
	exporter   sessionout.Exporter
	logger     *logging.Logger
}

func NewSessionService(
	clock clock.Clock,
	idGen id.Generator,
	submitters map[domain.TransportKind]sessionout.Submitter,
	exporter sessionout.Exporter,
	logger *logging.Logger,
) *SessionService {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &SessionService{clock: clock, idGen: idGen, submitters: submitters, exporter: exporter, logger: logger}
}

func (s *SessionService) Start(schema domain.Schema) (*domain.Session, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	session := domain.NewSession(s.idGen.New(), schema, s.clock.Now())
	s.logger.WithSession(session.ID()).Info("session started", "schema", schema.ID)
	return session, nil
}

// Transmit sends payload with the transport the schema asks for. Every error
// it returns wraps ErrTransportFailure or ErrApplicationFailure.
func (s *SessionService) Transmit(ctx context.Context, schema domain.Schema, payload domain.Payload) error {
	log := s.logger.WithSession(payload.SessionID).With("transport", string(schema.Transport))
	submitter, ok := s.submitters[schema.Transport]
	if !ok || submitter == nil {
		return fmt.Errorf("%w: no submitter for transport %q", apperrors.ErrTransportFailure, schema.Transport)
	}
	log.Debug("submitting", "rows", payload.NumRows(), "fields", len(payload.Fields))
	receipt, err := submitter.Submit(ctx, payload)
	if err != nil {
		if !errors.Is(err, apperrors.ErrTransportFailure) && !errors.Is(err, apperrors.ErrApplicationFailure) {
			err = fmt.Errorf("%w: %w", apperrors.ErrTransportFailure, err)
		}
		log.Warn("submission failed", "error", err.Error(), "http_status", receipt.HTTPStatus)
		return err
	}
	log.Info("submission accepted", "rows", payload.NumRows(), "http_status", receipt.HTTPStatus, "status", receipt.Status)
	return nil
}

func (s *SessionService) Export(ctx context.Context, dir string, session *domain.Session) (string, error) {
	if s.exporter == nil {
		return "", fmt.Errorf("exporter is not configured")
	}
	path, err := s.exporter.Export(ctx, dir, session.ExportView(s.clock.Now()))
	if err != nil {
		return "", err
	}
	s.logger.WithSession(session.ID()).Info("session exported", "path", path)
	return path, nil
}
