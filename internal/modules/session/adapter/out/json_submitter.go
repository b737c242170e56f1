package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"thermolab/internal/modules/session/domain"
	sessionout "thermolab/internal/modules/session/port/out"
	apperrors "thermolab/internal/platform/errors"
)

// StatusSuccess is the only acknowledgment status that counts as recorded.
const StatusSuccess = "success"

type acknowledgment struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// JSONSubmitter posts the flattened fields as a JSON object and requires the
// collector to answer {"status":"success"}. A delivered request that the
// collector did not accept is an application failure, not a transport one.
type JSONSubmitter struct {
	cfg    HTTPConfig
	client *http.Client
}

func NewJSONSubmitter(cfg HTTPConfig) sessionout.Submitter {
	return &JSONSubmitter{cfg: cfg, client: cfg.client()}
}

func (s *JSONSubmitter) Submit(ctx context.Context, payload domain.Payload) (domain.Receipt, error) {
	body, err := json.Marshal(payload.Map())
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("%w: encode payload: %w", apperrors.ErrTransportFailure, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.endpoint(), bytes.NewReader(body))
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("%w: build request: %w", apperrors.ErrTransportFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("%w: %w", apperrors.ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	receipt := domain.Receipt{HTTPStatus: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, drainLimit))
	if err != nil {
		return receipt, fmt.Errorf("%w: read response: %w", apperrors.ErrTransportFailure, err)
	}

	ack := acknowledgment{}
	decodeErr := json.Unmarshal(raw, &ack)
	receipt.Status = ack.Status
	receipt.Message = ack.Message

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && ack.Message != "" {
			return receipt, &apperrors.ServerMessageError{Kind: apperrors.ErrApplicationFailure, Message: ack.Message}
		}
		return receipt, fmt.Errorf("%w: collector answered %s", apperrors.ErrTransportFailure, resp.Status)
	}
	if decodeErr != nil {
		return receipt, fmt.Errorf("%w: undecodable acknowledgment: %w", apperrors.ErrApplicationFailure, decodeErr)
	}
	if !strings.EqualFold(strings.TrimSpace(ack.Status), StatusSuccess) {
		msg := ack.Message
		if msg == "" {
			msg = fmt.Sprintf("status %q", ack.Status)
		}
		return receipt, &apperrors.ServerMessageError{Kind: apperrors.ErrApplicationFailure, Message: msg}
	}
	return receipt, nil
}
