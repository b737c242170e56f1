package out

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"thermolab/internal/modules/session/domain"
	sessionout "thermolab/internal/modules/session/port/out"
	apperrors "thermolab/internal/platform/errors"
)

// FormSubmitter posts the payload URL-encoded and treats any completed HTTP
// exchange as success. Spreadsheet script endpoints answer with redirects or
// opaque pages, so the response body carries no usable acknowledgment.
type FormSubmitter struct {
	cfg    HTTPConfig
	client *http.Client
}

func NewFormSubmitter(cfg HTTPConfig) sessionout.Submitter {
	return &FormSubmitter{cfg: cfg, client: cfg.client()}
}

func (s *FormSubmitter) Submit(ctx context.Context, payload domain.Payload) (domain.Receipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.endpoint(), strings.NewReader(payload.Encode()))
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("%w: build request: %w", apperrors.ErrTransportFailure, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("%w: %w", apperrors.ErrTransportFailure, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
	return domain.Receipt{HTTPStatus: resp.StatusCode}, nil
}
