package out

import (
	"context"

	"thermolab/internal/modules/session/domain"
)

// Submitter transmits one payload to the collector in a single attempt.
type Submitter interface {
	Submit(ctx context.Context, payload domain.Payload) (domain.Receipt, error)
}

type SchemaStore interface {
	List(ctx context.Context) ([]domain.Schema, error)
	Get(ctx context.Context, id string) (domain.Schema, error)
}

// Exporter writes a printable rendering of a session and returns its path.
type Exporter interface {
	Export(ctx context.Context, dir string, view domain.ExportView) (string, error)
}
