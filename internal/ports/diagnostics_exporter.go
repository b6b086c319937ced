package ports

import (
	"context"

	"github.com/bnema/arcprompt/internal/domain"
)

type DiagnosticsExporter interface {
	ExportDiagnostics(ctx context.Context, records []domain.FallbackRecord, stats domain.FallbackStats) (string, error)
}
