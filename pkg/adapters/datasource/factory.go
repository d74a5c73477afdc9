package datasource

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/rental-insights/pkg/apperrors"
)

// NewReader opens a SnapshotReader for dsType using the registered adapter.
// Adapters register themselves when their package is imported.
func NewReader(ctx context.Context, dsType string, config map[string]any, logger *zap.Logger) (SnapshotReader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	key := strings.ToLower(strings.TrimSpace(dsType))
	factory := GetFactory(key)
	if factory == nil {
		return nil, fmt.Errorf("%w: %q (registered: %s)", apperrors.ErrUnsupportedDialect, dsType, registeredTypes())
	}
	return factory(ctx, config, logger.With(zap.String("datasource", key)))
}

func registeredTypes() string {
	infos := RegisteredAdapters()
	if len(infos) == 0 {
		return "none"
	}
	types := make([]string, len(infos))
	for i, info := range infos {
		types[i] = info.Type
	}
	return strings.Join(types, ", ")
}
