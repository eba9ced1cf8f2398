package interfaces

import (
	"context"

	"portfolio-advisor/internal/types"
)

// HoldingsStore keeps the holdings of each upload session.
type HoldingsStore interface {
	Replace(ctx context.Context, sessionID string, holdings []types.Holding) error
	List(ctx context.Context, sessionID string) ([]types.Holding, error)
	Sessions(ctx context.Context) ([]string, error)
	Close() error
}

type HoldingsSource interface {
	Holdings(ctx context.Context) ([]types.Holding, error)
}

type Reporter interface {
	Write(summary types.RunSummary) (path string, err error)
}
