package feed

import (
	"context"

	"macro-risk-alerts/internal/rules"
)

// Snapshot providers deliver the raw readings the detectors consume. The
// concrete adapters that talk to upstream market-data vendors live in the
// dashboard's data service; this package only defines the contract plus an
// HTTP client for that service.

// FXProvider retrieves the latest FX pair stats.
type FXProvider interface {
	FetchFX(ctx context.Context) (rules.FXSnapshot, error)
}

// YieldProvider retrieves the latest treasury yield curve.
type YieldProvider interface {
	FetchYields(ctx context.Context) (rules.YieldCurve, error)
}

// CreditProvider retrieves the latest credit spread stats.
type CreditProvider interface {
	FetchCredit(ctx context.Context) (rules.CreditSnapshot, error)
}

// EconomicProvider retrieves recently published economic releases.
type EconomicProvider interface {
	FetchEconomic(ctx context.Context) ([]rules.EconomicRelease, error)
}

// NewsProvider retrieves recent tagged headlines.
type NewsProvider interface {
	FetchNews(ctx context.Context) ([]rules.NewsArticle, error)
}
