// Package search fans one query out to multiple search providers and gathers
// their raw hits. Providers run concurrently with individual timeouts; a
// failing provider contributes nothing instead of failing the turn.
package search

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/neuraltwin/assistant-engine/pkg/assistant/searchctx"
)

// Provider is one search backend (web, news, or social).
type Provider interface {
	Type() searchctx.SourceType
	Search(ctx context.Context, query string) ([]searchctx.RawResult, error)
}

const defaultProviderTimeout = 3 * time.Second

type Aggregator struct {
	logger    *log.Logger
	providers []Provider
	timeout   time.Duration
}

func NewAggregator(logger *log.Logger, timeout time.Duration, providers ...Provider) *Aggregator {
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	return &Aggregator{
		logger:    logger,
		providers: providers,
		timeout:   timeout,
	}
}

// Search queries all providers concurrently and returns whatever arrived in
// time, keyed by source type. Provider errors and timeouts are logged, never
// propagated.
func (a *Aggregator) Search(ctx context.Context, query string) []searchctx.SourceResults {
	gathered := make([][]searchctx.RawResult, len(a.providers))

	g := new(errgroup.Group)
	for i, provider := range a.providers {
		i, provider := i, provider
		g.Go(func() error {
			providerCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			hits, err := provider.Search(providerCtx, query)
			if err != nil {
				a.logger.Warn("Search provider failed",
					"provider", string(provider.Type()), "error", err)
				return nil
			}
			gathered[i] = hits
			return nil
		})
	}
	_ = g.Wait()

	var sources []searchctx.SourceResults
	for i, provider := range a.providers {
		if len(gathered[i]) == 0 {
			continue
		}
		sources = append(sources, searchctx.SourceResults{
			Type:    provider.Type(),
			Results: gathered[i],
		})
	}
	return sources
}
