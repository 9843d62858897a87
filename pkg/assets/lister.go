package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"cross-chain-flow/pkg/types"
)

// TokenSource returns the tokens one provider supports
type TokenSource interface {
	GetTokens(ctx context.Context, provider types.ProviderKind) ([]types.Token, error)
}

// Lister collects the token lists of every known provider
type Lister struct {
	source    TokenSource
	providers []types.ProviderKind
	logger    zerolog.Logger
}

// NewLister creates a lister over all known providers
func NewLister(source TokenSource, logger zerolog.Logger) *Lister {
	return &Lister{
		source:    source,
		providers: types.Providers,
		logger:    logger.With().Str("component", "assets").Logger(),
	}
}

// List queries every provider concurrently and waits for all of them. A failed
// provider is reported in its entry; List only errors when every call failed.
func (l *Lister) List(ctx context.Context) ([]types.ProviderTokens, error) {
	results := make([]types.ProviderTokens, len(l.providers))

	var g errgroup.Group
	for i, provider := range l.providers {
		g.Go(func() error {
			entry := types.ProviderTokens{Provider: provider, Tokens: []types.Token{}}
			tokens, err := l.source.GetTokens(ctx, provider)
			if err != nil {
				l.logger.Warn().Err(err).Str("provider", string(provider)).Msg("Token list failed")
				entry.Error = err.Error()
			} else if tokens != nil {
				entry.Tokens = tokens
			}
			results[i] = entry
			return nil
		})
	}
	_ = g.Wait()

	var failures []string
	for _, r := range results {
		if r.Error != "" {
			failures = append(failures, fmt.Sprintf("%s: %s", r.Provider, r.Error))
		}
	}
	if len(results) > 0 && len(failures) == len(results) {
		return results, errors.New("all token list requests failed: " + strings.Join(failures, "; "))
	}

	return results, nil
}
