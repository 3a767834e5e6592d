// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/verdure/internal/catalog"
	"github.com/tomtom215/verdure/internal/identity"
	"github.com/tomtom215/verdure/internal/logging"
	"github.com/tomtom215/verdure/internal/metrics"
)

// CatalogReader supplies the full item collection.
type CatalogReader interface {
	ListItems(ctx context.Context) ([]catalog.Item, error)
}

// FavoritesLister supplies persisted favorites when no live ledger exists.
type FavoritesLister interface {
	ListFavorites(ctx context.Context, userID string) ([]string, error)
}

// Recommender reads the catalog and favorites and ranks candidates.
type Recommender struct {
	catalog   CatalogReader
	favorites FavoritesLister
	logger    zerolog.Logger
}

// NewRecommender creates a Recommender.
func NewRecommender(items CatalogReader, favorites FavoritesLister) *Recommender {
	return &Recommender{
		catalog:   items,
		favorites: favorites,
		logger:    logging.WithComponent("recommend"),
	}
}

// GetRecommendedPlants ranks candidates against the user's persisted
// favorites. A favorites read failure ranks against an empty set.
func (r *Recommender) GetRecommendedPlants(ctx context.Context, userID string) ([]catalog.Item, error) {
	if err := identity.Require(userID); err != nil {
		return nil, err
	}

	ids, err := r.favorites.ListFavorites(ctx, userID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Favorites unavailable, ranking without affinity")
		ids = nil
	}
	return r.Recommend(ctx, userID, catalog.NewIDSet(ids...))
}

// Recommend ranks candidates against an explicit favorites set, typically
// the snapshot of a live ledger.
func (r *Recommender) Recommend(ctx context.Context, userID string, favs catalog.IDSet) ([]catalog.Item, error) {
	if err := identity.Require(userID); err != nil {
		return nil, err
	}

	items, err := r.catalog.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	start := time.Now()
	ranked := Rank(items, favs, userID)
	elapsed := time.Since(start)
	metrics.RecordRank(elapsed, len(ranked))

	r.logger.Debug().
		Str("user_id", userID).
		Int("catalog", len(items)).
		Int("favorites", len(favs)).
		Int("candidates", len(ranked)).
		Dur("duration", elapsed).
		Msg("Ranked candidates")

	return ranked, nil
}
