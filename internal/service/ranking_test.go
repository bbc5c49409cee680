package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftora/marketplace/internal/domain"
)

var rankingNow = time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)

func liveFeature(product domain.Product, featureType domain.FeatureType) domain.PromotionalFeature {
	return domain.PromotionalFeature{
		ID:        uuid.New(),
		VendorID:  product.VendorID,
		ProductID: product.ID,
		Type:      featureType,
		Status:    domain.FeatureStatusActive,
		StartDate: rankingNow.AddDate(0, 0, -3),
		EndDate:   rankingNow.AddDate(0, 0, 11),
		IsActive:  true,
		Specs:     domain.FeatureSpecs{Placement: "homepage", Priority: 5},
		CreatedAt: rankingNow.AddDate(0, 0, -3),
	}
}

func newTestRanking(pool *memPool, lookup *memProducts) *Ranking {
	ranking := NewRanking(pool, lookup)
	ranking.now = func() time.Time { return rankingNow }
	return ranking
}

func viewerAt(lat, lng float64) ViewerContext {
	return ViewerContext{Lat: lo.ToPtr(lat), Lng: lo.ToPtr(lng)}
}

func TestRankFeatured(t *testing.T) {
	ctx := t.Context()

	t.Run("orders by distance, then priority, then recency", func(t *testing.T) {
		near := testProduct(uuid.New(), 10)
		near.VendorLocation = &domain.GeoPoint{Lat: 48.1, Lng: 11.5}
		far := testProduct(uuid.New(), 10)
		far.VendorLocation = &domain.GeoPoint{Lat: 52.5, Lng: 13.4}
		located := testProduct(uuid.New(), 10)
		located.VendorLocation = &domain.GeoPoint{Lat: 48.2, Lng: 11.6}

		farFeature := liveFeature(far, domain.FeatureTypeFeaturedProduct)
		farFeature.Specs.Priority = 10

		// same vendor coordinates, so priority breaks the tie
		lowPrio := liveFeature(located, domain.FeatureTypeFeaturedProduct)
		lowPrio.Specs.Priority = 2
		highPrio := liveFeature(located, domain.FeatureTypeFeaturedProduct)
		highPrio.Specs.Priority = 8

		pool := newMemPool()
		pool.active[domain.FeatureTypeFeaturedProduct] = []domain.PromotionalFeature{
			farFeature,
			lowPrio,
			liveFeature(near, domain.FeatureTypeFeaturedProduct),
			highPrio,
		}

		got, err := newTestRanking(pool, newMemProducts(near, far, located)).
			RankFeatured(ctx, viewerAt(48.1, 11.5), 10)
		require.NoError(t, err)
		require.Len(t, got, 4)

		assert.Equal(t, near.ID, got[0].Product.ID)
		assert.Equal(t, highPrio.ID, got[1].Feature.ID)
		assert.Equal(t, lowPrio.ID, got[2].Feature.ID)
		assert.Equal(t, far.ID, got[3].Product.ID)
	})

	t.Run("candidates without coordinates never outrank located ones", func(t *testing.T) {
		located := testProduct(uuid.New(), 10)
		located.VendorLocation = &domain.GeoPoint{Lat: 40.0, Lng: -4.0}
		unlocated := testProduct(uuid.New(), 10)

		topPriority := liveFeature(unlocated, domain.FeatureTypeFeaturedProduct)
		topPriority.Specs.Priority = 10

		pool := newMemPool()
		pool.active[domain.FeatureTypeFeaturedProduct] = []domain.PromotionalFeature{
			topPriority,
			liveFeature(located, domain.FeatureTypeFeaturedProduct),
		}

		// viewer very far from the located vendor: real distance still wins
		got, err := newTestRanking(pool, newMemProducts(located, unlocated)).
			RankFeatured(ctx, viewerAt(-40.0, 170.0), 10)
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, located.ID, got[0].Product.ID)
		assert.Equal(t, unlocated.ID, got[1].Product.ID)
		assert.Equal(t, NoDistance, got[1].Distance)
	})

	t.Run("identical keys keep pool order", func(t *testing.T) {
		vendorID := uuid.New()
		productX := testProduct(vendorID, 10)
		productY := testProduct(vendorID, 10)

		featureX := liveFeature(productX, domain.FeatureTypeFeaturedProduct)
		featureY := liveFeature(productY, domain.FeatureTypeFeaturedProduct)
		featureY.CreatedAt = featureX.CreatedAt

		pool := newMemPool()
		pool.active[domain.FeatureTypeFeaturedProduct] = []domain.PromotionalFeature{featureX, featureY}

		got, err := newTestRanking(pool, newMemProducts(productX, productY)).
			RankFeatured(ctx, ViewerContext{}, 10)
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, featureX.ID, got[0].Feature.ID)
		assert.Equal(t, featureY.ID, got[1].Feature.ID)
	})

	t.Run("stale, missing and inactive products are dropped", func(t *testing.T) {
		active := testProduct(uuid.New(), 10)
		inactive := testProduct(uuid.New(), 10)
		inactive.IsActive = false
		missing := testProduct(uuid.New(), 10)

		paused := liveFeature(active, domain.FeatureTypeFeaturedProduct)
		paused.Status = domain.FeatureStatusPaused
		ended := liveFeature(active, domain.FeatureTypeFeaturedProduct)
		ended.EndDate = rankingNow.Add(-time.Hour)

		pool := newMemPool()
		pool.active[domain.FeatureTypeFeaturedProduct] = []domain.PromotionalFeature{
			liveFeature(active, domain.FeatureTypeFeaturedProduct),
			paused,
			ended,
			liveFeature(inactive, domain.FeatureTypeFeaturedProduct),
			liveFeature(missing, domain.FeatureTypeFeaturedProduct),
		}

		got, err := newTestRanking(pool, newMemProducts(active, inactive)).
			RankFeatured(ctx, ViewerContext{}, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, active.ID, got[0].Product.ID)
	})

	t.Run("limit caps the result, non-positive limit yields empty", func(t *testing.T) {
		pool := newMemPool()
		lookup := newMemProducts()
		for range 5 {
			product := testProduct(uuid.New(), 10)
			lookup.add(product)
			pool.active[domain.FeatureTypeFeaturedProduct] = append(
				pool.active[domain.FeatureTypeFeaturedProduct],
				liveFeature(product, domain.FeatureTypeFeaturedProduct),
			)
		}

		ranking := newTestRanking(pool, lookup)

		got, err := ranking.RankFeatured(ctx, ViewerContext{}, 3)
		require.NoError(t, err)
		assert.Len(t, got, 3)

		got, err = ranking.RankFeatured(ctx, ViewerContext{}, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty pool: empty list, no error", func(t *testing.T) {
		got, err := newTestRanking(newMemPool(), newMemProducts()).
			RankFeatured(ctx, ViewerContext{}, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("remaining days surfaced per candidate", func(t *testing.T) {
		product := testProduct(uuid.New(), 10)
		feature := liveFeature(product, domain.FeatureTypeFeaturedProduct)
		feature.EndDate = rankingNow.Add(36 * time.Hour)

		pool := newMemPool()
		pool.active[domain.FeatureTypeFeaturedProduct] = []domain.PromotionalFeature{feature}

		got, err := newTestRanking(pool, newMemProducts(product)).
			RankFeatured(ctx, ViewerContext{}, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 2, got[0].RemainingDays)
	})
}

func TestRankSponsored(t *testing.T) {
	ctx := t.Context()

	t.Run("score components", func(t *testing.T) {
		product := testProduct(uuid.New(), 10)
		product.Category = "ceramics"
		product.VendorLocation = &domain.GeoPoint{Lat: 48.1, Lng: 11.5}

		feature := liveFeature(product, domain.FeatureTypeSponsoredProduct)
		feature.Specs.Keywords = []string{"vase", "handmade", "stoneware"}

		pool := newMemPool()
		pool.active[domain.FeatureTypeSponsoredProduct] = []domain.PromotionalFeature{feature}
		ranking := newTestRanking(pool, newMemProducts(product))

		tests := []struct {
			name      string
			viewer    ViewerContext
			category  string
			query     string
			wantScore float64
		}{
			{
				name:      "base only",
				viewer:    ViewerContext{},
				wantScore: 100,
			},
			{
				name:      "category match adds 50",
				viewer:    ViewerContext{},
				category:  "ceramics",
				wantScore: 150,
			},
			{
				name:      "category mismatch adds nothing",
				viewer:    ViewerContext{},
				category:  "woodwork",
				wantScore: 100,
			},
			{
				name:      "keyword overlap adds 25 per word",
				viewer:    ViewerContext{},
				query:     "Handmade VASE",
				wantScore: 150,
			},
			{
				name:      "viewer at the vendor gets the full proximity bonus",
				viewer:    viewerAt(48.1, 11.5),
				wantScore: 200,
			},
			{
				name:      "everything together",
				viewer:    viewerAt(48.1, 11.5),
				category:  "ceramics",
				query:     "stoneware vase teapot",
				wantScore: 300,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := ranking.RankSponsored(ctx, tt.viewer, 10, tt.category, tt.query)
				require.NoError(t, err)
				require.Len(t, got, 1)
				assert.InDelta(t, tt.wantScore, got[0].RelevanceScore, 1e-9)
			})
		}
	})

	t.Run("proximity bonus decays and bottoms out at zero", func(t *testing.T) {
		product := testProduct(uuid.New(), 10)
		// ~5 units away on the scaled plane: bonus 100 - 5*10 = 50
		product.VendorLocation = &domain.GeoPoint{Lat: 3000, Lng: 4000}

		feature := liveFeature(product, domain.FeatureTypeSponsoredProduct)
		pool := newMemPool()
		pool.active[domain.FeatureTypeSponsoredProduct] = []domain.PromotionalFeature{feature}
		ranking := newTestRanking(pool, newMemProducts(product))

		got, err := ranking.RankSponsored(ctx, viewerAt(0, 0), 10, "", "")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.InDelta(t, 150, got[0].RelevanceScore, 1e-9)

		// push the vendor past the decay range: bonus clamps at zero
		product.VendorLocation = &domain.GeoPoint{Lat: 30000, Lng: 40000}
		ranking = newTestRanking(pool, newMemProducts(product))

		got, err = ranking.RankSponsored(ctx, viewerAt(0, 0), 10, "", "")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.InDelta(t, 100, got[0].RelevanceScore, 1e-9)
	})

	t.Run("identical scores, priorities and distances keep pool order", func(t *testing.T) {
		vendorID := uuid.New()
		productX := testProduct(vendorID, 10)
		productY := testProduct(vendorID, 10)

		featureX := liveFeature(productX, domain.FeatureTypeSponsoredProduct)
		featureY := liveFeature(productY, domain.FeatureTypeSponsoredProduct)

		pool := newMemPool()
		pool.active[domain.FeatureTypeSponsoredProduct] = []domain.PromotionalFeature{featureX, featureY}

		got, err := newTestRanking(pool, newMemProducts(productX, productY)).
			RankSponsored(ctx, ViewerContext{}, 10, "", "")
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, got[0].RelevanceScore, got[1].RelevanceScore)
		assert.Equal(t, featureX.ID, got[0].Feature.ID)
		assert.Equal(t, featureY.ID, got[1].Feature.ID)
	})

	t.Run("orders by score, then priority, then distance", func(t *testing.T) {
		matched := testProduct(uuid.New(), 10)
		matched.Category = "ceramics"
		plainNear := testProduct(uuid.New(), 10)
		plainNear.VendorLocation = &domain.GeoPoint{Lat: 10000, Lng: 0}
		plainFar := testProduct(uuid.New(), 10)
		plainFar.VendorLocation = &domain.GeoPoint{Lat: 20000, Lng: 0}

		// both plain candidates score the bare base: distance decides
		matchedFeature := liveFeature(matched, domain.FeatureTypeSponsoredProduct)
		nearFeature := liveFeature(plainNear, domain.FeatureTypeSponsoredProduct)
		farFeature := liveFeature(plainFar, domain.FeatureTypeSponsoredProduct)

		pool := newMemPool()
		pool.active[domain.FeatureTypeSponsoredProduct] = []domain.PromotionalFeature{
			farFeature, nearFeature, matchedFeature,
		}

		got, err := newTestRanking(pool, newMemProducts(matched, plainNear, plainFar)).
			RankSponsored(ctx, viewerAt(0, 0), 10, "ceramics", "")
		require.NoError(t, err)
		require.Len(t, got, 3)

		assert.Equal(t, matched.ID, got[0].Product.ID)
		assert.Equal(t, plainNear.ID, got[1].Product.ID)
		assert.Equal(t, plainFar.ID, got[2].Product.ID)
	})
}
