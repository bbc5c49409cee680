package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/craftora/marketplace/internal/domain"
	"github.com/craftora/marketplace/internal/port"
)

// NoDistance ranks candidates without coordinates after every located one.
const NoDistance = 999999.0

const (
	sponsoredBaseScore  = 100.0
	categoryMatchScore  = 50.0
	keywordMatchScore   = 25.0
	proximityBonusCeil  = 100.0
	proximityDecayPerKm = 10.0
)

// ViewerContext is the placement request: where the viewer is, nothing more.
type ViewerContext struct {
	Lat *float64
	Lng *float64
}

// RankedProduct is one scored placement candidate.
type RankedProduct struct {
	Feature domain.PromotionalFeature
	Product domain.Product

	Distance       float64
	RelevanceScore float64
	RemainingDays  int
}

// Ranking scores live promotional records against a viewer context.
// Scoring runs over already-fetched in-memory candidates; the pool and
// catalog are only consulted to assemble them.
type Ranking struct {
	pool     port.PromotionPool
	products port.ProductLookup

	now func() time.Time
}

func NewRanking(pool port.PromotionPool, products port.ProductLookup) *Ranking {
	return &Ranking{
		pool:     pool,
		products: products,
		now:      time.Now,
	}
}

// RankFeatured returns up to limit featured placements ordered by distance
// to the viewer, then placement priority, then recency. Candidates missing
// coordinates on either side rank after every located candidate. The sort
// is stable: candidates with identical keys keep their pool order.
func (r *Ranking) RankFeatured(ctx context.Context, viewer ViewerContext, limit int) ([]RankedProduct, error) {
	candidates, err := r.collect(ctx, domain.FeatureTypeFeaturedProduct, viewer)
	if err != nil {
		return nil, fmt.Errorf("r.collect: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.Feature.Specs.Priority != b.Feature.Specs.Priority {
			return a.Feature.Specs.Priority > b.Feature.Specs.Priority
		}
		return a.Feature.CreatedAt.After(b.Feature.CreatedAt)
	})

	return capped(candidates, limit), nil
}

// RankSponsored returns up to limit sponsored placements ordered by
// relevance score, then priority, then distance. The score combines a
// base sponsored boost with category match, search keyword overlap and
// a proximity bonus.
func (r *Ranking) RankSponsored(ctx context.Context, viewer ViewerContext, limit int, category, searchQuery string) ([]RankedProduct, error) {
	candidates, err := r.collect(ctx, domain.FeatureTypeSponsoredProduct, viewer)
	if err != nil {
		return nil, fmt.Errorf("r.collect: %w", err)
	}

	for i := range candidates {
		candidates[i].RelevanceScore = relevanceScore(candidates[i], category, searchQuery)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		if a.Feature.Specs.Priority != b.Feature.Specs.Priority {
			return a.Feature.Specs.Priority > b.Feature.Specs.Priority
		}
		return a.Distance < b.Distance
	})

	return capped(candidates, limit), nil
}

// collect joins live records with their products, silently dropping
// records whose product is gone or inactive: expired placements simply
// don't surface, they are not an error.
func (r *Ranking) collect(ctx context.Context, featureType domain.FeatureType, viewer ViewerContext) ([]RankedProduct, error) {
	records, err := r.pool.ActiveRecords(ctx, featureType)
	if err != nil {
		return nil, fmt.Errorf("pool.ActiveRecords: %w", err)
	}

	now := r.now()

	candidates := make([]RankedProduct, 0, len(records))
	for _, record := range records {
		if !record.IsLive(now) {
			continue
		}

		product, err := r.products.Get(ctx, record.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("products.Get %s: %w", record.ProductID, err)
		}
		if !product.IsActive {
			continue
		}

		candidates = append(candidates, RankedProduct{
			Feature:       record,
			Product:       product,
			Distance:      distanceTo(viewer, product.VendorLocation),
			RemainingDays: record.RemainingDays(now),
		})
	}

	return candidates, nil
}

// distanceTo is the planar approximation used upstream: degrees treated as
// a flat plane, scaled down by 1000. Not geodesic, only ordinal.
func distanceTo(viewer ViewerContext, vendor *domain.GeoPoint) float64 {
	if viewer.Lat == nil || viewer.Lng == nil || vendor == nil {
		return NoDistance
	}

	dLat := *viewer.Lat - vendor.Lat
	dLng := *viewer.Lng - vendor.Lng
	return math.Sqrt(dLat*dLat+dLng*dLng) / 1000
}

func relevanceScore(candidate RankedProduct, category, searchQuery string) float64 {
	score := sponsoredBaseScore

	if category != "" && candidate.Product.Category == category {
		score += categoryMatchScore
	}

	if searchQuery != "" {
		score += keywordMatchScore * float64(keywordOverlap(searchQuery, candidate.Feature.Specs.Keywords))
	}

	if candidate.Distance != NoDistance {
		score += math.Max(0, proximityBonusCeil-candidate.Distance*proximityDecayPerKm)
	}

	return score
}

// keywordOverlap counts query words present in the record's keyword list,
// case-insensitive.
func keywordOverlap(searchQuery string, keywords []string) int {
	if len(keywords) == 0 {
		return 0
	}

	keywordSet := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		keywordSet[strings.ToLower(kw)] = struct{}{}
	}

	count := 0
	for _, word := range strings.Fields(strings.ToLower(searchQuery)) {
		if _, ok := keywordSet[word]; ok {
			count++
		}
	}

	return count
}

func capped(candidates []RankedProduct, limit int) []RankedProduct {
	if limit <= 0 {
		return []RankedProduct{}
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
