package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/craftora/marketplace/internal/service"
)

const defaultPlacementLimit = 10

type rankedProductResponse struct {
	FeatureID      uuid.UUID `json:"feature_id"`
	FeatureType    string    `json:"feature_type"`
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Category       string    `json:"category"`
	Price          string    `json:"price"`
	Currency       string    `json:"currency"`
	ArtisanID      uuid.UUID `json:"artisan_id"`
	Priority       int       `json:"priority"`
	Distance       *float64  `json:"distance,omitempty"`
	RelevanceScore float64   `json:"relevance_score"`
	RemainingDays  int       `json:"remaining_days"`
}

func (s *Server) featuredProducts(c *gin.Context) {
	viewer, limit, ok := placementQuery(c)
	if !ok {
		return
	}

	ranked, err := s.ranking.RankFeatured(c.Request.Context(), viewer, limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "products": toRankedResponses(ranked)})
}

func (s *Server) sponsoredProducts(c *gin.Context) {
	viewer, limit, ok := placementQuery(c)
	if !ok {
		return
	}

	ranked, err := s.ranking.RankSponsored(c.Request.Context(), viewer, limit,
		c.Query("category"), c.Query("searchQuery"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "products": toRankedResponses(ranked)})
}

func placementQuery(c *gin.Context) (service.ViewerContext, int, bool) {
	var viewer service.ViewerContext

	limit := defaultPlacementLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid limit"})
			return viewer, 0, false
		}
		limit = parsed
	}

	lat, latErr := strconv.ParseFloat(c.Query("userLat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("userLng"), 64)
	if latErr == nil && lngErr == nil {
		viewer.Lat = &lat
		viewer.Lng = &lng
	}

	return viewer, limit, true
}

func toRankedResponses(ranked []service.RankedProduct) []rankedProductResponse {
	return lo.Map(ranked, func(r service.RankedProduct, _ int) rankedProductResponse {
		resp := rankedProductResponse{
			FeatureID:      r.Feature.ID,
			FeatureType:    string(r.Feature.Type),
			ProductID:      r.Product.ID,
			ProductName:    r.Product.Name,
			Category:       r.Product.Category,
			Price:          r.Product.Price.Amount.StringFixed(2),
			Currency:       r.Product.Price.Currency.String(),
			ArtisanID:      r.Feature.VendorID,
			Priority:       r.Feature.Specs.Priority,
			RelevanceScore: r.RelevanceScore,
			RemainingDays:  r.RemainingDays,
		}

		if r.Distance != service.NoDistance {
			resp.Distance = lo.ToPtr(r.Distance)
		}

		return resp
	})
}
