package server

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/craftora/marketplace/internal/domain"
	"github.com/craftora/marketplace/internal/service"
)

type Server struct {
	orders  *service.Orders
	revenue *service.Revenue
	ranking *service.Ranking
}

func New(orders *service.Orders, revenue *service.Revenue, ranking *service.Ranking) *Server {
	return &Server{
		orders:  orders,
		revenue: revenue,
		ranking: ranking,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	r.POST("/orders", s.createOrders)
	r.GET("/orders/:id", s.getOrder)
	r.PUT("/orders/:id/status", s.updateOrderStatus)
	r.PUT("/orders/:id/payment", s.updatePaymentStatus)

	r.GET("/revenue/artisan/:id/summary", s.artisanRevenueSummary)
	r.GET("/revenue/platform/summary", s.platformRevenueSummary)

	r.GET("/promotional/products/featured", s.featuredProducts)
	r.GET("/promotional/products/sponsored", s.sponsoredProducts)

	return r
}

// httpStatus maps the domain error taxonomy onto response codes so the
// caller can tell a bad transition (400) from a rights problem (403).
func httpStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrNoVendor):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConcurrentModification):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(httpStatus(err), gin.H{"status": "error", "message": err.Error()})
}
