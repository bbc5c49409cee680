package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/craftora/marketplace/internal/domain"
)

type revenueSummaryResponse struct {
	Period            string    `json:"period"`
	PeriodStart       time.Time `json:"period_start"`
	PeriodEnd         time.Time `json:"period_end"`
	TotalGross        string    `json:"total_gross"`
	TotalCommission   string    `json:"total_commission"`
	TotalEarnings     string    `json:"total_earnings"`
	OrderCount        int       `json:"order_count"`
	AverageOrderValue string    `json:"average_order_value"`
	PromotionalSpend  string    `json:"promotional_spend"`
	NetEarnings       string    `json:"net_earnings"`
}

func (s *Server) artisanRevenueSummary(c *gin.Context) {
	vendorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid artisan id"})
		return
	}

	period, err := domain.ToPeriod(c.DefaultQuery("period", string(domain.PeriodMonth)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	summary, err := s.revenue.VendorSummary(c.Request.Context(), vendorID, period)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "summary": toSummaryResponse(summary)})
}

func (s *Server) platformRevenueSummary(c *gin.Context) {
	period, err := domain.ToPeriod(c.DefaultQuery("period", string(domain.PeriodMonth)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	summary, err := s.revenue.PlatformSummary(c.Request.Context(), period)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "summary": toSummaryResponse(summary)})
}

func toSummaryResponse(s domain.RevenueSummary) revenueSummaryResponse {
	return revenueSummaryResponse{
		Period:            string(s.Period),
		PeriodStart:       s.PeriodStart,
		PeriodEnd:         s.PeriodEnd,
		TotalGross:        s.TotalGross.StringFixed(2),
		TotalCommission:   s.TotalCommission.StringFixed(2),
		TotalEarnings:     s.TotalEarnings.StringFixed(2),
		OrderCount:        s.OrderCount,
		AverageOrderValue: s.AverageOrderValue.StringFixed(2),
		PromotionalSpend:  s.PromotionalSpend.StringFixed(2),
		NetEarnings:       s.NetEarnings.StringFixed(2),
	}
}
