package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/craftora/marketplace/internal/domain"
	"github.com/craftora/marketplace/internal/service"
)

type cartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type guestRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
}

type createOrdersRequest struct {
	Items         []cartItemRequest `json:"items" binding:"required,min=1,dive"`
	PatronID      *uuid.UUID        `json:"patron_id"`
	Guest         *guestRequest     `json:"guest"`
	PaymentMethod string            `json:"payment_method"`
	Note          string            `json:"note"`
}

func (s *Server) createOrders(c *gin.Context) {
	var req createOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	checkout := service.CheckoutRequest{
		Items: lo.Map(req.Items, func(item cartItemRequest, _ int) service.CartItem {
			return service.CartItem{ProductID: item.ProductID, Quantity: item.Quantity}
		}),
		PatronID:      req.PatronID,
		PaymentMethod: req.PaymentMethod,
		PatronNote:    req.Note,
	}
	if req.Guest != nil {
		checkout.Guest = &domain.GuestInfo{
			FirstName: req.Guest.FirstName,
			LastName:  req.Guest.LastName,
			Email:     req.Guest.Email,
			Phone:     req.Guest.Phone,
		}
	}

	orders, err := s.orders.Checkout(c.Request.Context(), checkout)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"orders": lo.Map(orders, func(o domain.Order, _ int) orderResponse { return toOrderResponse(o) }),
	})
}

func (s *Server) getOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid order id"})
		return
	}

	order, err := s.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "order": toOrderResponse(order)})
}

type updateStatusRequest struct {
	Status    string    `json:"status" binding:"required"`
	ArtisanID uuid.UUID `json:"artisan_id" binding:"required"`
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid order id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	status, err := domain.ToOrderStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	order, err := s.orders.ApplyTransition(c.Request.Context(), orderID, status, req.ArtisanID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "order": toOrderResponse(order)})
}

type updatePaymentRequest struct {
	PaymentStatus string    `json:"payment_status" binding:"required"`
	ActorID       uuid.UUID `json:"actor_id" binding:"required"`
}

func (s *Server) updatePaymentStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid order id"})
		return
	}

	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	status, err := domain.ToPaymentStatus(req.PaymentStatus)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	order, err := s.orders.SetPaymentStatus(c.Request.Context(), orderID, status, req.ActorID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "order": toOrderResponse(order)})
}

type orderItemResponse struct {
	ProductID               uuid.UUID  `json:"product_id"`
	ProductName             string     `json:"product_name"`
	Quantity                int        `json:"quantity"`
	UnitPrice               string     `json:"unit_price"`
	LineTotal               string     `json:"line_total"`
	ProductType             string     `json:"product_type"`
	EstimatedCompletionDate *time.Time `json:"estimated_completion_date,omitempty"`
	ScheduledPickupTime     *time.Time `json:"scheduled_pickup_time,omitempty"`
}

type revenueResponse struct {
	GrossAmount        string `json:"gross_amount"`
	PlatformCommission string `json:"platform_commission"`
	ArtisanEarnings    string `json:"artisan_earnings"`
	CommissionRate     string `json:"commission_rate"`
	CommissionPercent  string `json:"commission_percent"`
	EarningsPercent    string `json:"earnings_percent"`
}

type orderResponse struct {
	ID                   uuid.UUID           `json:"id"`
	VendorID             uuid.UUID           `json:"artisan_id"`
	PatronID             *uuid.UUID          `json:"patron_id,omitempty"`
	Guest                *domain.GuestInfo   `json:"guest,omitempty"`
	Items                []orderItemResponse `json:"items"`
	TotalAmount          string              `json:"total_amount"`
	Currency             string              `json:"currency"`
	Status               string              `json:"status"`
	ReadyToShipStatus    string              `json:"ready_to_ship_status,omitempty"`
	MadeToOrderStatus    string              `json:"made_to_order_status,omitempty"`
	ScheduledOrderStatus string              `json:"scheduled_order_status,omitempty"`
	PaymentStatus        string              `json:"payment_status"`
	PaymentMethod        string              `json:"payment_method,omitempty"`
	Revenue              *revenueResponse    `json:"revenue,omitempty"`
	ReadyAt              *time.Time          `json:"ready_at,omitempty"`
	ActualDeliveryTime   *time.Time          `json:"actual_delivery_time,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

func toOrderResponse(o domain.Order) orderResponse {
	resp := orderResponse{
		ID:       o.ID,
		VendorID: o.VendorID,
		PatronID: o.PatronID,
		Guest:    o.Guest,
		Items: lo.Map(o.Items, func(item domain.OrderItem, _ int) orderItemResponse {
			return orderItemResponse{
				ProductID:               item.ProductID,
				ProductName:             item.ProductName,
				Quantity:                item.Quantity,
				UnitPrice:               item.UnitPrice.Amount.StringFixed(2),
				LineTotal:               item.LineTotal.Amount.StringFixed(2),
				ProductType:             string(item.ProductType),
				EstimatedCompletionDate: item.EstimatedCompletionDate,
				ScheduledPickupTime:     item.ScheduledPickupTime,
			}
		}),
		TotalAmount:          o.TotalAmount.Amount.StringFixed(2),
		Currency:             o.TotalAmount.Currency.String(),
		Status:               string(o.Status),
		ReadyToShipStatus:    string(o.ReadyToShipStatus),
		MadeToOrderStatus:    string(o.MadeToOrderStatus),
		ScheduledOrderStatus: string(o.ScheduledOrderStatus),
		PaymentStatus:        string(o.PaymentStatus),
		PaymentMethod:        o.PaymentMethod,
		ReadyAt:              o.ReadyAt,
		ActualDeliveryTime:   o.ActualDeliveryTime,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}

	if o.Revenue != nil {
		resp.Revenue = &revenueResponse{
			GrossAmount:        o.Revenue.GrossAmount.StringFixed(2),
			PlatformCommission: o.Revenue.PlatformCommission.StringFixed(2),
			ArtisanEarnings:    o.Revenue.ArtisanEarnings.StringFixed(2),
			CommissionRate:     o.Revenue.CommissionRate.String(),
			CommissionPercent:  o.Revenue.CommissionPercent,
			EarningsPercent:    o.Revenue.EarningsPercent,
		}
	}

	return resp
}
