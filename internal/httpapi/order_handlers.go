package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ordersapp "github.com/fcl-labs/fcl-commerce/internal/domains/orders/application"
	ordersdomain "github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
	ordersports "github.com/fcl-labs/fcl-commerce/internal/domains/orders/ports"
	paymentsapp "github.com/fcl-labs/fcl-commerce/internal/domains/payments/application"
	paymentsports "github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"
	problems "github.com/fcl-labs/fcl-commerce/internal/shared/errors"
)

// OrderHandlers serves the order creation, lookup, and payment endpoints.
type OrderHandlers struct {
	orders   ordersports.Service
	checkout *paymentsapp.CheckoutService
}

// NewOrderHandlers wires the order endpoints.
func NewOrderHandlers(orders ordersports.Service, checkout *paymentsapp.CheckoutService) *OrderHandlers {
	return &OrderHandlers{orders: orders, checkout: checkout}
}

type createOrderRequest struct {
	UserID        string                 `json:"userId"`
	Items         []ordersdomain.Item    `json:"items"`
	Total         int64                  `json:"total"`
	Currency      string                 `json:"currency"`
	PaymentMethod string                 `json:"paymentMethod"`
	BillingInfo   ordersdomain.Contact   `json:"billingInfo"`
	ShippingInfo  *ordersdomain.Contact  `json:"shippingInfo"`
}

type orderResponse struct {
	OrderID               string                `json:"orderId"`
	OrderNumber           string                `json:"orderNumber"`
	UserID                string                `json:"userId"`
	Items                 []ordersdomain.Item   `json:"items"`
	Total                 int64                 `json:"total"`
	Currency              string                `json:"currency"`
	PaymentMethod         string                `json:"paymentMethod"`
	BillingInfo           ordersdomain.Contact  `json:"billingInfo"`
	ShippingInfo          *ordersdomain.Contact `json:"shippingInfo,omitempty"`
	Status                string                `json:"status"`
	WebhookStatus         string                `json:"webhookStatus,omitempty"`
	StripePaymentIntentID string                `json:"stripePaymentIntentId,omitempty"`
	CryptoInvoiceID       string                `json:"cryptoInvoiceId,omitempty"`
	UniqueCode            string                `json:"uniqueCode,omitempty"`
	BlockchainTxID        string                `json:"blockchainTxId,omitempty"`
	CreatedAt             time.Time             `json:"createdAt"`
	UpdatedAt             time.Time             `json:"updatedAt"`
}

func toOrderResponse(order *ordersdomain.Order) orderResponse {
	return orderResponse{
		OrderID:               order.ID,
		OrderNumber:           order.OrderNumber,
		UserID:                order.UserID,
		Items:                 order.Items,
		Total:                 order.Total,
		Currency:              order.Currency,
		PaymentMethod:         string(order.PaymentMethod),
		BillingInfo:           order.BillingInfo,
		ShippingInfo:          order.ShippingInfo,
		Status:                string(order.Status),
		WebhookStatus:         order.WebhookStatus,
		StripePaymentIntentID: order.StripePaymentIntentID,
		CryptoInvoiceID:       order.CryptoInvoiceID,
		UniqueCode:            order.UniqueCode,
		BlockchainTxID:        order.BlockchainTxID,
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}
}

// CreateOrder persists a new pending order.
func (h *OrderHandlers) CreateOrder(c *gin.Context) {
	var request createOrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		problems.Respond(c, problems.ErrBadRequest.WithDetail("invalid order payload"))
		return
	}
	order, err := h.orders.CreateOrder(c.Request.Context(), ordersports.CreateOrderInput{
		UserID:        request.UserID,
		Items:         request.Items,
		Total:         request.Total,
		Currency:      request.Currency,
		PaymentMethod: ordersdomain.PaymentMethod(request.PaymentMethod),
		BillingInfo:   request.BillingInfo,
		ShippingInfo:  request.ShippingInfo,
	})
	if err != nil {
		if errors.Is(err, ordersapp.ErrInvalidInput) {
			problems.Respond(c, problems.ErrValidation.WithDetail(err.Error()))
			return
		}
		problems.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// GetOrder returns a single order.
func (h *OrderHandlers) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ordersports.ErrNotFound) {
			problems.Respond(c, problems.NewNotFoundProblem("order", c.Param("id")))
			return
		}
		problems.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// ListOrders returns the orders for a user, newest first. When an
// orderNumber query is given instead, it resolves that single order, as used
// by the confirmation page.
func (h *OrderHandlers) ListOrders(c *gin.Context) {
	if number := c.Query("orderNumber"); number != "" {
		order, err := h.orders.GetOrderByNumber(c.Request.Context(), number)
		if err != nil {
			if errors.Is(err, ordersports.ErrNotFound) {
				problems.Respond(c, problems.NewNotFoundProblem("order", number))
				return
			}
			problems.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": []orderResponse{toOrderResponse(order)}})
		return
	}
	userID := c.Query("userId")
	if userID == "" {
		problems.Respond(c, problems.ErrBadRequest.WithDetail("userId or orderNumber query parameter is required"))
		return
	}
	orders, err := h.orders.ListUserOrders(c.Request.Context(), userID)
	if err != nil {
		problems.RespondError(c, err)
		return
	}
	responses := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": responses})
}

type paymentResponse struct {
	ExternalID   string `json:"externalId"`
	CheckoutURL  string `json:"checkoutUrl,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
	ExpiresAt    string `json:"expiresAt,omitempty"`
}

// CreatePayment creates the provider-side payment object for an order.
func (h *OrderHandlers) CreatePayment(c *gin.Context) {
	if h.checkout == nil {
		problems.Respond(c, problems.ErrInternal.WithDetail("checkout not configured"))
		return
	}
	session, err := h.checkout.CreatePayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ordersports.ErrNotFound):
			problems.Respond(c, problems.NewNotFoundProblem("order", c.Param("id")))
		case errors.Is(err, paymentsapp.ErrOrderNotPayable),
			errors.Is(err, paymentsapp.ErrPaymentAlreadyCreated):
			problems.Respond(c, problems.ErrConflict.WithDetail(err.Error()))
		case errors.Is(err, paymentsapp.ErrNoProviderConfigured):
			problems.Respond(c, problems.ErrBadRequest.WithDetail(err.Error()))
		case errors.Is(err, paymentsports.ErrProvider):
			problems.Respond(c, problems.ErrUpstream.WithDetail(err.Error()))
		default:
			problems.RespondError(c, err)
		}
		return
	}
	response := paymentResponse{
		ExternalID:   session.ExternalID,
		CheckoutURL:  session.CheckoutURL,
		ClientSecret: session.ClientSecret,
	}
	if !session.ExpiresAt.IsZero() {
		response.ExpiresAt = session.ExpiresAt.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusCreated, response)
}
