package domain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status enumerates order payment progression.
type Status string

const (
	StatusPending       Status = "pending"
	StatusPaid          Status = "paid"
	StatusPaymentFailed Status = "payment_failed"
	StatusCanceled      Status = "canceled"
)

// PaymentMethod identifies which provider settles the order.
type PaymentMethod string

const (
	MethodStripe      PaymentMethod = "stripe"
	MethodCoinbase    PaymentMethod = "coinbase"
	MethodNOWPayments PaymentMethod = "nowpayments"
)

var (
	ErrMissingUser          = errors.New("order user id is required")
	ErrNoItems              = errors.New("order requires at least one item")
	ErrInvalidTotal         = errors.New("order total must be greater than zero")
	ErrInvalidItem          = errors.New("order item requires sku, positive price, and positive quantity")
	ErrInvalidMethod        = errors.New("payment method is not supported")
	ErrInvalidStatus        = errors.New("order status is invalid")
	ErrTotalMismatch        = errors.New("order total does not match computed checkout total")
	ErrStatusRegression     = errors.New("order status cannot regress from a terminal state")
	ErrCorrelationImmutable = errors.New("provider correlation id is immutable once set")
)

// Item is one purchased line within an order. Price is in minor currency units.
type Item struct {
	SKU      string `json:"sku"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
	Image    string `json:"image,omitempty"`
}

// Contact carries billing or shipping details as supplied at checkout.
type Contact struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

// Order is the purchase aggregate. It is created once in pending status and
// mutated only through the payment event processor.
type Order struct {
	ID            string
	OrderNumber   string
	UserID        string
	Items         []Item
	Total         int64
	Currency      string
	PaymentMethod PaymentMethod
	BillingInfo   Contact
	ShippingInfo  *Contact

	Status        Status
	WebhookStatus string

	StripePaymentIntentID string
	CryptoInvoiceID       string

	UniqueCode     string
	BlockchainTxID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder validates and constructs a pending order with a generated order number.
func NewOrder(userID string, items []Item, total int64, currency string, method PaymentMethod) (*Order, error) {
	order := &Order{
		OrderNumber:   newOrderNumber(),
		UserID:        userID,
		Items:         append([]Item{}, items...),
		Total:         total,
		Currency:      strings.ToUpper(strings.TrimSpace(currency)),
		PaymentMethod: method,
		Status:        StatusPending,
	}
	if order.Currency == "" {
		order.Currency = "USD"
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces creation invariants on the aggregate.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.UserID) == "" {
		return ErrMissingUser
	}
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range o.Items {
		if strings.TrimSpace(item.SKU) == "" || item.Price <= 0 || item.Quantity <= 0 {
			return ErrInvalidItem
		}
	}
	if o.Total <= 0 {
		return ErrInvalidTotal
	}
	if !isValidMethod(o.PaymentMethod) {
		return ErrInvalidMethod
	}
	if !isValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// Subtotal sums item prices times quantities in minor units.
func (o *Order) Subtotal() int64 {
	var subtotal int64
	for _, item := range o.Items {
		subtotal += item.Price * item.Quantity
	}
	return subtotal
}

// Checkout pricing mirrors the storefront: 8% tax, flat shipping under the
// free-shipping threshold. All amounts in minor units.
const (
	TaxRatePercent        = 8
	FlatShippingFee       = 1000
	FreeShippingThreshold = 5000
)

// ExpectedTotal recomputes subtotal + tax + shipping server-side. Tax is
// rounded half-up to the nearest minor unit, matching the storefront.
func (o *Order) ExpectedTotal() int64 {
	subtotal := o.Subtotal()
	tax := (subtotal*TaxRatePercent + 50) / 100
	shipping := int64(FlatShippingFee)
	if subtotal > FreeShippingThreshold {
		shipping = 0
	}
	return subtotal + tax + shipping
}

// ValidateTotal rejects orders whose client-supplied total disagrees with the
// server-side recomputation.
func (o *Order) ValidateTotal() error {
	if o.Total != o.ExpectedTotal() {
		return ErrTotalMismatch
	}
	return nil
}

// CanTransition reports whether the aggregate may move to the target status.
// Pending reaches any terminal status; terminal statuses never regress.
func (o *Order) CanTransition(target Status) bool {
	if !isValidStatus(target) {
		return false
	}
	if o.Status == target {
		return true
	}
	return o.Status == StatusPending
}

// Terminal reports whether payment handling has concluded for the order.
func (o *Order) Terminal() bool {
	return o.Status != StatusPending
}

// CorrelationID returns whichever provider identifier is set on the order.
func (o *Order) CorrelationID() string {
	if o.StripePaymentIntentID != "" {
		return o.StripePaymentIntentID
	}
	return o.CryptoInvoiceID
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusPending, StatusPaid, StatusPaymentFailed, StatusCanceled:
		return true
	default:
		return false
	}
}

func isValidMethod(method PaymentMethod) bool {
	switch method {
	case MethodStripe, MethodCoinbase, MethodNOWPayments:
		return true
	default:
		return false
	}
}

const orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newOrderNumber builds the human-readable order reference. Uniqueness is
// probabilistic: millisecond timestamp plus six random base36 characters.
func newOrderNumber() string {
	var suffix [6]byte
	_, _ = rand.Read(suffix[:])
	for i := range suffix {
		suffix[i] = orderNumberAlphabet[int(suffix[i])%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("FCL-%d-%s", time.Now().UnixMilli(), string(suffix[:]))
}
