// Package migrations applies the database schema for the commerce services.
package migrations

import (
	"time"

	"gorm.io/gorm"

	"github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
)

// Run applies the schema for the bounded contexts. Intended to replace
// adapter-level automigrate when the deployment manages schema explicitly.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&orderRecord{})
}

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID                    string          `gorm:"primaryKey;column:id;size:64"`
	OrderNumber           string          `gorm:"column:order_number;size:64;index"`
	UserID                string          `gorm:"column:user_id;size:64;index:idx_orders_user_created"`
	Items                 []domain.Item   `gorm:"column:items;serializer:json"`
	Total                 int64           `gorm:"column:total"`
	Currency              string          `gorm:"column:currency;size:8"`
	PaymentMethod         string          `gorm:"column:payment_method;size:32"`
	BillingInfo           domain.Contact  `gorm:"column:billing_info;serializer:json"`
	ShippingInfo          *domain.Contact `gorm:"column:shipping_info;serializer:json"`
	Status                string          `gorm:"column:status;type:varchar(32);index"`
	WebhookStatus         string          `gorm:"column:webhook_status;size:64"`
	StripePaymentIntentID string          `gorm:"column:stripe_payment_intent_id;size:128"`
	CryptoInvoiceID       string          `gorm:"column:crypto_invoice_id;size:128"`
	UniqueCode            string          `gorm:"column:unique_code;size:32"`
	BlockchainTxID        string          `gorm:"column:blockchain_tx_id;size:128"`
	CreatedAt             time.Time       `gorm:"column:created_at;index:idx_orders_user_created"`
	UpdatedAt             time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }
