package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM, one row per order.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&orderRecord{})
	}
	return repo
}

// orderRecord maps the order aggregate to a relational table. Items and the
// billing/shipping contacts keep the document shape of the source system.
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

// Create inserts a new pending order, assigning the store id.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches an order by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByNumber fetches an order by its human-readable order number.
func (r *Repository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "order_number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// ListByUser returns a user's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

// Update applies a partial merge. When ExpectStatus is set, the merge is
// guarded by a status equality predicate so concurrent webhook deliveries
// cannot clobber each other's transition.
func (r *Repository) Update(ctx context.Context, id string, update ports.OrderUpdate) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	assignments := map[string]any{"updated_at": gorm.Expr("NOW()")}
	if update.Status != nil {
		assignments["status"] = string(*update.Status)
	}
	if update.WebhookStatus != nil {
		assignments["webhook_status"] = *update.WebhookStatus
	}
	if update.StripePaymentIntentID != nil {
		assignments["stripe_payment_intent_id"] = *update.StripePaymentIntentID
	}
	if update.CryptoInvoiceID != nil {
		assignments["crypto_invoice_id"] = *update.CryptoInvoiceID
	}
	if update.UniqueCode != nil {
		assignments["unique_code"] = *update.UniqueCode
	}
	if update.BlockchainTxID != nil {
		assignments["blockchain_tx_id"] = *update.BlockchainTxID
	}

	query := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", id)
	if update.ExpectStatus != nil {
		query = query.Where("status = ?", string(*update.ExpectStatus))
	}
	result := query.Updates(assignments)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ports.ErrStatusConflict
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:                    order.ID,
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
	}
}

func (r orderRecord) toDomain() *domain.Order {
	return &domain.Order{
		ID:                    r.ID,
		OrderNumber:           r.OrderNumber,
		UserID:                r.UserID,
		Items:                 r.Items,
		Total:                 r.Total,
		Currency:              r.Currency,
		PaymentMethod:         domain.PaymentMethod(r.PaymentMethod),
		BillingInfo:           r.BillingInfo,
		ShippingInfo:          r.ShippingInfo,
		Status:                domain.Status(r.Status),
		WebhookStatus:         r.WebhookStatus,
		StripePaymentIntentID: r.StripePaymentIntentID,
		CryptoInvoiceID:       r.CryptoInvoiceID,
		UniqueCode:            r.UniqueCode,
		BlockchainTxID:        r.BlockchainTxID,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}
