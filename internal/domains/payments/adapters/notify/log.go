// Package notify holds notification sender adapters. The production email
// pipeline lives outside this service; the log sender stands in where no
// delivery backend is configured.
package notify

import (
	"context"
	"log/slog"

	ordersdomain "github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"
)

var _ ports.NotificationSender = (*LogSender)(nil)

// LogSender records confirmations on the structured log instead of sending.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender builds the sender; a nil logger falls back to slog.Default.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// SendOrderConfirmation logs the confirmation payload fields.
func (s *LogSender) SendOrderConfirmation(_ context.Context, order *ordersdomain.Order) error {
	s.logger.Info("order confirmation",
		slog.String("orderId", order.ID),
		slog.String("orderNumber", order.OrderNumber),
		slog.String("userId", order.UserID),
		slog.String("uniqueCode", order.UniqueCode),
		slog.Int64("total", order.Total),
		slog.String("currency", order.Currency))
	return nil
}
