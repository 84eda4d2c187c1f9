package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/orders/ports"
)

const tracerName = "github.com/fcl-labs/fcl-commerce/internal/domains/orders/adapters/observability/service"

// Service decorates the orders application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// CreateOrder persists a new pending order with instrumentation.
func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateOrder",
		attribute.String("order.user_id", input.UserID),
		attribute.String("order.payment_method", string(input.PaymentMethod)),
		attribute.Int64("order.total", input.Total),
	)
	defer span.End()

	s.logInfo(ctx, "creating order", slog.String("user_id", input.UserID), slog.String("payment_method", string(input.PaymentMethod)))
	order, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.String("user_id", input.UserID))
	}
	if order != nil {
		span.SetAttributes(attribute.String("order.id", order.ID))
		s.metrics.recordCreated(ctx, order.PaymentMethod)
		s.logInfo(ctx, "order created",
			slog.String("order_id", order.ID),
			slog.String("order_number", order.OrderNumber),
			slog.String("status", string(order.Status)),
		)
	}
	return order, nil
}

// GetOrder loads a single order aggregate.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrder", attribute.String("order.id", id))
	defer span.End()

	order, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order_id", id))
	}
	if order != nil {
		span.SetAttributes(attribute.String("order.status", string(order.Status)))
	}
	return order, nil
}

// GetOrderByNumber resolves an order by its human-readable number.
func (s *Service) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrderByNumber", attribute.String("order.number", number))
	defer span.End()

	order, err := s.inner.GetOrderByNumber(ctx, number)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order by number", slog.String("order_number", number))
	}
	if order != nil {
		span.SetAttributes(attribute.String("order.id", order.ID))
	}
	return order, nil
}

// ListUserOrders returns a user's orders, newest first.
func (s *Service) ListUserOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.ListUserOrders", attribute.String("order.user_id", userID))
	defer span.End()

	orders, err := s.inner.ListUserOrders(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.String("user_id", userID))
	}
	span.SetAttributes(attribute.Int("order.result.count", len(orders)))
	return orders, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersCreated metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersCreated, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders created"))
	return serviceMetrics{ordersCreated: ordersCreated}
}

func (m serviceMetrics) recordCreated(ctx context.Context, method domain.PaymentMethod) {
	if m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("order.payment_method", string(method))))
}

var _ ports.Service = (*Service)(nil)
