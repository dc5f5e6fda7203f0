// Package sales is the transaction core: it records a sale against the catalog and the
// ledger atomically.
package sales

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"bookledger/internal/domain"
	"bookledger/internal/events"
	"bookledger/internal/store"
)

// service implements the Service interface.
type service struct {
	uow       store.UnitOfWork
	publisher events.Publisher
	logger    *zap.Logger
	tracer    trace.Tracer
	recorded  metric.Int64Counter
	rejected  metric.Int64Counter
}

// NewService creates a new sales service instance.
func NewService(uow store.UnitOfWork, publisher events.Publisher, logger *zap.Logger) (Service, error) {
	if publisher == nil {
		publisher = events.Nop{}
	}
	meter := otel.Meter("bookledger/sales")
	recorded, err := meter.Int64Counter("bookledger.sales.recorded",
		metric.WithDescription("Sales committed to the ledger"))
	if err != nil {
		return nil, fmt.Errorf("create recorded counter: %w", err)
	}
	rejected, err := meter.Int64Counter("bookledger.sales.rejected",
		metric.WithDescription("Sales refused, by reason"))
	if err != nil {
		return nil, fmt.Errorf("create rejected counter: %w", err)
	}
	return &service{
		uow:       uow,
		publisher: publisher,
		logger:    logger,
		tracer:    otel.Tracer("bookledger/sales"),
		recorded:  recorded,
		rejected:  rejected,
	}, nil
}

// RecordSale validates the request before touching any store, then locks the book,
// appends the sale and decrements stock in one unit of work.
func (s *service) RecordSale(ctx context.Context, req RecordSaleRequest) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "sales.record",
		trace.WithAttributes(
			attribute.Int64("book.id", req.BookID),
			attribute.Int64("customer.id", req.CustomerID),
			attribute.Int("sale.quantity", req.Quantity),
		),
	)
	defer span.End()

	sale, err := newSale(req)
	if err != nil {
		return nil, s.reject(ctx, span, req, err)
	}

	var stock int
	err = s.uow.WithinTx(ctx, func(tx store.Tx) error {
		book, err := tx.LockBook(ctx, sale.BookID)
		if err != nil {
			return err
		}
		if book.Stock < sale.Quantity {
			return domain.NewInsufficientStockError(book.ID, book.Stock, sale.Quantity)
		}
		if err := tx.AppendSale(ctx, sale); err != nil {
			return err
		}
		stock, err = tx.AdjustStock(ctx, sale.BookID, -sale.Quantity)
		return err
	})
	if err != nil {
		return nil, s.reject(ctx, span, req, err)
	}

	s.recorded.Add(ctx, 1)
	span.SetAttributes(
		attribute.Int64("sale.id", sale.ID),
		attribute.Int("stock.after", stock),
	)
	s.logger.Info("sale recorded",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("book_id", sale.BookID),
		zap.Int("quantity", sale.Quantity),
		zap.Int("stock", stock),
	)

	if err := s.publisher.PublishSaleRecorded(ctx, events.NewSaleRecorded(*sale, stock)); err != nil {
		s.logger.Warn("publish sale event failed", zap.Int64("sale_id", sale.ID), zap.Error(err))
	}

	return &Receipt{Sale: sale, Stock: stock}, nil
}

func newSale(req RecordSaleRequest) (*domain.Sale, error) {
	if req.Quantity <= 0 {
		return nil, domain.NewInvalidInputError("quantity", "must be positive", req.Quantity)
	}
	if req.Quantity > domain.MaxCount {
		return nil, domain.NewInvalidInputError("quantity", "out of range", req.Quantity)
	}
	if err := domain.ValidateAmount("total_amount", req.TotalAmount); err != nil {
		return nil, err
	}
	date, err := domain.ParseDate(req.SaleDate)
	if err != nil {
		return nil, err
	}
	return &domain.Sale{
		BookID:      req.BookID,
		CustomerID:  req.CustomerID,
		SaleDate:    date,
		Quantity:    req.Quantity,
		TotalAmount: req.TotalAmount,
	}, nil
}

func (s *service) reject(ctx context.Context, span trace.Span, req RecordSaleRequest, err error) error {
	reason := domain.KindOf(err).String()
	s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	span.SetStatus(codes.Error, reason)
	span.RecordError(err)

	fields := []zap.Field{
		zap.Int64("book_id", req.BookID),
		zap.Int("quantity", req.Quantity),
		zap.String("reason", reason),
		zap.Error(err),
	}
	if domain.KindOf(err) == domain.KindInternal {
		s.logger.Error("sale failed", fields...)
	} else {
		s.logger.Info("sale rejected", fields...)
	}
	return err
}
