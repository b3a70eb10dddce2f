package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/quintaldo/pos-engine/internal/sale/domain"
)

var tracer = otel.Tracer("sale-repository")

// SaleRepositoryWithTracing wraps GormSaleRepository with tracing
type SaleRepositoryWithTracing struct {
	*GormSaleRepository
}

// NewSaleRepositoryWithTracing creates a new sale repository with tracing
func NewSaleRepositoryWithTracing(db *gorm.DB) *SaleRepositoryWithTracing {
	return &SaleRepositoryWithTracing{GormSaleRepository: NewGormSaleRepository(db)}
}

func (r *SaleRepositoryWithTracing) Create(ctx context.Context, sale *domain.Sale) error {
	ctx, span := tracer.Start(ctx, "repository.Sale.Create",
		trace.WithAttributes(
			attribute.Int("sale.store_id", int(sale.StoreID)),
			attribute.String("sale.number", sale.SaleNumber),
		),
	)
	defer span.End()

	if err := r.GormSaleRepository.Create(ctx, sale); err != nil {
		recordError(span, err)
		return err
	}

	span.SetAttributes(attribute.Int("sale.id", int(sale.ID)))
	return nil
}

func (r *SaleRepositoryWithTracing) FindByID(ctx context.Context, orgID, id uint) (*domain.Sale, error) {
	ctx, span := tracer.Start(ctx, "repository.Sale.FindByID",
		trace.WithAttributes(attribute.Int("sale.id", int(id))),
	)
	defer span.End()

	sale, err := r.GormSaleRepository.FindByID(ctx, orgID, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("sale.status", string(sale.Status)))
	return sale, nil
}

func (r *SaleRepositoryWithTracing) Update(ctx context.Context, sale *domain.Sale) error {
	ctx, span := tracer.Start(ctx, "repository.Sale.Update",
		trace.WithAttributes(
			attribute.Int("sale.id", int(sale.ID)),
			attribute.String("sale.status", string(sale.Status)),
		),
	)
	defer span.End()

	if err := r.GormSaleRepository.Update(ctx, sale); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func (r *SaleRepositoryWithTracing) CreateItem(ctx context.Context, item *domain.SaleItem) error {
	ctx, span := tracer.Start(ctx, "repository.SaleItem.Create",
		trace.WithAttributes(
			attribute.Int("item.sale_id", int(item.SaleID)),
			attribute.Int("item.product_id", int(item.ProductID)),
			attribute.Int("item.quantity", item.Quantity),
		),
	)
	defer span.End()

	if err := r.GormSaleRepository.CreateItem(ctx, item); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func (r *SaleRepositoryWithTracing) CreatePayment(ctx context.Context, payment *domain.SalePayment) error {
	ctx, span := tracer.Start(ctx, "repository.SalePayment.Create",
		trace.WithAttributes(
			attribute.Int("payment.sale_id", int(payment.SaleID)),
			attribute.String("payment.amount", payment.Amount.String()),
		),
	)
	defer span.End()

	if err := r.GormSaleRepository.CreatePayment(ctx, payment); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
