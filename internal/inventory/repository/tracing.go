package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/quintaldo/pos-engine/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

// ProductRepositoryWithTracing wraps GormProductRepository with tracing
type ProductRepositoryWithTracing struct {
	*GormProductRepository
}

// NewProductRepositoryWithTracing creates a new product repository with tracing
func NewProductRepositoryWithTracing(db *gorm.DB) *ProductRepositoryWithTracing {
	return &ProductRepositoryWithTracing{GormProductRepository: NewGormProductRepository(db)}
}

func (r *ProductRepositoryWithTracing) FindByID(ctx context.Context, orgID, id uint) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.Product.FindByID",
		trace.WithAttributes(attribute.Int("product.id", int(id))),
	)
	defer span.End()

	product, err := r.GormProductRepository.FindByID(ctx, orgID, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.current_stock", product.CurrentStock))
	return product, nil
}

func (r *ProductRepositoryWithTracing) FindForUpdate(ctx context.Context, orgID, id uint) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.Product.FindForUpdate",
		trace.WithAttributes(attribute.Int("product.id", int(id))),
	)
	defer span.End()

	product, err := r.GormProductRepository.FindForUpdate(ctx, orgID, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.current_stock", product.CurrentStock))
	return product, nil
}

func (r *ProductRepositoryWithTracing) UpdateStock(ctx context.Context, id uint, stock int) error {
	ctx, span := tracer.Start(ctx, "repository.Product.UpdateStock",
		trace.WithAttributes(
			attribute.Int("product.id", int(id)),
			attribute.Int("stock.new_value", stock),
		),
	)
	defer span.End()

	if err := r.GormProductRepository.UpdateStock(ctx, id, stock); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

// MovementRepositoryWithTracing wraps GormMovementRepository with tracing
type MovementRepositoryWithTracing struct {
	*GormMovementRepository
}

// NewMovementRepositoryWithTracing creates a new movement repository with tracing
func NewMovementRepositoryWithTracing(db *gorm.DB) *MovementRepositoryWithTracing {
	return &MovementRepositoryWithTracing{GormMovementRepository: NewGormMovementRepository(db)}
}

func (r *MovementRepositoryWithTracing) Create(ctx context.Context, movement *domain.StockMovement) error {
	ctx, span := tracer.Start(ctx, "repository.Movement.Create",
		trace.WithAttributes(
			attribute.Int("movement.product_id", int(movement.ProductID)),
			attribute.String("movement.type", string(movement.Type)),
			attribute.Int("movement.quantity", movement.Quantity),
		),
	)
	defer span.End()

	if err := r.GormMovementRepository.Create(ctx, movement); err != nil {
		recordError(span, err)
		return err
	}

	span.SetAttributes(attribute.Int("movement.id", int(movement.ID)))
	return nil
}

func (r *MovementRepositoryWithTracing) Delete(ctx context.Context, id uint) error {
	ctx, span := tracer.Start(ctx, "repository.Movement.Delete",
		trace.WithAttributes(attribute.Int("movement.id", int(id))),
	)
	defer span.End()

	if err := r.GormMovementRepository.Delete(ctx, id); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
