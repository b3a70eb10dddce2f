package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quintaldo/pos-engine/internal/inventory/domain"
	"github.com/quintaldo/pos-engine/pkg/database"
)

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Product{}, &domain.StockMovement{})
}

func (r *GormProductRepository) FindByID(ctx context.Context, orgID, id uint) (*domain.Product, error) {
	var product domain.Product
	err := database.TxFrom(ctx, r.db).
		Where("organization_id = ?", orgID).
		First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) FindForUpdate(ctx context.Context, orgID, id uint) (*domain.Product, error) {
	var product domain.Product
	err := database.TxFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("organization_id = ?", orgID).
		First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) FindAll(ctx context.Context, orgID uint, limit, offset int) ([]domain.Product, error) {
	var products []domain.Product
	err := database.TxFrom(ctx, r.db).
		Where("organization_id = ?", orgID).
		Limit(limit).Offset(offset).
		Find(&products).Error
	return products, err
}

func (r *GormProductRepository) UpdateStock(ctx context.Context, id uint, stock int) error {
	return database.TxFrom(ctx, r.db).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Update("current_stock", stock).Error
}

func (r *GormProductRepository) LowStock(ctx context.Context, orgID uint) ([]domain.Product, error) {
	var products []domain.Product
	err := database.TxFrom(ctx, r.db).
		Where("organization_id = ? AND is_active = ? AND current_stock <= min_stock", orgID, true).
		Order("current_stock ASC").
		Find(&products).Error
	return products, err
}

type GormMovementRepository struct {
	db *gorm.DB
}

func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

func (r *GormMovementRepository) Create(ctx context.Context, movement *domain.StockMovement) error {
	return database.TxFrom(ctx, r.db).Create(movement).Error
}

func (r *GormMovementRepository) FindByID(ctx context.Context, orgID, id uint) (*domain.StockMovement, error) {
	var movement domain.StockMovement
	err := database.TxFrom(ctx, r.db).
		Where("organization_id = ?", orgID).
		First(&movement, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMovementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *GormMovementRepository) LatestForProduct(ctx context.Context, productID uint) (*domain.StockMovement, error) {
	var movement domain.StockMovement
	err := database.TxFrom(ctx, r.db).
		Where("product_id = ?", productID).
		Order("id DESC").
		First(&movement).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMovementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *GormMovementRepository) FindByProduct(ctx context.Context, orgID, productID uint, limit, offset int) ([]domain.StockMovement, error) {
	var movements []domain.StockMovement
	err := database.TxFrom(ctx, r.db).
		Where("organization_id = ? AND product_id = ?", orgID, productID).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&movements).Error
	return movements, err
}

func (r *GormMovementRepository) Delete(ctx context.Context, id uint) error {
	// Hard delete: the undo path removes the record entirely so the ledger
	// replays to the rewound stock value.
	return database.TxFrom(ctx, r.db).
		Unscoped().
		Delete(&domain.StockMovement{}, id).Error
}
