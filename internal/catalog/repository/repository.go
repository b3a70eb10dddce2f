package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quintaldo/pos-engine/internal/catalog/domain"
	"github.com/quintaldo/pos-engine/pkg/database"
)

type GormStoreDirectory struct {
	db *gorm.DB
}

func NewGormStoreDirectory(db *gorm.DB) *GormStoreDirectory {
	return &GormStoreDirectory{db: db}
}

func (r *GormStoreDirectory) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Store{}, &domain.PaymentMethod{})
}

func (r *GormStoreDirectory) FindByID(ctx context.Context, orgID, id uint) (*domain.Store, error) {
	var store domain.Store
	err := database.TxFrom(ctx, r.db).
		Where("organization_id = ?", orgID).
		First(&store, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *GormStoreDirectory) ReserveSaleNumber(ctx context.Context, orgID, storeID uint) (string, error) {
	db := database.TxFrom(ctx, r.db)

	var store domain.Store
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("organization_id = ?", orgID).
		First(&store, storeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.ErrStoreNotFound
	}
	if err != nil {
		return "", err
	}

	next := store.LastSaleNumber + 1
	if err := db.Model(&domain.Store{}).
		Where("id = ?", store.ID).
		Update("last_sale_number", next).Error; err != nil {
		return "", fmt.Errorf("failed to advance sale number: %w", err)
	}

	return fmt.Sprintf("%s-%06d", store.SaleNumberPrefix, next), nil
}

type GormPaymentMethods struct {
	db *gorm.DB
}

func NewGormPaymentMethods(db *gorm.DB) *GormPaymentMethods {
	return &GormPaymentMethods{db: db}
}

func (r *GormPaymentMethods) IsActive(ctx context.Context, orgID, id uint) (bool, error) {
	var method domain.PaymentMethod
	err := database.TxFrom(ctx, r.db).
		Where("organization_id = ?", orgID).
		First(&method, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, domain.ErrPaymentMethodNotFound
	}
	if err != nil {
		return false, err
	}
	return method.IsActive, nil
}
