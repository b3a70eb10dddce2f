package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quintaldo/pos-engine/internal/sale/domain"
	"github.com/quintaldo/pos-engine/pkg/database"
)

type GormSaleRepository struct {
	db *gorm.DB
}

func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func (r *GormSaleRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Sale{}, &domain.SaleItem{}, &domain.SalePayment{})
}

func (r *GormSaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	err := database.TxFrom(ctx, r.db).Create(sale).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateSaleNumber
	}
	return err
}

func (r *GormSaleRepository) FindByID(ctx context.Context, orgID, id uint) (*domain.Sale, error) {
	var sale domain.Sale
	err := database.TxFrom(ctx, r.db).
		Preload("Items").
		Preload("Payments").
		Where("organization_id = ?", orgID).
		First(&sale, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *GormSaleRepository) Update(ctx context.Context, sale *domain.Sale) error {
	return database.TxFrom(ctx, r.db).
		Omit(clause.Associations).
		Save(sale).Error
}

func (r *GormSaleRepository) List(ctx context.Context, orgID uint, filter domain.ListFilter) ([]domain.Sale, error) {
	q := database.TxFrom(ctx, r.db).
		Where("organization_id = ?", orgID)
	if filter.StoreID != 0 {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var sales []domain.Sale
	err := q.Order("id DESC").
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&sales).Error
	return sales, err
}

func (r *GormSaleRepository) CreateItem(ctx context.Context, item *domain.SaleItem) error {
	return database.TxFrom(ctx, r.db).Create(item).Error
}

func (r *GormSaleRepository) FindItem(ctx context.Context, orgID, itemID uint) (*domain.SaleItem, error) {
	var item domain.SaleItem
	err := database.TxFrom(ctx, r.db).
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sale_items.id = ? AND sales.organization_id = ?", itemID, orgID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormSaleRepository) UpdateItem(ctx context.Context, item *domain.SaleItem) error {
	return database.TxFrom(ctx, r.db).Save(item).Error
}

func (r *GormSaleRepository) DeleteItem(ctx context.Context, itemID uint) error {
	return database.TxFrom(ctx, r.db).Delete(&domain.SaleItem{}, itemID).Error
}

func (r *GormSaleRepository) LiveItems(ctx context.Context, saleID uint) ([]domain.SaleItem, error) {
	var items []domain.SaleItem
	err := database.TxFrom(ctx, r.db).
		Where("sale_id = ?", saleID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *GormSaleRepository) CreatePayment(ctx context.Context, payment *domain.SalePayment) error {
	return database.TxFrom(ctx, r.db).Create(payment).Error
}

func (r *GormSaleRepository) FindPayment(ctx context.Context, orgID, paymentID uint) (*domain.SalePayment, error) {
	var payment domain.SalePayment
	err := database.TxFrom(ctx, r.db).
		Joins("JOIN sales ON sales.id = sale_payments.sale_id").
		Where("sale_payments.id = ? AND sales.organization_id = ?", paymentID, orgID).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *GormSaleRepository) DeletePayment(ctx context.Context, paymentID uint) error {
	return database.TxFrom(ctx, r.db).Delete(&domain.SalePayment{}, paymentID).Error
}

func (r *GormSaleRepository) LivePayments(ctx context.Context, saleID uint) ([]domain.SalePayment, error) {
	var payments []domain.SalePayment
	err := database.TxFrom(ctx, r.db).
		Where("sale_id = ?", saleID).
		Order("id ASC").
		Find(&payments).Error
	return payments, err
}
