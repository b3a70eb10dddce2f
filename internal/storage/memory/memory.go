// Package memory provides an in-memory implementation of the engine's
// repositories. It backs the test suite and the zero-dependency demo mode.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	catalogdomain "github.com/quintaldo/pos-engine/internal/catalog/domain"
	invdomain "github.com/quintaldo/pos-engine/internal/inventory/domain"
	saledomain "github.com/quintaldo/pos-engine/internal/sale/domain"
)

// Store holds all engine state behind one mutex
type Store struct {
	mu sync.RWMutex

	nextProductID  uint
	nextMovementID uint
	nextSaleID     uint
	nextItemID     uint
	nextPaymentID  uint
	nextStoreID    uint
	nextMethodID   uint

	products  map[uint]invdomain.Product
	movements map[uint]invdomain.StockMovement
	sales     map[uint]saledomain.Sale
	items     map[uint]saledomain.SaleItem
	payments  map[uint]saledomain.SalePayment
	stores    map[uint]catalogdomain.Store
	methods   map[uint]catalogdomain.PaymentMethod

	deletedItems    map[uint]bool
	deletedPayments map[uint]bool
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		products:        map[uint]invdomain.Product{},
		movements:       map[uint]invdomain.StockMovement{},
		sales:           map[uint]saledomain.Sale{},
		items:           map[uint]saledomain.SaleItem{},
		payments:        map[uint]saledomain.SalePayment{},
		stores:          map[uint]catalogdomain.Store{},
		methods:         map[uint]catalogdomain.PaymentMethod{},
		deletedItems:    map[uint]bool{},
		deletedPayments: map[uint]bool{},
	}
}

// SeedProduct inserts a product and returns its assigned ID
func (s *Store) SeedProduct(p invdomain.Product) uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProductID++
	p.ID = s.nextProductID
	p.CreatedAt = time.Now()
	s.products[p.ID] = p
	return p.ID
}

// SeedStore inserts a store and returns its assigned ID
func (s *Store) SeedStore(st catalogdomain.Store) uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextStoreID++
	st.ID = s.nextStoreID
	st.CreatedAt = time.Now()
	s.stores[st.ID] = st
	return st.ID
}

// SeedPaymentMethod inserts a payment method and returns its assigned ID
func (s *Store) SeedPaymentMethod(m catalogdomain.PaymentMethod) uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMethodID++
	m.ID = s.nextMethodID
	m.CreatedAt = time.Now()
	s.methods[m.ID] = m
	return m.ID
}

// Products returns the product repository view of the store
func (s *Store) Products() *ProductRepository { return &ProductRepository{store: s} }

// Movements returns the movement repository view of the store
func (s *Store) Movements() *MovementRepository { return &MovementRepository{store: s} }

// Sales returns the sale repository view of the store
func (s *Store) Sales() *SaleRepository { return &SaleRepository{store: s} }

// Stores returns the store directory view of the store
func (s *Store) Stores() *StoreDirectory { return &StoreDirectory{store: s} }

// PaymentMethods returns the payment method lookup view of the store
func (s *Store) PaymentMethods() *PaymentMethods { return &PaymentMethods{store: s} }

// ProductRepository implements invdomain.ProductRepository
type ProductRepository struct {
	store *Store
}

func (r *ProductRepository) FindByID(_ context.Context, orgID, id uint) (*invdomain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.products[id]
	if !ok || p.OrganizationID != orgID {
		return nil, invdomain.ErrProductNotFound
	}
	return &p, nil
}

func (r *ProductRepository) FindForUpdate(ctx context.Context, orgID, id uint) (*invdomain.Product, error) {
	return r.FindByID(ctx, orgID, id)
}

func (r *ProductRepository) FindAll(_ context.Context, orgID uint, limit, offset int) ([]invdomain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var products []invdomain.Product
	for _, p := range r.store.products {
		if p.OrganizationID == orgID {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return paginate(products, limit, offset), nil
}

func (r *ProductRepository) UpdateStock(_ context.Context, id uint, stock int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[id]
	if !ok {
		return invdomain.ErrProductNotFound
	}
	p.CurrentStock = stock
	p.UpdatedAt = time.Now()
	r.store.products[id] = p
	return nil
}

func (r *ProductRepository) LowStock(_ context.Context, orgID uint) ([]invdomain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var products []invdomain.Product
	for _, p := range r.store.products {
		if p.OrganizationID == orgID && p.IsActive && p.CurrentStock <= p.MinStock {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].CurrentStock < products[j].CurrentStock })
	return products, nil
}

// MovementRepository implements invdomain.MovementRepository
type MovementRepository struct {
	store *Store
}

func (r *MovementRepository) Create(_ context.Context, movement *invdomain.StockMovement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextMovementID++
	movement.ID = r.store.nextMovementID
	movement.CreatedAt = time.Now()
	r.store.movements[movement.ID] = *movement
	return nil
}

func (r *MovementRepository) FindByID(_ context.Context, orgID, id uint) (*invdomain.StockMovement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.movements[id]
	if !ok || m.OrganizationID != orgID {
		return nil, invdomain.ErrMovementNotFound
	}
	return &m, nil
}

func (r *MovementRepository) LatestForProduct(_ context.Context, productID uint) (*invdomain.StockMovement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var latest *invdomain.StockMovement
	for id := range r.store.movements {
		m := r.store.movements[id]
		if m.ProductID != productID {
			continue
		}
		if latest == nil || m.ID > latest.ID {
			latest = &m
		}
	}
	if latest == nil {
		return nil, invdomain.ErrMovementNotFound
	}
	return latest, nil
}

func (r *MovementRepository) FindByProduct(_ context.Context, orgID, productID uint, limit, offset int) ([]invdomain.StockMovement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var movements []invdomain.StockMovement
	for _, m := range r.store.movements {
		if m.OrganizationID == orgID && m.ProductID == productID {
			movements = append(movements, m)
		}
	}
	sort.Slice(movements, func(i, j int) bool { return movements[i].ID > movements[j].ID })
	return paginate(movements, limit, offset), nil
}

func (r *MovementRepository) Delete(_ context.Context, id uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.movements, id)
	return nil
}

// SaleRepository implements saledomain.SaleRepository
type SaleRepository struct {
	store *Store
}

func (r *SaleRepository) Create(_ context.Context, sale *saledomain.Sale) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.sales {
		if existing.SaleNumber == sale.SaleNumber {
			return saledomain.ErrDuplicateSaleNumber
		}
	}

	r.store.nextSaleID++
	sale.ID = r.store.nextSaleID
	sale.CreatedAt = time.Now()
	r.store.sales[sale.ID] = *sale
	return nil
}

func (r *SaleRepository) FindByID(_ context.Context, orgID, id uint) (*saledomain.Sale, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sale, ok := r.store.sales[id]
	if !ok || sale.OrganizationID != orgID {
		return nil, saledomain.ErrSaleNotFound
	}
	sale.Items = r.liveItemsLocked(id)
	sale.Payments = r.livePaymentsLocked(id)
	return &sale, nil
}

func (r *SaleRepository) Update(_ context.Context, sale *saledomain.Sale) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.sales[sale.ID]; !ok {
		return saledomain.ErrSaleNotFound
	}
	stored := *sale
	stored.Items = nil
	stored.Payments = nil
	stored.UpdatedAt = time.Now()
	r.store.sales[sale.ID] = stored
	return nil
}

func (r *SaleRepository) List(_ context.Context, orgID uint, filter saledomain.ListFilter) ([]saledomain.Sale, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var sales []saledomain.Sale
	for _, sale := range r.store.sales {
		if sale.OrganizationID != orgID {
			continue
		}
		if filter.StoreID != 0 && sale.StoreID != filter.StoreID {
			continue
		}
		if filter.Status != "" && sale.Status != filter.Status {
			continue
		}
		sales = append(sales, sale)
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].ID > sales[j].ID })
	return paginate(sales, filter.Limit, filter.Offset), nil
}

func (r *SaleRepository) CreateItem(_ context.Context, item *saledomain.SaleItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextItemID++
	item.ID = r.store.nextItemID
	item.CreatedAt = time.Now()
	r.store.items[item.ID] = *item
	return nil
}

func (r *SaleRepository) FindItem(_ context.Context, orgID, itemID uint) (*saledomain.SaleItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.items[itemID]
	if !ok || r.store.deletedItems[itemID] {
		return nil, saledomain.ErrItemNotFound
	}
	sale, ok := r.store.sales[item.SaleID]
	if !ok || sale.OrganizationID != orgID {
		return nil, saledomain.ErrItemNotFound
	}
	return &item, nil
}

func (r *SaleRepository) UpdateItem(_ context.Context, item *saledomain.SaleItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.items[item.ID]; !ok {
		return saledomain.ErrItemNotFound
	}
	stored := *item
	stored.UpdatedAt = time.Now()
	r.store.items[item.ID] = stored
	return nil
}

func (r *SaleRepository) DeleteItem(_ context.Context, itemID uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.items[itemID]; !ok {
		return saledomain.ErrItemNotFound
	}
	r.store.deletedItems[itemID] = true
	return nil
}

func (r *SaleRepository) LiveItems(_ context.Context, saleID uint) ([]saledomain.SaleItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.liveItemsLocked(saleID), nil
}

func (r *SaleRepository) liveItemsLocked(saleID uint) []saledomain.SaleItem {
	var items []saledomain.SaleItem
	for id, item := range r.store.items {
		if item.SaleID == saleID && !r.store.deletedItems[id] {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (r *SaleRepository) CreatePayment(_ context.Context, payment *saledomain.SalePayment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextPaymentID++
	payment.ID = r.store.nextPaymentID
	payment.CreatedAt = time.Now()
	r.store.payments[payment.ID] = *payment
	return nil
}

func (r *SaleRepository) FindPayment(_ context.Context, orgID, paymentID uint) (*saledomain.SalePayment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	payment, ok := r.store.payments[paymentID]
	if !ok || r.store.deletedPayments[paymentID] {
		return nil, saledomain.ErrPaymentNotFound
	}
	sale, ok := r.store.sales[payment.SaleID]
	if !ok || sale.OrganizationID != orgID {
		return nil, saledomain.ErrPaymentNotFound
	}
	return &payment, nil
}

func (r *SaleRepository) DeletePayment(_ context.Context, paymentID uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.payments[paymentID]; !ok {
		return saledomain.ErrPaymentNotFound
	}
	r.store.deletedPayments[paymentID] = true
	return nil
}

func (r *SaleRepository) LivePayments(_ context.Context, saleID uint) ([]saledomain.SalePayment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.livePaymentsLocked(saleID), nil
}

func (r *SaleRepository) livePaymentsLocked(saleID uint) []saledomain.SalePayment {
	var payments []saledomain.SalePayment
	for id, payment := range r.store.payments {
		if payment.SaleID == saleID && !r.store.deletedPayments[id] {
			payments = append(payments, payment)
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
	return payments
}

// StoreDirectory implements catalogdomain.StoreDirectory
type StoreDirectory struct {
	store *Store
}

func (r *StoreDirectory) FindByID(_ context.Context, orgID, id uint) (*catalogdomain.Store, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	st, ok := r.store.stores[id]
	if !ok || st.OrganizationID != orgID {
		return nil, catalogdomain.ErrStoreNotFound
	}
	return &st, nil
}

func (r *StoreDirectory) ReserveSaleNumber(_ context.Context, orgID, storeID uint) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	st, ok := r.store.stores[storeID]
	if !ok || st.OrganizationID != orgID {
		return "", catalogdomain.ErrStoreNotFound
	}
	st.LastSaleNumber++
	st.UpdatedAt = time.Now()
	r.store.stores[storeID] = st

	prefix := st.SaleNumberPrefix
	if prefix == "" {
		prefix = "S"
	}
	return fmt.Sprintf("%s-%06d", prefix, st.LastSaleNumber), nil
}

// PaymentMethods implements catalogdomain.PaymentMethods
type PaymentMethods struct {
	store *Store
}

func (r *PaymentMethods) IsActive(_ context.Context, orgID, id uint) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.methods[id]
	if !ok || m.OrganizationID != orgID {
		return false, catalogdomain.ErrPaymentMethodNotFound
	}
	return m.IsActive, nil
}

func paginate[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
