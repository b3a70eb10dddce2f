package memory

import (
	"context"
	"sync"

	catalogdomain "github.com/quintaldo/pos-engine/internal/catalog/domain"
	invdomain "github.com/quintaldo/pos-engine/internal/inventory/domain"
	saledomain "github.com/quintaldo/pos-engine/internal/sale/domain"
)

type txKey struct{}

// TxManager serializes units of work against the in-memory store and rolls
// the whole state back when the unit fails, mirroring the all-or-nothing
// behavior of a database transaction.
type TxManager struct {
	txMu  sync.Mutex
	store *Store
}

// NewTxManager creates a transaction manager over the given store
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Do runs fn as one atomic unit. A nested call joins the enclosing unit.
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()

	snapshot := m.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		m.store.restore(snapshot)
		return err
	}
	return nil
}

type storeSnapshot struct {
	nextProductID  uint
	nextMovementID uint
	nextSaleID     uint
	nextItemID     uint
	nextPaymentID  uint
	nextStoreID    uint
	nextMethodID   uint

	products        map[uint]invdomain.Product
	movements       map[uint]invdomain.StockMovement
	sales           map[uint]saledomain.Sale
	items           map[uint]saledomain.SaleItem
	payments        map[uint]saledomain.SalePayment
	stores          map[uint]catalogdomain.Store
	methods         map[uint]catalogdomain.PaymentMethod
	deletedItems    map[uint]bool
	deletedPayments map[uint]bool
}

func (s *Store) snapshot() storeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return storeSnapshot{
		nextProductID:   s.nextProductID,
		nextMovementID:  s.nextMovementID,
		nextSaleID:      s.nextSaleID,
		nextItemID:      s.nextItemID,
		nextPaymentID:   s.nextPaymentID,
		nextStoreID:     s.nextStoreID,
		nextMethodID:    s.nextMethodID,
		products:        copyMap(s.products),
		movements:       copyMap(s.movements),
		sales:           copyMap(s.sales),
		items:           copyMap(s.items),
		payments:        copyMap(s.payments),
		stores:          copyMap(s.stores),
		methods:         copyMap(s.methods),
		deletedItems:    copyMap(s.deletedItems),
		deletedPayments: copyMap(s.deletedPayments),
	}
}

func (s *Store) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProductID = snap.nextProductID
	s.nextMovementID = snap.nextMovementID
	s.nextSaleID = snap.nextSaleID
	s.nextItemID = snap.nextItemID
	s.nextPaymentID = snap.nextPaymentID
	s.nextStoreID = snap.nextStoreID
	s.nextMethodID = snap.nextMethodID
	s.products = snap.products
	s.movements = snap.movements
	s.sales = snap.sales
	s.items = snap.items
	s.payments = snap.payments
	s.stores = snap.stores
	s.methods = snap.methods
	s.deletedItems = snap.deletedItems
	s.deletedPayments = snap.deletedPayments
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
