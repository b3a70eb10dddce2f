//go:build wireinject
// +build wireinject

package sale

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	catalogdomain "github.com/quintaldo/pos-engine/internal/catalog/domain"
	catalogrepo "github.com/quintaldo/pos-engine/internal/catalog/repository"
	"github.com/quintaldo/pos-engine/internal/inventory"
	"github.com/quintaldo/pos-engine/internal/sale/delivery/http"
	"github.com/quintaldo/pos-engine/internal/sale/domain"
	"github.com/quintaldo/pos-engine/internal/sale/repository"
	"github.com/quintaldo/pos-engine/internal/sale/usecase/command"
	"github.com/quintaldo/pos-engine/internal/sale/usecase/query"
	"github.com/quintaldo/pos-engine/pkg/database"
)

// ProvideSaleRepository provides the sale repository
func ProvideSaleRepository(db *gorm.DB) domain.SaleRepository {
	return repository.NewSaleRepositoryWithTracing(db)
}

// ProvideStoreDirectory provides the store directory
func ProvideStoreDirectory(db *gorm.DB) catalogdomain.StoreDirectory {
	return catalogrepo.NewGormStoreDirectory(db)
}

// ProvidePaymentMethods provides the payment method lookup, cached through
// redis when a client is configured.
func ProvidePaymentMethods(db *gorm.DB, rdb *redis.Client) catalogdomain.PaymentMethods {
	inner := catalogrepo.NewGormPaymentMethods(db)
	if rdb == nil {
		return inner
	}
	return catalogrepo.NewCachedPaymentMethods(inner, rdb, 0)
}

// ProvideTxManager provides the transaction manager
func ProvideTxManager(db *gorm.DB) domain.TxManager {
	return database.NewTxManager(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideSaleRepository,
	ProvideStoreDirectory,
	ProvidePaymentMethods,
	ProvideTxManager,
	inventory.ProvideProductRepository,
)

var CommandHandlerSet = wire.NewSet(
	command.NewCreateSaleHandler,
	command.NewAddItemHandler,
	command.NewUpdateItemHandler,
	command.NewRemoveItemHandler,
	command.NewAddPaymentHandler,
	command.NewRemovePaymentHandler,
	command.NewCancelSaleHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetSaleHandler,
	query.NewListSalesHandler,
)

// InitializeSaleHandler initializes the sale HTTP handler with all dependencies
func InitializeSaleHandler(db *gorm.DB, rdb *redis.Client, publisher command.EventPublisher) (*http.SaleHandler, error) {
	wire.Build(
		RepositorySet,
		CommandHandlerSet,
		QueryHandlerSet,
		inventory.InitializeAdjuster,
		http.NewSaleHandler,
	)
	return nil, nil
}
