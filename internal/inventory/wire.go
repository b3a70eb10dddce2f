//go:build wireinject
// +build wireinject

package inventory

import (
	"database/sql"

	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/quintaldo/pos-engine/internal/inventory/delivery/http"
	"github.com/quintaldo/pos-engine/internal/inventory/domain"
	"github.com/quintaldo/pos-engine/internal/inventory/repository"
	"github.com/quintaldo/pos-engine/internal/inventory/usecase/command"
	"github.com/quintaldo/pos-engine/internal/inventory/usecase/query"
	"github.com/quintaldo/pos-engine/pkg/database"
)

// ProvideProductRepository provides the product repository
func ProvideProductRepository(db *gorm.DB) domain.ProductRepository {
	return repository.NewProductRepositoryWithTracing(db)
}

// ProvideMovementRepository provides the stock movement repository
func ProvideMovementRepository(db *gorm.DB) domain.MovementRepository {
	return repository.NewMovementRepositoryWithTracing(db)
}

// ProvideTxManager provides the transaction manager
func ProvideTxManager(db *gorm.DB) domain.TxManager {
	return database.NewTxManager(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideProductRepository,
	ProvideMovementRepository,
	ProvideTxManager,
)

var HandlerSet = wire.NewSet(
	command.NewApplyMovementHandler,
	command.NewAdjuster,
	command.NewUndoMovementHandler,
	query.NewListMovementsHandler,
	query.NewLowStockHandler,
	repository.NewReplayReporter,
)

// InitializeStockHandler initializes the stock HTTP handler with all dependencies
func InitializeStockHandler(db *gorm.DB, reportDB *sql.DB, publisher http.MovementPublisher) (*http.StockHandler, error) {
	wire.Build(
		RepositorySet,
		HandlerSet,
		http.NewStockHandler,
	)
	return nil, nil
}

// InitializeAdjuster initializes the stock adjuster used by the sale slice
func InitializeAdjuster(db *gorm.DB) (*command.Adjuster, error) {
	wire.Build(
		RepositorySet,
		command.NewApplyMovementHandler,
		command.NewAdjuster,
	)
	return nil, nil
}
