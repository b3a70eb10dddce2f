package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/quintaldo/pos-engine/internal/inventory/domain"
)

// ReplayReport compares the stock value reconstructed from the ledger with
// the denormalized projection on the product row. The two must agree; a
// mismatch means the ledger invariant was broken.
type ReplayReport struct {
	ProductID     uint `json:"product_id"`
	RecordedStock int  `json:"recorded_stock"`
	ReplayedStock int  `json:"replayed_stock"`
	Movements     int  `json:"movements"`
	Consistent    bool `json:"consistent"`
}

// ledgerEntry is the slice of a stock movement the replay needs.
type ledgerEntry struct {
	Type     domain.MovementType
	Quantity int
	NewStock int
}

// replayStock folds an ordered movement history into a stock value. An
// ADJUSTMENT records an absolute stock, so the fold restarts from its
// NewStock; IN adds and OUT subtracts the movement quantity.
func replayStock(entries []ledgerEntry) int {
	stock := 0
	for _, e := range entries {
		switch e.Type {
		case domain.MovementAdjustment:
			stock = e.NewStock
		case domain.MovementIn:
			stock += e.Quantity
		case domain.MovementOut:
			stock -= e.Quantity
		}
	}
	return stock
}

// ReplayReporter recomputes product stock from the movement ledger using raw
// SQL on the read side.
type ReplayReporter struct {
	db *sql.DB
}

// NewReplayReporter creates a new replay reporter
func NewReplayReporter(db *sql.DB) *ReplayReporter {
	return &ReplayReporter{db: db}
}

// Replay reconstructs the stock of one product from its full movement
// history in ledger order and checks it against the projection.
func (r *ReplayReporter) Replay(ctx context.Context, orgID, productID uint) (*ReplayReport, error) {
	report := &ReplayReport{ProductID: productID}

	err := r.db.QueryRowContext(ctx, `
		SELECT current_stock
		FROM products
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`, productID, orgID).Scan(&report.RecordedStock)
	if err != nil {
		return nil, fmt.Errorf("failed to read product stock: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT type, quantity, new_stock
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY id ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to read movement ledger: %w", err)
	}
	defer rows.Close()

	var entries []ledgerEntry
	for rows.Next() {
		var e ledgerEntry
		if err := rows.Scan(&e.Type, &e.Quantity, &e.NewStock); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read movement ledger: %w", err)
	}

	report.Movements = len(entries)
	report.ReplayedStock = replayStock(entries)
	report.Consistent = report.ReplayedStock == report.RecordedStock
	return report, nil
}
