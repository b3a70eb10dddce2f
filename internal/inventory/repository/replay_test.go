package repository

import (
	"testing"

	"github.com/quintaldo/pos-engine/internal/inventory/domain"
)

func TestReplayStockFoldsLedgerInOrder(t *testing.T) {
	tests := []struct {
		name    string
		entries []ledgerEntry
		want    int
	}{
		{"empty ledger", nil, 0},
		{"receipts and issues", []ledgerEntry{
			{Type: domain.MovementIn, Quantity: 10, NewStock: 10},
			{Type: domain.MovementIn, Quantity: 5, NewStock: 15},
			{Type: domain.MovementOut, Quantity: 7, NewStock: 8},
		}, 8},
		{"adjustment restarts the fold", []ledgerEntry{
			{Type: domain.MovementIn, Quantity: 10, NewStock: 10},
			{Type: domain.MovementOut, Quantity: 4, NewStock: 6},
			{Type: domain.MovementAdjustment, Quantity: 6, NewStock: 42},
			{Type: domain.MovementOut, Quantity: 2, NewStock: 40},
		}, 40},
		{"adjustment to zero", []ledgerEntry{
			{Type: domain.MovementIn, Quantity: 3, NewStock: 3},
			{Type: domain.MovementAdjustment, Quantity: 3, NewStock: 0},
		}, 0},
		{"movements before an adjustment never leak through", []ledgerEntry{
			{Type: domain.MovementIn, Quantity: 100, NewStock: 100},
			{Type: domain.MovementAdjustment, Quantity: 95, NewStock: 5},
			{Type: domain.MovementIn, Quantity: 1, NewStock: 6},
		}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := replayStock(tt.entries); got != tt.want {
				t.Fatalf("replayed stock = %d, want %d", got, tt.want)
			}
		})
	}
}
