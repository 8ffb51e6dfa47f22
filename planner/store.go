package planner

import "context"

// =============================================================================
// STORE - Persistence collaborator for bills and pay-cycle settings
// =============================================================================

// BillStore persists the master bill list. List order is insertion order;
// the generator emits occurrences in that order.
type BillStore interface {
	// SaveBill inserts or replaces a bill by ID.
	SaveBill(ctx context.Context, b Bill) error

	// GetBill returns ErrNotFound if the bill does not exist.
	GetBill(ctx context.Context, id BillID) (*Bill, error)

	ListBills(ctx context.Context) ([]Bill, error)

	// DeleteBill returns ErrNotFound if the bill does not exist.
	DeleteBill(ctx context.Context, id BillID) error

	// ReplaceBills swaps the whole list atomically (used by import).
	ReplaceBills(ctx context.Context, bills []Bill) error
}

// SettingsStore persists the single pay-cycle configuration.
type SettingsStore interface {
	// PayCycle returns ok=false if nothing has been saved yet.
	PayCycle(ctx context.Context) (pc PayCycle, ok bool, err error)
	SavePayCycle(ctx context.Context, pc PayCycle) error
}

type Store interface {
	BillStore
	SettingsStore
}
