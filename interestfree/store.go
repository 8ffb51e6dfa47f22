package interestfree

import "context"

// Store persists billing periods and their transactions. Transactions are
// owned by their period; deleting a period deletes them.
type Store interface {
	// SavePeriod inserts or replaces a period's own fields. Its
	// transactions are left as stored.
	SavePeriod(ctx context.Context, p BillingPeriod) error

	// GetPeriod returns ErrPeriodNotFound if the period does not exist.
	GetPeriod(ctx context.Context, id PeriodID) (*BillingPeriod, error)

	ListPeriods(ctx context.Context) ([]BillingPeriod, error)

	// DeletePeriod returns ErrPeriodNotFound if the period does not exist.
	DeletePeriod(ctx context.Context, id PeriodID) error

	// AddTransaction returns ErrPeriodNotFound if the period does not exist.
	AddTransaction(ctx context.Context, id PeriodID, tx Transaction) error

	// DeleteTransaction returns ErrTransactionNotFound if the transaction
	// does not belong to the period.
	DeleteTransaction(ctx context.Context, id PeriodID, txID TransactionID) error

	// ReplacePeriods swaps every period and transaction atomically (used by import).
	ReplacePeriods(ctx context.Context, periods []BillingPeriod) error
}
