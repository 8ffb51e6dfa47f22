// Package memory provides an in-memory Store for tests and throwaway runs.
package memory

import (
	"context"
	"sync"

	"github.com/Fezbot3000/Interestfree-tracker/interestfree"
	"github.com/Fezbot3000/Interestfree-tracker/planner"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Store implements planner.Store and interestfree.Store. Lists come back in
// insertion order; every read returns copies.
type Store struct {
	mu sync.RWMutex

	bills     map[planner.BillID]planner.Bill
	billOrder []planner.BillID

	payCycle *planner.PayCycle

	periods     map[interestfree.PeriodID]interestfree.BillingPeriod
	periodOrder []interestfree.PeriodID
}

func New() *Store {
	return &Store{
		bills:   make(map[planner.BillID]planner.Bill),
		periods: make(map[interestfree.PeriodID]interestfree.BillingPeriod),
	}
}

// =============================================================================
// BILLS
// =============================================================================

func (m *Store) SaveBill(_ context.Context, b planner.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bills[b.ID]; !ok {
		m.billOrder = append(m.billOrder, b.ID)
	}
	m.bills[b.ID] = cloneBill(b)
	return nil
}

func (m *Store) GetBill(_ context.Context, id planner.BillID) (*planner.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bills[id]
	if !ok {
		return nil, planner.ErrNotFound
	}
	b = cloneBill(b)
	return &b, nil
}

func (m *Store) ListBills(_ context.Context) ([]planner.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]planner.Bill, 0, len(m.billOrder))
	for _, id := range m.billOrder {
		result = append(result, cloneBill(m.bills[id]))
	}
	return result, nil
}

func (m *Store) DeleteBill(_ context.Context, id planner.BillID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bills[id]; !ok {
		return planner.ErrNotFound
	}
	delete(m.bills, id)
	m.billOrder = removeID(m.billOrder, id)
	return nil
}

func (m *Store) ReplaceBills(_ context.Context, bills []planner.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bills = make(map[planner.BillID]planner.Bill, len(bills))
	m.billOrder = m.billOrder[:0]
	for _, b := range bills {
		if _, ok := m.bills[b.ID]; !ok {
			m.billOrder = append(m.billOrder, b.ID)
		}
		m.bills[b.ID] = cloneBill(b)
	}
	return nil
}

// =============================================================================
// PAY CYCLE SETTINGS
// =============================================================================

func (m *Store) PayCycle(_ context.Context) (planner.PayCycle, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.payCycle == nil {
		return planner.PayCycle{}, false, nil
	}
	return *m.payCycle, true, nil
}

func (m *Store) SavePayCycle(_ context.Context, pc planner.PayCycle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payCycle = &pc
	return nil
}

// =============================================================================
// BILLING PERIODS
// =============================================================================

func (m *Store) SavePeriod(_ context.Context, p interestfree.BillingPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.periods[p.ID]
	if ok {
		p.Transactions = existing.Transactions
	} else {
		m.periodOrder = append(m.periodOrder, p.ID)
		p.Transactions = cloneTransactions(p.Transactions)
	}
	m.periods[p.ID] = p
	return nil
}

func (m *Store) GetPeriod(_ context.Context, id interestfree.PeriodID) (*interestfree.BillingPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.periods[id]
	if !ok {
		return nil, interestfree.ErrPeriodNotFound
	}
	p.Transactions = cloneTransactions(p.Transactions)
	return &p, nil
}

func (m *Store) ListPeriods(_ context.Context) ([]interestfree.BillingPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]interestfree.BillingPeriod, 0, len(m.periodOrder))
	for _, id := range m.periodOrder {
		p := m.periods[id]
		p.Transactions = cloneTransactions(p.Transactions)
		result = append(result, p)
	}
	return result, nil
}

func (m *Store) DeletePeriod(_ context.Context, id interestfree.PeriodID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.periods[id]; !ok {
		return interestfree.ErrPeriodNotFound
	}
	delete(m.periods, id)
	m.periodOrder = removeID(m.periodOrder, id)
	return nil
}

func (m *Store) AddTransaction(_ context.Context, id interestfree.PeriodID, tx interestfree.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.periods[id]
	if !ok {
		return interestfree.ErrPeriodNotFound
	}
	p.Transactions = append(cloneTransactions(p.Transactions), tx)
	m.periods[id] = p
	return nil
}

func (m *Store) DeleteTransaction(_ context.Context, id interestfree.PeriodID, txID interestfree.TransactionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.periods[id]
	if !ok {
		return interestfree.ErrPeriodNotFound
	}
	kept := make([]interestfree.Transaction, 0, len(p.Transactions))
	for _, tx := range p.Transactions {
		if tx.ID != txID {
			kept = append(kept, tx)
		}
	}
	if len(kept) == len(p.Transactions) {
		return interestfree.ErrTransactionNotFound
	}
	p.Transactions = kept
	m.periods[id] = p
	return nil
}

func (m *Store) ReplacePeriods(_ context.Context, periods []interestfree.BillingPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.periods = make(map[interestfree.PeriodID]interestfree.BillingPeriod, len(periods))
	m.periodOrder = m.periodOrder[:0]
	for _, p := range periods {
		if _, ok := m.periods[p.ID]; !ok {
			m.periodOrder = append(m.periodOrder, p.ID)
		}
		p.Transactions = cloneTransactions(p.Transactions)
		m.periods[p.ID] = p
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func cloneBill(b planner.Bill) planner.Bill {
	if c := b.Frequency.Custom; c != nil {
		rule := *c
		rule.Weekdays = append(rule.Weekdays[:0:0], c.Weekdays...)
		b.Frequency.Custom = &rule
	}
	return b
}

func cloneTransactions(txs []interestfree.Transaction) []interestfree.Transaction {
	out := make([]interestfree.Transaction, len(txs))
	copy(out, txs)
	return out
}

func removeID[T comparable](ids []T, id T) []T {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

var (
	_ planner.Store      = (*Store)(nil)
	_ interestfree.Store = (*Store)(nil)
)
