package interestfree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/interestfree"
	"github.com/Fezbot3000/Interestfree-tracker/money"
	"github.com/Fezbot3000/Interestfree-tracker/store/memory"
)

func date(s string) calendar.TimePoint { return calendar.MustParseDate(s) }

func newService(today string) *interestfree.Service {
	svc := interestfree.NewService(memory.New(), interestfree.Options{})
	svc.Now = func() calendar.TimePoint { return date(today) }
	return svc
}

func january(t *testing.T, svc *interestfree.Service) interestfree.BillingPeriod {
	t.Helper()
	p, err := svc.CreatePeriod(context.Background(), interestfree.PeriodInput{
		Start: date("2025-01-01"),
		End:   date("2025-01-31"),
	})
	require.NoError(t, err)
	return p
}

// =============================================================================
// PERIOD CALCULATIONS
// =============================================================================

func TestBillingPeriod_InterestFreeEnd(t *testing.T) {
	p := interestfree.BillingPeriod{Start: date("2025-01-01"), InterestFreeDays: 55}
	assert.Equal(t, "2025-02-24", p.ComputeInterestFreeEnd().String())
}

func TestBillingPeriod_RemainingDaysAndStatus(t *testing.T) {
	p := interestfree.BillingPeriod{Start: date("2025-01-01"), End: date("2025-01-31"), InterestFreeDays: 55}

	tests := []struct {
		today  string
		want   int
		status interestfree.Status
	}{
		{"2025-01-01", 55, interestfree.StatusActive},
		{"2025-01-11", 45, interestfree.StatusActive},
		{"2025-02-24", 1, interestfree.StatusActive},
		{"2025-02-25", 0, interestfree.StatusExpired},
		{"2025-06-01", 0, interestfree.StatusExpired},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.RemainingDays(date(tt.today)), tt.today)
		assert.Equal(t, tt.status, p.Status(date(tt.today)), tt.today)
	}
}

func TestBillingPeriod_TotalOwing(t *testing.T) {
	p := interestfree.BillingPeriod{Transactions: []interestfree.Transaction{
		{Amount: money.MustParse("120.50"), Type: interestfree.Expense},
		{Amount: money.MustParse("79.50"), Type: interestfree.Expense},
		{Amount: money.MustParse("50"), Type: interestfree.Repayment},
	}}

	assert.Equal(t, "200.00", p.Expenses().String())
	assert.Equal(t, "50.00", p.Repayments().String())
	assert.Equal(t, "150.00", p.TotalOwing().String())
}

func TestBillingPeriod_MigrateFillsMissingEnd(t *testing.T) {
	p := interestfree.BillingPeriod{Start: date("2025-01-01"), End: date("2025-01-31")}
	assert.True(t, p.Migrate())
	assert.Equal(t, interestfree.DefaultInterestFreeDays, p.InterestFreeDays)
	assert.Equal(t, "2025-02-24", p.InterestFreeEnd.String())
	assert.False(t, p.Migrate())
}

// =============================================================================
// SERVICE
// =============================================================================

func TestService_CreatePeriodDefaults(t *testing.T) {
	svc := newService("2025-01-10")
	p := january(t, svc)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 55, p.InterestFreeDays)
	assert.Equal(t, "2025-02-24", p.InterestFreeEnd.String())
	assert.Empty(t, p.Transactions)
}

func TestService_CreatePeriodRejectsReversedDates(t *testing.T) {
	svc := newService("2025-01-10")
	_, err := svc.CreatePeriod(context.Background(), interestfree.PeriodInput{
		Start: date("2025-02-01"),
		End:   date("2025-01-01"),
	})
	assert.ErrorIs(t, err, interestfree.ErrInvalidPeriod)
}

func TestService_UpdatePeriodRecomputesEnd(t *testing.T) {
	ctx := context.Background()
	svc := newService("2025-01-10")
	p := january(t, svc)

	updated, err := svc.UpdatePeriod(ctx, p.ID, interestfree.PeriodInput{
		Start: date("2025-01-05"),
		End:   date("2025-02-04"),
		Days:  44,
	})
	require.NoError(t, err)
	assert.Equal(t, 44, updated.InterestFreeDays)
	assert.Equal(t, "2025-02-17", updated.InterestFreeEnd.String())

	_, err = svc.UpdatePeriod(ctx, "missing", interestfree.PeriodInput{Start: date("2025-01-01"), End: date("2025-01-02")})
	assert.ErrorIs(t, err, interestfree.ErrPeriodNotFound)
}

func TestService_Transactions(t *testing.T) {
	ctx := context.Background()
	svc := newService("2025-01-10")
	p := january(t, svc)

	// GIVEN: An expense and a repayment without description
	_, err := svc.AddTransaction(ctx, p.ID, interestfree.TransactionInput{
		Date: date("2025-01-03"), Amount: money.MustParse("300"), Type: interestfree.Expense, Description: "TV",
	})
	require.NoError(t, err)
	repay, err := svc.AddTransaction(ctx, p.ID, interestfree.TransactionInput{
		Date: date("2025-01-20"), Amount: money.MustParse("100"), Type: interestfree.Repayment,
	})
	require.NoError(t, err)
	assert.Equal(t, "Payment", repay.Description)

	// WHEN: Reading the period back
	got, err := svc.Period(ctx, p.ID)
	require.NoError(t, err)

	// THEN: Total owing reflects both
	assert.Len(t, got.Transactions, 2)
	assert.Equal(t, "200.00", got.TotalOwing().String())

	// AND: Deleting the repayment restores the full balance
	require.NoError(t, svc.DeleteTransaction(ctx, p.ID, repay.ID))
	got, err = svc.Period(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "300.00", got.TotalOwing().String())

	assert.ErrorIs(t, svc.DeleteTransaction(ctx, p.ID, repay.ID), interestfree.ErrTransactionNotFound)
}

func TestService_AddTransactionValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService("2025-01-10")
	p := january(t, svc)

	tests := map[string]struct {
		in      interestfree.TransactionInput
		wantErr error
	}{
		"outside period": {interestfree.TransactionInput{Date: date("2025-02-01"), Amount: money.MustParse("10"), Type: interestfree.Expense}, interestfree.ErrOutsidePeriod},
		"zero amount":    {interestfree.TransactionInput{Date: date("2025-01-05"), Amount: money.Zero(), Type: interestfree.Expense}, interestfree.ErrInvalidTransaction},
		"bad type":       {interestfree.TransactionInput{Date: date("2025-01-05"), Amount: money.MustParse("10"), Type: "refund"}, interestfree.ErrInvalidTransaction},
	}
	for name, tt := range tests {
		_, err := svc.AddTransaction(ctx, p.ID, tt.in)
		assert.ErrorIs(t, err, tt.wantErr, name)
	}

	// Boundaries are inclusive
	_, err := svc.AddTransaction(ctx, p.ID, interestfree.TransactionInput{Date: date("2025-01-31"), Amount: money.MustParse("1"), Type: interestfree.Expense})
	assert.NoError(t, err)

	_, err = svc.AddTransaction(ctx, "missing", interestfree.TransactionInput{Date: date("2025-01-05"), Amount: money.MustParse("1"), Type: interestfree.Expense})
	assert.ErrorIs(t, err, interestfree.ErrPeriodNotFound)
}

func TestService_PeriodsNewestFirstAndMigrated(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := interestfree.NewService(store, interestfree.Options{DefaultDays: 45})

	// GIVEN: An old record without an interest-free end, and a newer period
	require.NoError(t, store.SavePeriod(ctx, interestfree.BillingPeriod{
		ID: "old", Start: date("2024-11-01"), End: date("2024-11-30"),
	}))
	_, err := svc.CreatePeriod(ctx, interestfree.PeriodInput{Start: date("2024-12-01"), End: date("2024-12-31")})
	require.NoError(t, err)

	// WHEN: Listing
	periods, err := svc.Periods(ctx)
	require.NoError(t, err)

	// THEN: Newest first, and the old record is migrated and persisted
	require.Len(t, periods, 2)
	assert.Equal(t, "2024-12-01", periods[0].Start.String())
	assert.Equal(t, 45, periods[0].InterestFreeDays)
	assert.Equal(t, interestfree.PeriodID("old"), periods[1].ID)
	assert.Equal(t, "2024-12-25", periods[1].InterestFreeEnd.String())

	stored, err := store.GetPeriod(ctx, "old")
	require.NoError(t, err)
	assert.False(t, stored.InterestFreeEnd.IsZero())
}
