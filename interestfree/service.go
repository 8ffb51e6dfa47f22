package interestfree

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/money"
)

// =============================================================================
// SERVICE - Billing period management on top of a Store
// =============================================================================

type Options struct {
	// DefaultDays is used when a period is created without a day count.
	DefaultDays int
	Logger      logrus.FieldLogger
}

type Service struct {
	Store   Store
	Options Options

	// Now is overridable in tests.
	Now func() calendar.TimePoint
}

func NewService(store Store, opts Options) *Service {
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = DefaultInterestFreeDays
	}
	return &Service{Store: store, Options: opts, Now: calendar.Today}
}

// PeriodInput carries the user-editable fields of a period. Zero Days means
// the configured default.
type PeriodInput struct {
	Start calendar.TimePoint
	End   calendar.TimePoint
	Days  int
}

func (s *Service) validate(in PeriodInput) error {
	if in.Start.IsZero() {
		return &FieldError{Field: "startDate", Reason: "required", Err: ErrInvalidPeriod}
	}
	if in.End.IsZero() {
		return &FieldError{Field: "endDate", Reason: "required", Err: ErrInvalidPeriod}
	}
	if in.Start.After(in.End) {
		return &FieldError{Field: "endDate", Reason: "must not be before start date", Err: ErrInvalidPeriod}
	}
	if in.Days < 0 {
		return &FieldError{Field: "interestFreePeriodDays", Reason: "must be positive", Err: ErrInvalidPeriod}
	}
	return nil
}

// CreatePeriod starts a new billing period with no transactions.
func (s *Service) CreatePeriod(ctx context.Context, in PeriodInput) (BillingPeriod, error) {
	if err := s.validate(in); err != nil {
		return BillingPeriod{}, err
	}
	days := in.Days
	if days == 0 {
		days = s.Options.DefaultDays
	}

	p := BillingPeriod{
		ID:               PeriodID(uuid.NewString()),
		Start:            in.Start.Normalize(),
		End:              in.End.Normalize(),
		InterestFreeDays: days,
		Transactions:     []Transaction{},
	}
	p.InterestFreeEnd = p.ComputeInterestFreeEnd()

	if err := s.Store.SavePeriod(ctx, p); err != nil {
		return BillingPeriod{}, fmt.Errorf("saving billing period: %w", err)
	}
	s.log().WithFields(logrus.Fields{"period": p.ID, "start": p.Start.String()}).Debug("billing period created")
	return p, nil
}

// UpdatePeriod changes the dates and day count and recomputes the
// interest-free end. Transactions are kept.
func (s *Service) UpdatePeriod(ctx context.Context, id PeriodID, in PeriodInput) (BillingPeriod, error) {
	p, err := s.Store.GetPeriod(ctx, id)
	if err != nil {
		return BillingPeriod{}, err
	}
	if err := s.validate(in); err != nil {
		return BillingPeriod{}, err
	}

	p.Start = in.Start.Normalize()
	p.End = in.End.Normalize()
	if in.Days > 0 {
		p.InterestFreeDays = in.Days
	}
	p.InterestFreeEnd = p.ComputeInterestFreeEnd()

	if err := s.Store.SavePeriod(ctx, *p); err != nil {
		return BillingPeriod{}, fmt.Errorf("saving billing period: %w", err)
	}
	return *p, nil
}

func (s *Service) DeletePeriod(ctx context.Context, id PeriodID) error {
	return s.Store.DeletePeriod(ctx, id)
}

// Period returns one period with missing fields migrated in.
func (s *Service) Period(ctx context.Context, id PeriodID) (BillingPeriod, error) {
	p, err := s.Store.GetPeriod(ctx, id)
	if err != nil {
		return BillingPeriod{}, err
	}
	if p.Migrate() {
		if err := s.Store.SavePeriod(ctx, *p); err != nil {
			return BillingPeriod{}, fmt.Errorf("migrating billing period: %w", err)
		}
	}
	return *p, nil
}

// Periods returns every period newest first. Records missing an
// interest-free end are migrated and written back.
func (s *Service) Periods(ctx context.Context) ([]BillingPeriod, error) {
	periods, err := s.Store.ListPeriods(ctx)
	if err != nil {
		return nil, err
	}
	for i := range periods {
		if !periods[i].Migrate() {
			continue
		}
		if err := s.Store.SavePeriod(ctx, periods[i]); err != nil {
			return nil, fmt.Errorf("migrating billing period: %w", err)
		}
		s.log().WithField("period", periods[i].ID).Info("billing period migrated")
	}
	SortNewestFirst(periods)
	return periods, nil
}

// TransactionInput carries a new expense or repayment.
type TransactionInput struct {
	Date        calendar.TimePoint
	Description string
	Amount      money.Amount
	Type        TransactionType
}

// AddTransaction records an expense or repayment. The date must fall inside
// the period's statement window.
func (s *Service) AddTransaction(ctx context.Context, id PeriodID, in TransactionInput) (Transaction, error) {
	p, err := s.Store.GetPeriod(ctx, id)
	if err != nil {
		return Transaction{}, err
	}

	if !in.Type.Valid() {
		return Transaction{}, &FieldError{Field: "type", Reason: "must be expense or repayment", Err: ErrInvalidTransaction}
	}
	if !in.Amount.IsPositive() {
		return Transaction{}, &FieldError{Field: "amount", Reason: "must be greater than zero", Err: ErrInvalidTransaction}
	}
	if in.Date.IsZero() {
		return Transaction{}, &FieldError{Field: "date", Reason: "required", Err: ErrInvalidTransaction}
	}
	if !p.Window().Contains(in.Date) {
		return Transaction{}, &FieldError{Field: "date", Reason: fmt.Sprintf("must be within %s", p.Window()), Err: ErrOutsidePeriod}
	}

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		desc = in.Type.DefaultDescription()
	}

	tx := Transaction{
		ID:          TransactionID(uuid.NewString()),
		Date:        in.Date.Normalize(),
		Description: desc,
		Amount:      in.Amount,
		Type:        in.Type,
	}
	if err := s.Store.AddTransaction(ctx, id, tx); err != nil {
		return Transaction{}, fmt.Errorf("saving transaction: %w", err)
	}
	return tx, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, id PeriodID, txID TransactionID) error {
	return s.Store.DeleteTransaction(ctx, id, txID)
}

func (s *Service) Today() calendar.TimePoint {
	if s.Now != nil {
		return s.Now()
	}
	return calendar.Today()
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func (s *Service) log() logrus.FieldLogger {
	if s.Options.Logger != nil {
		return s.Options.Logger
	}
	return discard
}
