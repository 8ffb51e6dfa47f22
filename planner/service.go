package planner

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/money"
)

// =============================================================================
// SERVICE - Bill management on top of a Store
// =============================================================================

// Service validates and persists bills and projects them on demand. Each
// projection reads fresh input from the store; no cycle state is kept.
type Service struct {
	Store   Store
	Options Options

	// Now is overridable in tests.
	Now func() calendar.TimePoint
}

func NewService(store Store, opts Options) *Service {
	return &Service{Store: store, Options: opts, Now: calendar.Today}
}

// AddBill validates b, assigns an ID if missing, memoises its category and
// stores it.
func (s *Service) AddBill(ctx context.Context, b Bill) (Bill, error) {
	if err := ValidateBill(b); err != nil {
		return Bill{}, err
	}
	if b.ID == "" {
		b.ID = BillID(uuid.NewString())
	}

	b.DateCategory = ""
	categorized, err := Categorize(b)
	if err != nil {
		return Bill{}, err
	}

	if err := s.Store.SaveBill(ctx, categorized); err != nil {
		return Bill{}, fmt.Errorf("saving bill: %w", err)
	}
	s.log().WithField("bill", categorized.Name).Debug("bill added")
	return categorized, nil
}

// UpdateBill replaces an existing bill. The category is recomputed only if
// the anchor date changed; otherwise the memoised value is kept.
func (s *Service) UpdateBill(ctx context.Context, b Bill) (Bill, error) {
	existing, err := s.Store.GetBill(ctx, b.ID)
	if err != nil {
		return Bill{}, err
	}
	if err := ValidateBill(b); err != nil {
		return Bill{}, err
	}

	b.DateCategory = existing.DateCategory
	if b.Date != existing.Date {
		b.DateCategory = ""
	}
	categorized, err := Categorize(b)
	if err != nil {
		return Bill{}, err
	}

	if err := s.Store.SaveBill(ctx, categorized); err != nil {
		return Bill{}, fmt.Errorf("saving bill: %w", err)
	}
	return categorized, nil
}

func (s *Service) DeleteBill(ctx context.Context, id BillID) error {
	return s.Store.DeleteBill(ctx, id)
}

func (s *Service) Bills(ctx context.Context) ([]Bill, error) {
	return s.Store.ListBills(ctx)
}

// PayCycle returns the stored settings, or the defaults (today,
// Fortnightly, zero income) when none are stored.
func (s *Service) PayCycle(ctx context.Context) (PayCycle, error) {
	pc, ok, err := s.Store.PayCycle(ctx)
	if err != nil {
		return PayCycle{}, err
	}
	if !ok {
		return PayCycle{Start: s.now(), Frequency: PayFortnightly, Income: money.Zero()}, nil
	}
	return pc, nil
}

func (s *Service) SetPayCycle(ctx context.Context, pc PayCycle) (PayCycle, error) {
	if err := pc.Validate(); err != nil {
		return PayCycle{}, err
	}
	pc.Start = pc.Start.Normalize()
	if err := s.Store.SavePayCycle(ctx, pc); err != nil {
		return PayCycle{}, fmt.Errorf("saving pay cycle: %w", err)
	}
	return pc, nil
}

// Project loads bills and settings and generates cycles. count overrides
// Options.CycleCount when positive.
func (s *Service) Project(ctx context.Context, count int) (Projection, error) {
	bills, err := s.Store.ListBills(ctx)
	if err != nil {
		return Projection{}, err
	}
	pc, err := s.PayCycle(ctx)
	if err != nil {
		return Projection{}, err
	}

	opts := s.Options
	if count > 0 {
		opts.CycleCount = count
	}
	return GenerateCycles(bills, pc, opts), nil
}

// Rollover moves the stored pay-cycle start forward by whole cycles until
// the first cycle contains today. It reports whether anything changed.
func (s *Service) Rollover(ctx context.Context) (PayCycle, bool, error) {
	pc, ok, err := s.Store.PayCycle(ctx)
	if err != nil || !ok {
		return pc, false, err
	}

	today := s.now()
	start := pc.Start.Normalize()
	moved := false
	for pc.Frequency.EndFor(start).Before(today) {
		start = pc.Frequency.EndFor(start).AddDays(1)
		moved = true
	}
	if !moved {
		return pc, false, nil
	}

	pc.Start = start
	if err := s.Store.SavePayCycle(ctx, pc); err != nil {
		return pc, false, fmt.Errorf("saving pay cycle: %w", err)
	}
	s.log().WithField("start", start.String()).Info("pay cycle rolled forward")
	return pc, true, nil
}

func (s *Service) now() calendar.TimePoint {
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
