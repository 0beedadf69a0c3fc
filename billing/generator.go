package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pverdier/go-gestion-locative/shared/models"
)

// Summary reports what a generation run did.
type Summary struct {
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Generator produces at most one bill per active tenant per calendar month.
//
// It is meant to be fired daily near the end of the month and gates itself
// on the last calendar day, so deployments never need per-month schedule
// entries. Re-running on the same day is safe: the pre-insert lookup plus
// the storage unique index make generation idempotent.
type Generator struct {
	store  Store
	events *Producer
	log    *logrus.Entry
}

// NewGenerator creates a bill generator. events may be nil when billing
// event publication is disabled.
func NewGenerator(store Store, events *Producer) *Generator {
	return &Generator{
		store:  store,
		events: events,
		log:    logrus.WithField("component", "bill-generator"),
	}
}

// Run generates bills for the current date.
func (g *Generator) Run(ctx context.Context) (Summary, error) {
	return g.RunAt(ctx, time.Now())
}

// RunAt generates bills as of the given invocation date. Unless the date is
// the last day of its month it returns immediately without touching tenant
// data. Every tenant is processed independently: one tenant's failure is
// counted and logged but never aborts the rest of the batch.
func (g *Generator) RunAt(ctx context.Context, now time.Time) (Summary, error) {
	if !isLastDayOfMonth(now) {
		g.log.WithField("date", now.Format("2006-01-02")).
			Info("Not the last day of the month, skipping bill generation")
		return Summary{}, nil
	}

	currentMonth := int(now.Month())
	currentYear := now.Year()

	tenants, err := g.store.ListActiveTenants(ctx)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, tenant := range tenants {
		generated, err := g.generateForTenant(ctx, &tenant, now, currentMonth, currentYear)
		switch {
		case err != nil:
			summary.Failed++
			g.log.WithError(err).WithField("tenant_id", tenant.ID).
				Error("Bill generation failed for tenant")
		case generated:
			summary.Generated++
		default:
			summary.Skipped++
		}
	}

	g.log.WithFields(logrus.Fields{
		"month":     currentMonth,
		"year":      currentYear,
		"generated": summary.Generated,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
	}).Info("Bill generation run complete")

	return summary, nil
}

// generateForTenant writes at most one bill row. It reports whether a bill
// was inserted; an existing bill for the period is a skip, not an error.
func (g *Generator) generateForTenant(ctx context.Context, tenant *models.Tenant, now time.Time, currentMonth, currentYear int) (bool, error) {
	existing, err := g.store.FindBill(ctx, tenant.ID, currentMonth, currentYear)
	if err != nil {
		return false, err
	}
	if existing != nil {
		g.log.WithFields(logrus.Fields{
			"tenant_id": tenant.ID,
			"month":     currentMonth,
			"year":      currentYear,
		}).Info("Bill already exists, skipping")
		return false, nil
	}

	amountDue := ProratedAmount(tenant, now)

	bill := &models.Bill{
		ID:       uuid.NewString(),
		TenantID: tenant.ID,
		Amount:   amountDue,
		Month:    currentMonth,
		Year:     currentYear,
		IsPaid:   false,
		// Rent for month M falls due on the 5th of the following month;
		// time.Date normalizes December into January of the next year.
		DueDate: time.Date(currentYear, time.Month(currentMonth)+1, 5, 0, 0, 0, 0, now.Location()),
	}

	if err := g.store.InsertBill(ctx, bill); err != nil {
		if errors.Is(err, ErrDuplicateBill) {
			// Lost a race against a concurrent run; the other insert won.
			return false, nil
		}
		return false, err
	}

	g.log.WithFields(logrus.Fields{
		"tenant_id": tenant.ID,
		"month":     currentMonth,
		"year":      currentYear,
		"amount":    amountDue,
	}).Info("Generated bill")

	if g.events != nil {
		g.events.Publish(Event{
			Type:     EventBillGenerated,
			BillID:   bill.ID,
			TenantID: bill.TenantID,
			Month:    bill.Month,
			Year:     bill.Year,
			Amount:   bill.Amount,
		})
	}
	return true, nil
}

// ProratedAmount computes the amount owed for the billing month containing
// now. Tenancies that began partway through that month are charged only for
// the remaining days, entry day included; anything else pays the full
// monthly total.
func ProratedAmount(tenant *models.Tenant, now time.Time) float64 {
	amount := tenant.MonthlyTotal()

	entry := tenant.EntryDate
	if entry.Year() != now.Year() || entry.Month() != now.Month() {
		return amount
	}

	entryDay := entry.Day()
	if entryDay <= 1 {
		return amount
	}

	daysInMonth := DaysInMonth(now.Year(), now.Month())
	remainingDays := daysInMonth - entryDay + 1
	return amount / float64(daysInMonth) * float64(remainingDays)
}

// DaysInMonth returns the number of calendar days in a month, leap years
// included. Day zero of the following month is the last day of this one.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isLastDayOfMonth(t time.Time) bool {
	return t.Day() == DaysInMonth(t.Year(), t.Month())
}
