package testdata

import (
	"context"
	"time"

	"github.com/jask/plotbook/internal/database/repository"
)

// Repos bundles repos used by Seed.
type Repos struct {
	Bookings *repository.BookingRepo
	Payments *repository.PaymentRepo
}

func strPtr(s string) *string { return &s }

// Seed inserts the two demo bookings shown on a fresh My Bookings screen. It
// does nothing when any booking already exists.
func Seed(ctx context.Context, repos Repos) error {
	existing, err := repos.Bookings.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	confirmed := repository.Booking{
		ID:            "demo-so001",
		PlotKey:       "SO001",
		PlotTitle:     "Premium Villa Plot - Gachibowli",
		CustomerName:  "Demo Customer",
		Phone:         "9000000001",
		Email:         "demo@example.com",
		Kind:          repository.KindReserved,
		BookingAmount: 850000,
		TotalPrice:    8500000,
		Schedule:      strPtr("2025-08-01"),
		BookedOn:      time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
	}
	pending := repository.Booking{
		ID:            "demo-so005",
		PlotKey:       "SO005",
		PlotTitle:     "Industrial Plot - Near Siddipet Projects",
		CustomerName:  "Demo Customer",
		Phone:         "9000000001",
		Email:         "demo@example.com",
		Kind:          repository.KindSiteVisit,
		BookingAmount: 1500000,
		TotalPrice:    15000000,
		BookedOn:      time.Date(2025, 7, 10, 10, 0, 0, 0, time.UTC),
	}
	for _, b := range []repository.Booking{confirmed, pending} {
		if err := repos.Bookings.Insert(ctx, b); err != nil {
			return err
		}
	}
	return repos.Payments.Insert(ctx, repository.Payment{
		ID:            "demo-pay-so001",
		BookingID:     confirmed.ID,
		TransactionID: "TXN1751364000000",
		Method:        "card",
		Amount:        confirmed.BookingAmount,
		PaidAt:        confirmed.BookedOn,
	})
}
