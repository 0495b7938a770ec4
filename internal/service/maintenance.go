package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/plotbook/internal/database"
)

// historyTables is the booking history in delete order: appointments and
// payments point at bookings.
var historyTables = []string{"appointments", "payments", "bookings"}

// MaintenanceService backs the "clear booking history" action on My Bookings.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset deletes every saved site visit, reservation, payment receipt and
// appointment. Plot statuses live in the controller and are not touched.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		for _, t := range historyTables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("clear %s: %w", t, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}
