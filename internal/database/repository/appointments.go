package repository

import (
	"context"
	"database/sql"
)

// AppointmentRepo handles appointments.
type AppointmentRepo struct {
	db DBTX
}

func NewAppointmentRepo(db DBTX) *AppointmentRepo { return &AppointmentRepo{db: db} }

func (r *AppointmentRepo) WithTx(tx *sql.Tx) *AppointmentRepo { return &AppointmentRepo{db: tx} }

func (r *AppointmentRepo) Insert(ctx context.Context, a Appointment) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO appointments(id, plot_key, customer_name, date, time_slot, purpose, notes, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?);
	`, a.ID, a.PlotKey, a.CustomerName, a.Date, a.TimeSlot, a.Purpose, a.Notes, a.CreatedAt)
	return err
}

// List returns appointments ordered by date and slot.
func (r *AppointmentRepo) List(ctx context.Context) ([]Appointment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, plot_key, customer_name, date, time_slot, purpose, notes, created_at FROM appointments ORDER BY date, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.PlotKey, &a.CustomerName, &a.Date, &a.TimeSlot, &a.Purpose, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
