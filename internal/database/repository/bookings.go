package repository

import (
	"context"
	"database/sql"
	"errors"
)

// BookingRepo handles bookings.
type BookingRepo struct {
	db DBTX
}

func NewBookingRepo(db DBTX) *BookingRepo { return &BookingRepo{db: db} }

// WithTx returns a repo bound to tx.
func (r *BookingRepo) WithTx(tx *sql.Tx) *BookingRepo { return &BookingRepo{db: tx} }

func (r *BookingRepo) Insert(ctx context.Context, b Booking) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO bookings(
	 id, plot_key, plot_title, customer_name, phone, email, kind,
	 booking_amount, total_price, schedule, booked_on)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		b.ID, b.PlotKey, b.PlotTitle, b.CustomerName, b.Phone, b.Email, string(b.Kind),
		b.BookingAmount, b.TotalPrice, b.Schedule, b.BookedOn)
	return err
}

const bookingColumns = `id, plot_key, plot_title, customer_name, phone, email, kind, booking_amount, total_price, schedule, booked_on`

// List returns bookings newest first.
func (r *BookingRepo) List(ctx context.Context) ([]Booking, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY booked_on DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BookingRepo) Get(ctx context.Context, id string) (*Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateSchedule records when the remaining balance will be paid.
func (r *BookingRepo) UpdateSchedule(ctx context.Context, id, schedule string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE bookings SET schedule = ? WHERE id = ?`, schedule, id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(s scanner) (Booking, error) {
	var (
		b        Booking
		kind     string
		schedule sql.NullString
	)
	if err := s.Scan(&b.ID, &b.PlotKey, &b.PlotTitle, &b.CustomerName, &b.Phone, &b.Email, &kind,
		&b.BookingAmount, &b.TotalPrice, &schedule, &b.BookedOn); err != nil {
		return Booking{}, err
	}
	b.Kind = BookingKind(kind)
	if schedule.Valid {
		b.Schedule = &schedule.String
	}
	return b, nil
}
