package repository

import (
	"context"
	"database/sql"
)

// PaymentRepo handles payments.
type PaymentRepo struct {
	db DBTX
}

func NewPaymentRepo(db DBTX) *PaymentRepo { return &PaymentRepo{db: db} }

func (r *PaymentRepo) WithTx(tx *sql.Tx) *PaymentRepo { return &PaymentRepo{db: tx} }

func (r *PaymentRepo) Insert(ctx context.Context, p Payment) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO payments(id, booking_id, transaction_id, method, amount, paid_at)
	VALUES(?, ?, ?, ?, ?, ?);
	`, p.ID, p.BookingID, p.TransactionID, p.Method, p.Amount, p.PaidAt)
	return err
}

func (r *PaymentRepo) ListForBooking(ctx context.Context, bookingID string) ([]Payment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, booking_id, transaction_id, method, amount, paid_at FROM payments WHERE booking_id = ? ORDER BY paid_at`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.BookingID, &p.TransactionID, &p.Method, &p.Amount, &p.PaidAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
