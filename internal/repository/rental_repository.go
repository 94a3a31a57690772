package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// RentalRepo owns the rental workflow: creating a rental together
// with its payment, closing a rental, and listing a customer's
// history.  The multi-statement operations run inside a single
// transaction so a mid-sequence failure never leaves a rental
// without its payment (or vice versa).
type RentalRepo struct {
	db *sql.DB
}

// NewRentalRepo returns a new RentalRepo bound to the given database.
func NewRentalRepo(db *sql.DB) *RentalRepo { return &RentalRepo{db: db} }

// RentalReceipt reports the rows created by CreateWithPayment.
type RentalReceipt struct {
	RentalID    uint64    `json:"rental_id"`
	PaymentID   uint64    `json:"payment_id"`
	InventoryID uint64    `json:"inventory_id"`
	CustomerID  uint64    `json:"customer_id"`
	StaffID     uint64    `json:"staff_id"`
	Amount      float64   `json:"amount"`
	RentalDate  time.Time `json:"rental_date"`
}

// CustomerRental is one row of a customer's rental history.
type CustomerRental struct {
	RentalID   uint64  `json:"rental_id"`
	FilmID     uint64  `json:"film_id"`
	Title      string  `json:"title"`
	RentalDate string  `json:"rental_date"`
	ReturnDate *string `json:"return_date"`
	Amount     float64 `json:"amount"`
}

// CreateWithPayment rents the inventory item to the customer.  Inside
// one transaction it locks the inventory row, verifies no open rental
// references the item, inserts the rental (return_date NULL) and
// inserts the payment with the film's current rental_rate.  Ids come
// from AUTO_INCREMENT, so concurrent rentals never collide.  It
// returns ErrInventoryNotFound when the item does not exist and
// ErrInventoryUnavailable when the item is already out.
func (r *RentalRepo) CreateWithPayment(ctx context.Context, inventoryID, customerID, staffID uint64) (*RentalReceipt, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the inventory row for the duration of the transaction so a
	// concurrent rent of the same copy blocks until we commit.
	const lockQ = `SELECT film_id FROM inventory WHERE inventory_id = ? FOR UPDATE`
	var filmID uint64
	if err := tx.QueryRowContext(ctx, lockQ, inventoryID).Scan(&filmID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInventoryNotFound
		}
		return nil, err
	}

	// Availability is the absence of an open rental on this item.
	const openQ = `SELECT EXISTS (
	                   SELECT 1 FROM rental
	                   WHERE inventory_id = ? AND return_date IS NULL
	               )`
	var open bool
	if err := tx.QueryRowContext(ctx, openQ, inventoryID).Scan(&open); err != nil {
		return nil, err
	}
	if open {
		return nil, ErrInventoryUnavailable
	}

	const rateQ = `SELECT rental_rate FROM film WHERE film_id = ?`
	var rate float64
	if err := tx.QueryRowContext(ctx, rateQ, filmID).Scan(&rate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	const rentalQ = `INSERT INTO rental (rental_date, inventory_id, customer_id, return_date, staff_id, last_update)
	                 VALUES (?, ?, ?, NULL, ?, ?)`
	res, err := tx.ExecContext(ctx, rentalQ, now, inventoryID, customerID, staffID, now)
	if err != nil {
		return nil, err
	}
	rentalID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	const paymentQ = `INSERT INTO payment (customer_id, staff_id, rental_id, amount, payment_date, last_update)
	                  VALUES (?, ?, ?, ?, ?, ?)`
	res, err = tx.ExecContext(ctx, paymentQ, customerID, staffID, rentalID, rate, now, now)
	if err != nil {
		return nil, err
	}
	paymentID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &RentalReceipt{
		RentalID:    uint64(rentalID),
		PaymentID:   uint64(paymentID),
		InventoryID: inventoryID,
		CustomerID:  customerID,
		StaffID:     staffID,
		Amount:      rate,
		RentalDate:  now,
	}, nil
}

// Return closes the rental by stamping return_date with the current
// time.  Returning an already-closed rental overwrites the stamp with
// the newer timestamp; that matches the historical behavior of the
// service.  ErrRentalNotFound is returned when no rental row matches.
func (r *RentalRepo) Return(ctx context.Context, rentalID uint64) (time.Time, error) {
	now := time.Now().UTC()
	const q = `UPDATE rental SET return_date = ?, last_update = ? WHERE rental_id = ?`
	res, err := r.db.ExecContext(ctx, q, now, now, rentalID)
	if err != nil {
		return time.Time{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return time.Time{}, err
	}
	if n == 0 {
		return time.Time{}, ErrRentalNotFound
	}
	return now, nil
}

// ListByCustomer returns the customer's rentals, most recent first,
// each joined with the film title and the payment amount.
func (r *RentalRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]CustomerRental, error) {
	const q = `SELECT r.rental_id, f.film_id, f.title, r.rental_date, r.return_date, p.amount
	           FROM rental r
	           JOIN inventory i ON i.inventory_id = r.inventory_id
	           JOIN film f ON f.film_id = i.film_id
	           JOIN payment p ON p.rental_id = r.rental_id
	           WHERE r.customer_id = ?
	           ORDER BY r.rental_date DESC, r.rental_id DESC`
	rows, err := r.db.QueryContext(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]CustomerRental, 0)
	for rows.Next() {
		var cr CustomerRental
		var rented time.Time
		var returned sql.NullTime
		if err := rows.Scan(&cr.RentalID, &cr.FilmID, &cr.Title, &rented, &returned, &cr.Amount); err != nil {
			return nil, err
		}
		cr.RentalDate = rented.UTC().Format(time.RFC3339)
		if returned.Valid {
			v := returned.Time.UTC().Format(time.RFC3339)
			cr.ReturnDate = &v
		}
		out = append(out, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
