package repository

import (
	"context"
	"database/sql"
)

// StaffRepo validates staff references for the rental workflow.
// Staff rows are managed elsewhere; this service only reads them.
type StaffRepo struct{ db *sql.DB }

// NewStaffRepo returns a new StaffRepo bound to the given database.
func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{db: db} }

// Exists reports whether a staff row with the given id exists.
func (r *StaffRepo) Exists(ctx context.Context, staffID uint64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM staff WHERE staff_id = ?)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, staffID).Scan(&ok)
	return ok, err
}
