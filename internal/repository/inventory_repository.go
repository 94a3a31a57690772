package repository

import (
	"context"
	"database/sql"
)

// InventoryRepo answers availability questions about inventory items.
// Availability is derived on every call from the absence of an open
// rental (return_date IS NULL); it is never stored or cached, so the
// result always reflects the latest committed state.
type InventoryRepo struct {
	db *sql.DB
}

// NewInventoryRepo returns a new InventoryRepo bound to the given database.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// ListAvailable returns the inventory ids of the given film that have
// no currently-open rental.  An empty slice means the film is out of
// stock; that is a valid result, not an error.
func (r *InventoryRepo) ListAvailable(ctx context.Context, filmID uint64) ([]uint64, error) {
	const q = `SELECT inventory_id
	           FROM inventory
	           WHERE film_id = ?
	             AND inventory_id NOT IN (
	                 SELECT inventory_id FROM rental WHERE return_date IS NULL
	             )
	           ORDER BY inventory_id`
	rows, err := r.db.QueryContext(ctx, q, filmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
