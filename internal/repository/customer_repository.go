package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// CustomerRepo provides directory access to customers and their
// address chain (address -> city -> country).  Create and Update are
// multi-table writes and run inside a transaction.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo returns a new CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// Search type selectors accepted by List.  Zero means no filter.
const (
	SearchByName    = 1
	SearchByCity    = 2
	SearchByCountry = 3
)

// CustomerListRow is one row of the customer directory listing.  The
// shape mirrors the classic customer_list view: name is "FIRST LAST",
// zip_code is zero-padded to five characters and notes reflects the
// active flag.
type CustomerListRow struct {
	CustomerID uint64  `json:"customer_id"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	ZipCode    string  `json:"zip_code"`
	Phone      string  `json:"phone"`
	City       string  `json:"city"`
	Country    string  `json:"country"`
	Notes      string  `json:"notes"`
	StoreID    uint64  `json:"store_id"`
	Email      *string `json:"email"`
}

// CustomerDetail is a single customer joined with the full address chain.
type CustomerDetail struct {
	CustomerID uint64  `json:"customer_id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      *string `json:"email"`
	Active     bool    `json:"active"`
	AddressID  uint64  `json:"address_id"`
	Address    string  `json:"address"`
	Address2   *string `json:"address2"`
	District   *string `json:"district"`
	PostalCode *string `json:"postal_code"`
	Phone      *string `json:"phone"`
	CityID     uint64  `json:"city_id"`
	City       string  `json:"city"`
	CountryID  uint64  `json:"country_id"`
	Country    string  `json:"country"`
}

// NewCustomer carries the fields required to create a customer.  City
// is a name resolved (or created) under CountryID; names are
// upper-cased before storage.
type NewCustomer struct {
	FirstName  string
	LastName   string
	Email      string
	Address    string
	Address2   *string
	District   *string
	CityName   string
	CountryID  uint64
	PostalCode string
	Phone      *string
}

// CustomerEdit carries the fields required to update a customer and
// its address chain in place.
type CustomerEdit struct {
	CustomerID uint64
	AddressID  uint64
	CityID     uint64
	NewCustomer
}

// Exists reports whether a customer row with the given id exists.
func (r *CustomerRepo) Exists(ctx context.Context, customerID uint64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM customer WHERE customer_id = ?)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, customerID).Scan(&ok)
	return ok, err
}

// List returns the customer directory, optionally filtered.
// searchType selects the column the term matches against: 1 = full
// name, 2 = city, 3 = country.  Any other value (or an empty term)
// returns the whole directory.
func (r *CustomerRepo) List(ctx context.Context, searchType int, term string) ([]CustomerListRow, error) {
	q := `SELECT c.customer_id, CONCAT(c.first_name, ' ', c.last_name) AS name,
	             a.address, IFNULL(a.postal_code, '') AS zip_code, IFNULL(a.phone, '') AS phone,
	             ci.city, co.country, IF(c.active, 'active', '') AS notes,
	             c.store_id, c.email
	      FROM customer c
	      JOIN address a ON a.address_id = c.address_id
	      JOIN city ci ON ci.city_id = a.city_id
	      JOIN country co ON co.country_id = ci.country_id`
	args := []interface{}{}
	if term != "" {
		switch searchType {
		case SearchByName:
			q += ` WHERE CONCAT(c.first_name, ' ', c.last_name) LIKE ?`
			args = append(args, "%"+term+"%")
		case SearchByCity:
			q += ` WHERE ci.city LIKE ?`
			args = append(args, "%"+term+"%")
		case SearchByCountry:
			q += ` WHERE co.country LIKE ?`
			args = append(args, "%"+term+"%")
		}
	}
	q += ` ORDER BY c.customer_id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]CustomerListRow, 0)
	for rows.Next() {
		var row CustomerListRow
		var email sql.NullString
		if err := rows.Scan(
			&row.CustomerID, &row.Name, &row.Address, &row.ZipCode, &row.Phone,
			&row.City, &row.Country, &row.Notes, &row.StoreID, &email,
		); err != nil {
			return nil, err
		}
		row.ZipCode = zeroPad(row.ZipCode, 5)
		if email.Valid {
			v := email.String
			row.Email = &v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns one customer joined with address, city and country.
// ErrCustomerNotFound is returned when no row matches.
func (r *CustomerRepo) GetByID(ctx context.Context, customerID uint64) (*CustomerDetail, error) {
	const q = `SELECT c.customer_id, c.first_name, c.last_name, c.email, c.active,
	                  a.address_id, a.address, a.address2, a.district, a.postal_code, a.phone,
	                  ci.city_id, ci.city, co.country_id, co.country
	           FROM customer c
	           JOIN address a ON a.address_id = c.address_id
	           JOIN city ci ON ci.city_id = a.city_id
	           JOIN country co ON co.country_id = ci.country_id
	           WHERE c.customer_id = ?`
	var d CustomerDetail
	var email, addr2, district, postal, phone sql.NullString
	err := r.db.QueryRowContext(ctx, q, customerID).Scan(
		&d.CustomerID, &d.FirstName, &d.LastName, &email, &d.Active,
		&d.AddressID, &d.Address, &addr2, &district, &postal, &phone,
		&d.CityID, &d.City, &d.CountryID, &d.Country,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	if email.Valid {
		v := email.String
		d.Email = &v
	}
	if addr2.Valid {
		v := addr2.String
		d.Address2 = &v
	}
	if district.Valid {
		v := district.String
		d.District = &v
	}
	if postal.Valid {
		v := postal.String
		d.PostalCode = &v
	}
	if phone.Valid {
		v := phone.String
		d.Phone = &v
	}
	return &d, nil
}

// Create inserts a customer with a fresh address row, resolving (or
// creating) the city under the given country.  All inserts run in one
// transaction; the new customer id is returned.
func (r *CustomerRepo) Create(ctx context.Context, nc NewCustomer) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	cityID, err := findOrCreateCityTx(ctx, tx, nc.CityName, nc.CountryID, now)
	if err != nil {
		return 0, err
	}

	const addrQ = `INSERT INTO address (address, address2, district, city_id, postal_code, phone, last_update)
	               VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, addrQ,
		nc.Address, nullable(nc.Address2), nullable(nc.District), cityID, nc.PostalCode, nullable(nc.Phone), now)
	if err != nil {
		return 0, err
	}
	addressID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	const custQ = `INSERT INTO customer (store_id, first_name, last_name, email, address_id, active, create_date, last_update)
	               VALUES (1, ?, ?, ?, ?, 1, ?, ?)`
	res, err = tx.ExecContext(ctx, custQ,
		strings.ToUpper(nc.FirstName), strings.ToUpper(nc.LastName), nc.Email, addressID, now, now)
	if err != nil {
		return 0, err
	}
	customerID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(customerID), nil
}

// Update rewrites the customer, address and city rows identified by
// the edit in one transaction.  ErrCustomerNotFound is returned when
// the customer does not exist.
func (r *CustomerRepo) Update(ctx context.Context, edit CustomerEdit) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the customer row first; RowsAffected on UPDATE cannot
	// distinguish "missing" from "unchanged" in MySQL.
	const checkQ = `SELECT customer_id FROM customer WHERE customer_id = ? FOR UPDATE`
	var id uint64
	if err := tx.QueryRowContext(ctx, checkQ, edit.CustomerID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCustomerNotFound
		}
		return err
	}

	now := time.Now().UTC()
	const cityQ = `UPDATE city SET city = ?, country_id = ?, last_update = ? WHERE city_id = ?`
	if _, err := tx.ExecContext(ctx, cityQ, edit.CityName, edit.CountryID, now, edit.CityID); err != nil {
		return err
	}
	const addrQ = `UPDATE address
	               SET address = ?, address2 = ?, district = ?, city_id = ?, postal_code = ?, phone = ?, last_update = ?
	               WHERE address_id = ?`
	if _, err := tx.ExecContext(ctx, addrQ,
		edit.Address, nullable(edit.Address2), nullable(edit.District), edit.CityID,
		edit.PostalCode, nullable(edit.Phone), now, edit.AddressID); err != nil {
		return err
	}
	const custQ = `UPDATE customer SET first_name = ?, last_name = ?, email = ?, last_update = ? WHERE customer_id = ?`
	if _, err := tx.ExecContext(ctx, custQ,
		strings.ToUpper(edit.FirstName), strings.ToUpper(edit.LastName), edit.Email, now, edit.CustomerID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes the customer row.  ErrCustomerNotFound is returned
// when no row matches.  Rental and payment history is kept; the
// schema's foreign keys decide whether a delete with history is
// permitted, and a constraint violation surfaces as a plain error.
func (r *CustomerRepo) Delete(ctx context.Context, customerID uint64) error {
	const q = `DELETE FROM customer WHERE customer_id = ?`
	res, err := r.db.ExecContext(ctx, q, customerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// findOrCreateCityTx resolves a city name under a country, inserting
// the row when it does not exist yet.
func findOrCreateCityTx(ctx context.Context, tx *sql.Tx, name string, countryID uint64, now time.Time) (uint64, error) {
	const sel = `SELECT city_id FROM city WHERE city = ? AND country_id = ?`
	var id uint64
	err := tx.QueryRowContext(ctx, sel, name, countryID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	const ins = `INSERT INTO city (city, country_id, last_update) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins, name, countryID, now)
	if err != nil {
		return 0, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(newID), nil
}

// nullable converts an optional string into a driver-friendly value.
func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// zeroPad left-pads s with zeros up to width characters.  Postal
// codes are stored without leading zeros in some datasets; the
// directory listing always renders five characters, so an absent code
// comes out as "00000".
func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
