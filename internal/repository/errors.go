// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrCustomerNotFound signals that a referenced customer row
// does not exist, while ErrInventoryUnavailable signals that a rent
// operation cannot proceed because the copy is already checked out.
package repository

import "errors"

// ErrFilmNotFound is returned when a film referenced by id does not
// exist. Handlers should translate this into an HTTP 404 response.
var ErrFilmNotFound = errors.New("film not found")

// ErrCustomerNotFound is returned when a customer referenced by id
// does not exist.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrInventoryNotFound is returned when an inventory item referenced
// by id does not exist.
var ErrInventoryNotFound = errors.New("inventory item not found")

// ErrInventoryUnavailable is returned when a rent operation targets an
// inventory item that currently has an open rental. Handlers should
// translate this into an HTTP 409 response.
var ErrInventoryUnavailable = errors.New("inventory item unavailable")

// ErrRentalNotFound is returned when a rental referenced by id does
// not exist, e.g. when a return affects zero rows.
var ErrRentalNotFound = errors.New("rental not found")
