// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used by the publisher and consumer.
const (
	RentalCreatedQueue  = "rental.created"
	RentalReturnedQueue = "rental.returned"
)

// RentalCreatedEvent is published after a rental and its payment have
// committed.  It carries enough for downstream consumers to log,
// notify or feed analytics without querying the primary database.
type RentalCreatedEvent struct {
	RentalID    uint64  `json:"rental_id"`
	PaymentID   uint64  `json:"payment_id"`
	InventoryID uint64  `json:"inventory_id"`
	CustomerID  uint64  `json:"customer_id"`
	StaffID     uint64  `json:"staff_id"`
	Amount      float64 `json:"amount"`
	RentedAt    string  `json:"rented_at"`
}

// RentalReturnedEvent is published after a rental's return date has
// been stamped.
type RentalReturnedEvent struct {
	RentalID   uint64 `json:"rental_id"`
	ReturnedAt string `json:"returned_at"`
}
