package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-rental-service/internal/queue"
	"github.com/iliyamo/film-rental-service/internal/repository"
)

// RentalStore is the rental workflow surface used by RentalHandler.
// *repository.RentalRepo satisfies it.
type RentalStore interface {
	CreateWithPayment(ctx context.Context, inventoryID, customerID, staffID uint64) (*repository.RentalReceipt, error)
	Return(ctx context.Context, rentalID uint64) (time.Time, error)
	ListByCustomer(ctx context.Context, customerID uint64) ([]repository.CustomerRental, error)
}

// ReferenceChecker reports whether a referenced row exists.  Both
// *repository.CustomerRepo and *repository.StaffRepo satisfy it.
type ReferenceChecker interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// RentalHandler serves the rent and return endpoints.  Event
// publishing is best-effort: a nil publisher or a publish failure
// never fails the request, since the transaction already committed.
type RentalHandler struct {
	Rentals   RentalStore
	Customers ReferenceChecker
	Staff     ReferenceChecker

	PublishCreated  func(ctx context.Context, ev queue.RentalCreatedEvent) error
	PublishReturned func(ctx context.Context, ev queue.RentalReturnedEvent) error
}

// NewRentalHandler constructs a RentalHandler.  Stores must be
// non-nil; publishers may be nil to disable event publishing.
func NewRentalHandler(rentals RentalStore, customers, staff ReferenceChecker) *RentalHandler {
	if rentals == nil || customers == nil || staff == nil {
		panic("nil store passed to NewRentalHandler")
	}
	return &RentalHandler{Rentals: rentals, Customers: customers, Staff: staff}
}

// RentFilm handles POST /rentfilm.  The body must carry inventory_id,
// customer_id and staff_id.  Validation order is fixed: presence of
// all three fields, then customer existence, then staff existence,
// then availability of the copy.  On success exactly one rental and
// one payment exist, created atomically by the store.
func (h *RentalHandler) RentFilm(c echo.Context) error {
	var body struct {
		InventoryID *uint64 `json:"inventory_id"`
		CustomerID  *uint64 `json:"customer_id"`
		StaffID     *uint64 `json:"staff_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.InventoryID == nil || body.CustomerID == nil || body.StaffID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "inventory_id, customer_id and staff_id are required"})
	}
	ctx := c.Request().Context()

	ok, err := h.Customers.Exists(ctx, *body.CustomerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid Customer ID"})
	}
	ok, err = h.Staff.Exists(ctx, *body.StaffID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid Staff ID"})
	}

	receipt, err := h.Rentals.CreateWithPayment(ctx, *body.InventoryID, *body.CustomerID, *body.StaffID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInventoryNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid Inventory ID"})
		case errors.Is(err, repository.ErrInventoryUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{
				"message": fmt.Sprintf("Inventory ID %d is not available", *body.InventoryID),
			})
		default:
			c.Logger().Errorf("rentfilm: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create rental"})
		}
	}

	if h.PublishCreated != nil {
		// Ignore publish errors; the rental is already committed.
		_ = h.PublishCreated(ctx, queue.RentalCreatedEvent{
			RentalID:    receipt.RentalID,
			PaymentID:   receipt.PaymentID,
			InventoryID: receipt.InventoryID,
			CustomerID:  receipt.CustomerID,
			StaffID:     receipt.StaffID,
			Amount:      receipt.Amount,
			RentedAt:    receipt.RentalDate.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":   fmt.Sprintf("Inventory ID %d successfully rented to Customer ID %d", receipt.InventoryID, receipt.CustomerID),
		"rental_id": receipt.RentalID,
	})
}

// ReturnFilm handles PATCH /returnfilm/:rental_id.  It stamps the
// rental's return date with the current time.  A rental id that
// matches no row yields 404; returning an already-closed rental
// overwrites the stamp and reports success.
func (h *RentalHandler) ReturnFilm(c echo.Context) error {
	rentalID, err := strconv.ParseUint(c.Param("rental_id"), 10, 64)
	if err != nil || rentalID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rental id"})
	}
	ctx := c.Request().Context()
	returnedAt, err := h.Rentals.Return(ctx, rentalID)
	if err != nil {
		if errors.Is(err, repository.ErrRentalNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Invalid Rental ID"})
		}
		c.Logger().Errorf("returnfilm: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to return rental"})
	}

	if h.PublishReturned != nil {
		_ = h.PublishReturned(ctx, queue.RentalReturnedEvent{
			RentalID:   rentalID,
			ReturnedAt: returnedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Rental ID %d successfully returned", rentalID),
	})
}
