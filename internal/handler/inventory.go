package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AvailabilityStore answers the in-stock query.  It is satisfied by
// *repository.InventoryRepo.
type AvailabilityStore interface {
	ListAvailable(ctx context.Context, filmID uint64) ([]uint64, error)
}

// StockHandler serves the availability endpoint.
type StockHandler struct {
	Inventory AvailabilityStore
}

// NewStockHandler constructs a StockHandler.  The store must be non-nil.
func NewStockHandler(inventory AvailabilityStore) *StockHandler {
	if inventory == nil {
		panic("nil store passed to NewStockHandler")
	}
	return &StockHandler{Inventory: inventory}
}

// stockItem is one element of the in_stock array; the historical
// response wraps each id in an object.
type stockItem struct {
	InventoryID uint64 `json:"inventory_id"`
}

// InStock handles GET /instock?film_id=N.  It returns the count and
// the ids of the film's copies with no open rental.  An empty list
// means out of stock and is a valid 200 response.
func (h *StockHandler) InStock(c echo.Context) error {
	filmID, err := requiredIDParam(c, "film_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "film_id is required"})
	}
	ids, err := h.Inventory.ListAvailable(c.Request().Context(), filmID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items := make([]stockItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, stockItem{InventoryID: id})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count":    len(items),
		"in_stock": items,
	})
}
