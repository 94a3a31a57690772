package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-rental-service/internal/repository"
)

// CustomerStore is the directory surface used by CustomerHandler.
// *repository.CustomerRepo satisfies it.
type CustomerStore interface {
	List(ctx context.Context, searchType int, term string) ([]repository.CustomerListRow, error)
	GetByID(ctx context.Context, customerID uint64) (*repository.CustomerDetail, error)
	Create(ctx context.Context, nc repository.NewCustomer) (uint64, error)
	Update(ctx context.Context, edit repository.CustomerEdit) error
	Delete(ctx context.Context, customerID uint64) error
}

// RentalHistoryStore lists a customer's rentals; *repository.RentalRepo
// satisfies it.
type RentalHistoryStore interface {
	ListByCustomer(ctx context.Context, customerID uint64) ([]repository.CustomerRental, error)
}

// CustomerHandler serves the customer directory endpoints.
type CustomerHandler struct {
	Customers CustomerStore
	History   RentalHistoryStore
}

// NewCustomerHandler constructs a CustomerHandler.  Stores must be non-nil.
func NewCustomerHandler(customers CustomerStore, history RentalHistoryStore) *CustomerHandler {
	if customers == nil || history == nil {
		panic("nil store passed to NewCustomerHandler")
	}
	return &CustomerHandler{Customers: customers, History: history}
}

// customerPayload is the JSON body shared by create and edit.  Ids
// appear only on edit.  Optional fields stay pointers so absent and
// empty can be told apart where it matters.
type customerPayload struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Address    string  `json:"address"`
	Address2   *string `json:"address2"`
	District   *string `json:"district"`
	City       string  `json:"city"`
	CountryID  *uint64 `json:"country_id"`
	PostalCode string  `json:"postal_code"`
	Phone      *string `json:"phone"`

	CustomerID *uint64 `json:"customer_id"`
	AddressID  *uint64 `json:"address_id"`
	CityID     *uint64 `json:"city_id"`
}

// missingFields returns the names of required fields absent from the payload.
func (p *customerPayload) missingFields() []string {
	missing := []string{}
	if p.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if p.LastName == "" {
		missing = append(missing, "last_name")
	}
	if p.Email == "" {
		missing = append(missing, "email")
	}
	if p.Address == "" {
		missing = append(missing, "address")
	}
	if p.City == "" {
		missing = append(missing, "city")
	}
	if p.CountryID == nil {
		missing = append(missing, "country_id")
	}
	if p.PostalCode == "" {
		missing = append(missing, "postal_code")
	}
	return missing
}

func (p *customerPayload) toNewCustomer() repository.NewCustomer {
	return repository.NewCustomer{
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Email:      p.Email,
		Address:    p.Address,
		Address2:   p.Address2,
		District:   p.District,
		CityName:   p.City,
		CountryID:  *p.CountryID,
		PostalCode: p.PostalCode,
		Phone:      p.Phone,
	}
}

// ListCustomers handles GET /customerlist.  The optional search_type
// (1 = name, 2 = city, 3 = country) and search_term parameters filter
// the directory; without them the full directory is returned.
func (h *CustomerHandler) ListCustomers(c echo.Context) error {
	searchType := 0
	if raw := c.QueryParam("search_type"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < repository.SearchByName || n > repository.SearchByCountry {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "search_type must be 1, 2 or 3"})
		}
		searchType = n
	}
	customers, err := h.Customers.List(c.Request().Context(), searchType, c.QueryParam("search_term"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"customers": customers})
}

// GetCustomer handles GET /getcustomer/:id.
func (h *CustomerHandler) GetCustomer(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}
	detail, err := h.Customers.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, detail)
}

// CreateCustomer handles POST /createcustomer.  Required fields are
// validated before any write; names are upper-cased by the store.
func (h *CustomerHandler) CreateCustomer(c echo.Context) error {
	var body customerPayload
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if missing := body.missingFields(); len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing required fields", "missing": missing})
	}
	id, err := h.Customers.Create(c.Request().Context(), body.toNewCustomer())
	if err != nil {
		c.Logger().Errorf("createcustomer: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create customer"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     fmt.Sprintf("Customer ID %d successfully created", id),
		"customer_id": id,
	})
}

// EditCustomer handles PATCH /editcustomer.  The body carries the
// same required set as create plus customer_id, address_id and
// city_id identifying the rows to rewrite.
func (h *CustomerHandler) EditCustomer(c echo.Context) error {
	var body customerPayload
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	missing := body.missingFields()
	if body.CustomerID == nil {
		missing = append(missing, "customer_id")
	}
	if body.AddressID == nil {
		missing = append(missing, "address_id")
	}
	if body.CityID == nil {
		missing = append(missing, "city_id")
	}
	if len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing required fields", "missing": missing})
	}
	edit := repository.CustomerEdit{
		CustomerID:  *body.CustomerID,
		AddressID:   *body.AddressID,
		CityID:      *body.CityID,
		NewCustomer: body.toNewCustomer(),
	}
	if err := h.Customers.Update(c.Request().Context(), edit); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		c.Logger().Errorf("editcustomer: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update customer"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Customer ID %d successfully updated", *body.CustomerID),
	})
}

// DeleteCustomer handles DELETE /deletecustomer/:id.
func (h *CustomerHandler) DeleteCustomer(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}
	if err := h.Customers.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		c.Logger().Errorf("deletecustomer: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete customer"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Customer ID %d successfully deleted", id),
	})
}

// CustomerRentals handles GET /customerrentals/:id.  Rentals come
// back most recent first.
func (h *CustomerHandler) CustomerRentals(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}
	rentals, err := h.History.ListByCustomer(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rentals": rentals})
}
