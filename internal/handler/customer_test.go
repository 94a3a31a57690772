package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/film-rental-service/internal/repository"
)

type fakeCustomerStore struct {
	rows      []repository.CustomerListRow
	listErr   error
	gotType   int
	gotTerm   string
	detail    *repository.CustomerDetail
	getErr    error
	createdID uint64
	created   *repository.NewCustomer
	updated   *repository.CustomerEdit
	updateErr error
	deleteErr error
}

func (f *fakeCustomerStore) List(_ context.Context, searchType int, term string) ([]repository.CustomerListRow, error) {
	f.gotType, f.gotTerm = searchType, term
	return f.rows, f.listErr
}

func (f *fakeCustomerStore) GetByID(_ context.Context, _ uint64) (*repository.CustomerDetail, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.detail, nil
}

func (f *fakeCustomerStore) Create(_ context.Context, nc repository.NewCustomer) (uint64, error) {
	f.created = &nc
	return f.createdID, nil
}

func (f *fakeCustomerStore) Update(_ context.Context, edit repository.CustomerEdit) error {
	f.updated = &edit
	return f.updateErr
}

func (f *fakeCustomerStore) Delete(_ context.Context, _ uint64) error {
	return f.deleteErr
}

type fakeHistoryStore struct {
	rentals []repository.CustomerRental
}

func (f *fakeHistoryStore) ListByCustomer(_ context.Context, _ uint64) ([]repository.CustomerRental, error) {
	return f.rentals, nil
}

func getWithQuery(e *echo.Echo, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func getWithParam(e *echo.Echo, path, name, value string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c, rec
}

func TestListCustomersSearchType(t *testing.T) {
	e := echo.New()
	store := &fakeCustomerStore{rows: []repository.CustomerListRow{
		{CustomerID: 1, Name: "MARY SMITH", ZipCode: "00123", Notes: "active", StoreID: 1},
	}}
	h := NewCustomerHandler(store, &fakeHistoryStore{})

	c, rec := getWithQuery(e, "/customerlist?search_type=2&search_term=London")
	require.NoError(t, h.ListCustomers(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, repository.SearchByCity, store.gotType)
	assert.Equal(t, "London", store.gotTerm)

	body := decodeBody(t, rec)
	customers, ok := body["customers"].([]interface{})
	require.True(t, ok)
	require.Len(t, customers, 1)
	first := customers[0].(map[string]interface{})
	assert.Equal(t, "MARY SMITH", first["name"])
	assert.Equal(t, "00123", first["zip_code"])
}

func TestListCustomersBadSearchType(t *testing.T) {
	e := echo.New()
	h := NewCustomerHandler(&fakeCustomerStore{}, &fakeHistoryStore{})

	for _, raw := range []string{"0", "4", "abc"} {
		c, rec := getWithQuery(e, "/customerlist?search_type="+raw)
		require.NoError(t, h.ListCustomers(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "search_type=%s", raw)
	}
}

func TestGetCustomerNotFound(t *testing.T) {
	e := echo.New()
	store := &fakeCustomerStore{getErr: repository.ErrCustomerNotFound}
	h := NewCustomerHandler(store, &fakeHistoryStore{})

	c, rec := getWithParam(e, "/getcustomer/:id", "id", "999")
	require.NoError(t, h.GetCustomer(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCustomerMissingFields(t *testing.T) {
	e := echo.New()
	store := &fakeCustomerStore{}
	h := NewCustomerHandler(store, &fakeHistoryStore{})

	c, rec := postJSON(t, e, "/createcustomer", `{"first_name":"Jane","city":"Oslo"}`)
	require.NoError(t, h.CreateCustomer(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	missing, ok := body["missing"].([]interface{})
	require.True(t, ok)
	assert.ElementsMatch(t, []interface{}{
		"last_name", "email", "address", "country_id", "postal_code",
	}, missing)
	assert.Nil(t, store.created, "invalid payloads must not reach the store")
}

func TestCreateCustomerSuccess(t *testing.T) {
	e := echo.New()
	store := &fakeCustomerStore{createdID: 608}
	h := NewCustomerHandler(store, &fakeHistoryStore{})

	c, rec := postJSON(t, e, "/createcustomer", `{
		"first_name":"Jane","last_name":"Doe","email":"jane@example.com",
		"address":"1 Main St","city":"Oslo","country_id":64,"postal_code":"123"
	}`)
	require.NoError(t, h.CreateCustomer(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Customer ID 608 successfully created", body["message"])
	assert.Equal(t, float64(608), body["customer_id"])

	require.NotNil(t, store.created)
	assert.Equal(t, "Jane", store.created.FirstName)
	assert.Equal(t, "Oslo", store.created.CityName)
	assert.Equal(t, uint64(64), store.created.CountryID)
}

func TestEditCustomerRequiresIDs(t *testing.T) {
	e := echo.New()
	store := &fakeCustomerStore{}
	h := NewCustomerHandler(store, &fakeHistoryStore{})

	c, rec := postJSON(t, e, "/editcustomer", `{
		"first_name":"Jane","last_name":"Doe","email":"jane@example.com",
		"address":"1 Main St","city":"Oslo","country_id":64,"postal_code":"123"
	}`)
	require.NoError(t, h.EditCustomer(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	missing := decodeBody(t, rec)["missing"].([]interface{})
	assert.ElementsMatch(t, []interface{}{"customer_id", "address_id", "city_id"}, missing)
	assert.Nil(t, store.updated)
}

func TestEditCustomerNotFound(t *testing.T) {
	e := echo.New()
	store := &fakeCustomerStore{updateErr: repository.ErrCustomerNotFound}
	h := NewCustomerHandler(store, &fakeHistoryStore{})

	c, rec := postJSON(t, e, "/editcustomer", `{
		"first_name":"Jane","last_name":"Doe","email":"jane@example.com",
		"address":"1 Main St","city":"Oslo","country_id":64,"postal_code":"123",
		"customer_id":999,"address_id":10,"city_id":20
	}`)
	require.NoError(t, h.EditCustomer(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCustomer(t *testing.T) {
	e := echo.New()

	t.Run("ok", func(t *testing.T) {
		h := NewCustomerHandler(&fakeCustomerStore{}, &fakeHistoryStore{})
		c, rec := getWithParam(e, "/deletecustomer/:id", "id", "5")
		require.NoError(t, h.DeleteCustomer(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Customer ID 5 successfully deleted", decodeBody(t, rec)["message"])
	})

	t.Run("missing row", func(t *testing.T) {
		h := NewCustomerHandler(&fakeCustomerStore{deleteErr: repository.ErrCustomerNotFound}, &fakeHistoryStore{})
		c, rec := getWithParam(e, "/deletecustomer/:id", "id", "999")
		require.NoError(t, h.DeleteCustomer(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCustomerRentals(t *testing.T) {
	e := echo.New()
	returned := "2024-05-02T09:30:00Z"
	history := &fakeHistoryStore{rentals: []repository.CustomerRental{
		{RentalID: 2, FilmID: 10, Title: "ACADEMY DINOSAUR", RentalDate: "2024-05-03T08:00:00Z", Amount: 0.99},
		{RentalID: 1, FilmID: 11, Title: "ACE GOLDFINGER", RentalDate: "2024-05-01T08:00:00Z", ReturnDate: &returned, Amount: 4.99},
	}}
	h := NewCustomerHandler(&fakeCustomerStore{}, history)

	c, rec := getWithParam(e, "/customerrentals/:id", "id", "3")
	require.NoError(t, h.CustomerRentals(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	rentals := decodeBody(t, rec)["rentals"].([]interface{})
	require.Len(t, rentals, 2)
	open := rentals[0].(map[string]interface{})
	assert.Nil(t, open["return_date"], "open rentals carry a null return_date")
	closed := rentals[1].(map[string]interface{})
	assert.Equal(t, returned, closed["return_date"])
}
