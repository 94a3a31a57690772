// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-rental-service/internal/handler"
)

// Handlers groups the handler sets the router wires up.
type Handlers struct {
	Catalog  *handler.CatalogHandler
	Stock    *handler.StockHandler
	Customer *handler.CustomerHandler
	Rental   *handler.RentalHandler
}

// RegisterRoutes registers every endpoint of the service.  The paths
// are flat by design; they mirror the public surface this API has
// always exposed.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	// Liveness probe for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Catalog and reports (read-only).
	e.GET("/films", h.Catalog.ListFilms)
	e.GET("/filmdetails", h.Catalog.FilmDetails)
	e.GET("/topfivefilms", h.Catalog.TopFiveFilms)
	e.GET("/topfiveactors", h.Catalog.TopFiveActors)
	e.GET("/actordetails", h.Catalog.ActorDetails)
	e.GET("/search", h.Catalog.SearchFilms)

	// Availability.
	e.GET("/instock", h.Stock.InStock)

	// Customer directory.
	e.GET("/customerlist", h.Customer.ListCustomers)
	e.GET("/getcustomer/:id", h.Customer.GetCustomer)
	e.POST("/createcustomer", h.Customer.CreateCustomer)
	e.PATCH("/editcustomer", h.Customer.EditCustomer)
	e.DELETE("/deletecustomer/:id", h.Customer.DeleteCustomer)
	e.GET("/customerrentals/:id", h.Customer.CustomerRentals)

	// Rental workflow.
	e.POST("/rentfilm", h.Rental.RentFilm)
	e.PATCH("/returnfilm/:rental_id", h.Rental.ReturnFilm)
}
