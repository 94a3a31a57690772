// Package handler exposes the HTTP handlers of the film rental API.
// This file defines the read-only catalog endpoints: film listing and
// details, the top-five reports and the substring search.  Each
// handler is a thin translation layer: parse inputs, call the store,
// map sentinel errors to status codes.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-rental-service/internal/repository"
)

// FilmStore is the slice of the repository layer the catalog
// endpoints need.  *repository.FilmRepo satisfies it; tests install
// an in-memory fake.
type FilmStore interface {
	ListAll(ctx context.Context) ([]repository.FilmRow, error)
	GetDetails(ctx context.Context, filmID uint64) (*repository.FilmDetail, error)
	TopFiveByRentals(ctx context.Context) ([]repository.FilmRentalCount, error)
	TopFilmsForActor(ctx context.Context, actorID uint64) ([]repository.FilmRentalCount, error)
	TopFiveActors(ctx context.Context) ([]repository.ActorFilmCount, error)
	Search(ctx context.Context, term string) ([]repository.SearchResult, error)
}

// CatalogHandler serves the film catalog and report endpoints.
type CatalogHandler struct {
	Films FilmStore
}

// NewCatalogHandler constructs a CatalogHandler.  The store must be non-nil.
func NewCatalogHandler(films FilmStore) *CatalogHandler {
	if films == nil {
		panic("nil store passed to NewCatalogHandler")
	}
	return &CatalogHandler{Films: films}
}

// ListFilms handles GET /films.  It returns every film with its full
// column set under a "films" key.
func (h *CatalogHandler) ListFilms(c echo.Context) error {
	films, err := h.Films.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"films": films})
}

// FilmDetails handles GET /filmdetails?film_id=N.  It returns a
// single film joined with its genre.  A missing or malformed film_id
// is rejected with 400 before touching the data store.
func (h *CatalogHandler) FilmDetails(c echo.Context) error {
	filmID, err := requiredIDParam(c, "film_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "film_id is required"})
	}
	detail, err := h.Films.GetDetails(c.Request().Context(), filmID)
	if err != nil {
		if errors.Is(err, repository.ErrFilmNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, detail)
}

// TopFiveFilms handles GET /topfivefilms.
func (h *CatalogHandler) TopFiveFilms(c echo.Context) error {
	films, err := h.Films.TopFiveByRentals(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"films": films})
}

// TopFiveActors handles GET /topfiveactors.
func (h *CatalogHandler) TopFiveActors(c echo.Context) error {
	actors, err := h.Films.TopFiveActors(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"actors": actors})
}

// ActorDetails handles GET /actordetails?actor_id=N.  It returns the
// actor's five most rented films.
func (h *CatalogHandler) ActorDetails(c echo.Context) error {
	actorID, err := requiredIDParam(c, "actor_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "actor_id is required"})
	}
	films, err := h.Films.TopFilmsForActor(c.Request().Context(), actorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"films": films})
}

// SearchFilms handles GET /search?search=term.  An empty or missing
// term yields an empty result set with result_count zero; that is a
// success, matching the historical behavior.
func (h *CatalogHandler) SearchFilms(c echo.Context) error {
	term := c.QueryParam("search")
	if term == "" {
		return c.JSON(http.StatusOK, echo.Map{"result_count": 0, "films": []repository.SearchResult{}})
	}
	films, err := h.Films.Search(c.Request().Context(), term)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"result_count": len(films), "films": films})
}

// requiredIDParam parses a mandatory positive integer query parameter.
func requiredIDParam(c echo.Context, name string) (uint64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, errors.New(name + " is required")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New(name + " is invalid")
	}
	return id, nil
}
