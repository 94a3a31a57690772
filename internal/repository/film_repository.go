package repository

import (
	"context"
	"database/sql"
	"errors"
)

// FilmRepo provides read access to the film catalog and its report
// queries (top lists, per-actor breakdowns, substring search).  All
// queries are plain parameterized statements over the shared pool;
// none of them mutate state.
type FilmRepo struct {
	db *sql.DB
}

// NewFilmRepo returns a new FilmRepo bound to the given database.
func NewFilmRepo(db *sql.DB) *FilmRepo { return &FilmRepo{db: db} }

// FilmRow is the full film record returned by ListAll.  Nullable
// columns map to pointers so JSON omits nothing but renders null.
type FilmRow struct {
	ID                 uint64  `json:"id"`
	Title              string  `json:"title"`
	Description        *string `json:"description"`
	ReleaseYear        *int    `json:"release_year"`
	LanguageID         uint64  `json:"language_id"`
	OriginalLanguageID *uint64 `json:"original_language_id"`
	RentalDuration     int     `json:"rental_duration"`
	RentalRate         float64 `json:"rental_rate"`
	Length             *int    `json:"length"`
	ReplacementCost    float64 `json:"replacement_cost"`
	Rating             *string `json:"rating"`
	SpecialFeatures    *string `json:"special_features"`
	LastUpdate         string  `json:"last_update"`
}

// FilmDetail is a single film joined with its category.
type FilmDetail struct {
	ID              uint64  `json:"film_id"`
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	ReleaseYear     *int    `json:"release_year"`
	RentalDuration  int     `json:"rental_duration"`
	RentalRate      float64 `json:"rental_rate"`
	Length          *int    `json:"length"`
	ReplacementCost float64 `json:"replacement_cost"`
	Rating          *string `json:"rating"`
	SpecialFeatures *string `json:"special_features"`
	Genre           string  `json:"genre"`
}

// FilmRentalCount pairs a film with how many times it has been rented.
type FilmRentalCount struct {
	FilmID      uint64 `json:"film_id"`
	Title       string `json:"title"`
	RentalCount int64  `json:"rental_count"`
}

// ActorFilmCount pairs an actor with the number of films they appear in.
type ActorFilmCount struct {
	ActorID   uint64 `json:"actor_id"`
	ActorName string `json:"actor_name"`
	FilmCount int64  `json:"film_count"`
}

// SearchResult is one row of the catalog substring search.
type SearchResult struct {
	FilmID       uint64 `json:"film_id"`
	Title        string `json:"title"`
	ActorNames   string `json:"actor_names"`
	CategoryName string `json:"category_name"`
}

// ListAll returns every film with its full column set, ordered by id.
func (r *FilmRepo) ListAll(ctx context.Context) ([]FilmRow, error) {
	const q = `SELECT film_id, title, description, release_year, language_id,
	                  original_language_id, rental_duration, rental_rate, length,
	                  replacement_cost, rating, special_features, last_update
	           FROM film
	           ORDER BY film_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	films := make([]FilmRow, 0)
	for rows.Next() {
		var f FilmRow
		var desc, rating, features sql.NullString
		var year, length sql.NullInt64
		var origLang sql.NullInt64
		var updated sql.NullTime
		if err := rows.Scan(
			&f.ID, &f.Title, &desc, &year, &f.LanguageID,
			&origLang, &f.RentalDuration, &f.RentalRate, &length,
			&f.ReplacementCost, &rating, &features, &updated,
		); err != nil {
			return nil, err
		}
		if desc.Valid {
			v := desc.String
			f.Description = &v
		}
		if year.Valid {
			v := int(year.Int64)
			f.ReleaseYear = &v
		}
		if origLang.Valid {
			v := uint64(origLang.Int64)
			f.OriginalLanguageID = &v
		}
		if length.Valid {
			v := int(length.Int64)
			f.Length = &v
		}
		if rating.Valid {
			v := rating.String
			f.Rating = &v
		}
		if features.Valid {
			v := features.String
			f.SpecialFeatures = &v
		}
		if updated.Valid {
			f.LastUpdate = updated.Time.UTC().Format("2006-01-02 15:04:05")
		}
		films = append(films, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return films, nil
}

// GetDetails returns one film joined with its category name.  When
// the film does not exist (or has no category row) ErrFilmNotFound is
// returned.
func (r *FilmRepo) GetDetails(ctx context.Context, filmID uint64) (*FilmDetail, error) {
	const q = `SELECT f.film_id, f.title, f.description, f.release_year,
	                  f.rental_duration, f.rental_rate, f.length, f.replacement_cost,
	                  f.rating, f.special_features, c.name AS genre
	           FROM film f
	           JOIN film_category fc ON fc.film_id = f.film_id
	           JOIN category c ON c.category_id = fc.category_id
	           WHERE f.film_id = ?`
	var d FilmDetail
	var desc, rating, features sql.NullString
	var year, length sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, filmID).Scan(
		&d.ID, &d.Title, &desc, &year,
		&d.RentalDuration, &d.RentalRate, &length, &d.ReplacementCost,
		&rating, &features, &d.Genre,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilmNotFound
		}
		return nil, err
	}
	if desc.Valid {
		v := desc.String
		d.Description = &v
	}
	if year.Valid {
		v := int(year.Int64)
		d.ReleaseYear = &v
	}
	if length.Valid {
		v := int(length.Int64)
		d.Length = &v
	}
	if rating.Valid {
		v := rating.String
		d.Rating = &v
	}
	if features.Valid {
		v := features.String
		d.SpecialFeatures = &v
	}
	return &d, nil
}

// TopFiveByRentals returns the five most rented films ordered by
// rental count descending.
func (r *FilmRepo) TopFiveByRentals(ctx context.Context) ([]FilmRentalCount, error) {
	const q = `SELECT i.film_id, f.title, COUNT(i.film_id) AS rental_count
	           FROM rental r
	           JOIN inventory i ON i.inventory_id = r.inventory_id
	           JOIN film f ON f.film_id = i.film_id
	           GROUP BY i.film_id, f.title
	           ORDER BY rental_count DESC
	           LIMIT 5`
	return r.queryFilmCounts(ctx, q)
}

// TopFilmsForActor returns the actor's five most rented films.
func (r *FilmRepo) TopFilmsForActor(ctx context.Context, actorID uint64) ([]FilmRentalCount, error) {
	const q = `SELECT i.film_id, f.title, COUNT(i.film_id) AS rental_count
	           FROM rental r
	           JOIN inventory i ON i.inventory_id = r.inventory_id
	           JOIN film f ON f.film_id = i.film_id
	           JOIN film_actor fa ON fa.film_id = i.film_id
	           WHERE fa.actor_id = ?
	           GROUP BY i.film_id, f.title
	           ORDER BY rental_count DESC
	           LIMIT 5`
	return r.queryFilmCounts(ctx, q, actorID)
}

func (r *FilmRepo) queryFilmCounts(ctx context.Context, q string, args ...interface{}) ([]FilmRentalCount, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]FilmRentalCount, 0, 5)
	for rows.Next() {
		var fc FilmRentalCount
		if err := rows.Scan(&fc.FilmID, &fc.Title, &fc.RentalCount); err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// TopFiveActors returns the five actors appearing in the most films.
func (r *FilmRepo) TopFiveActors(ctx context.Context) ([]ActorFilmCount, error) {
	const q = `SELECT a.actor_id, CONCAT(a.first_name, ' ', a.last_name) AS actor_name,
	                  COUNT(fa.film_id) AS film_count
	           FROM actor a
	           JOIN film_actor fa ON fa.actor_id = a.actor_id
	           GROUP BY a.actor_id, actor_name
	           ORDER BY film_count DESC
	           LIMIT 5`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ActorFilmCount, 0, 5)
	for rows.Next() {
		var ac ActorFilmCount
		if err := rows.Scan(&ac.ActorID, &ac.ActorName, &ac.FilmCount); err != nil {
			return nil, err
		}
		out = append(out, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Search returns films whose title, concatenated actor names or
// category name contain the given substring.  The grouping collects
// every actor of a film into a single actor_names column so the
// substring can match across the cast list.
func (r *FilmRepo) Search(ctx context.Context, term string) ([]SearchResult, error) {
	const q = `SELECT f.film_id, f.title,
	                  GROUP_CONCAT(DISTINCT CONCAT(a.first_name, ' ', a.last_name) SEPARATOR ',') AS actor_names,
	                  c.name
	           FROM film f
	           JOIN film_actor fa ON fa.film_id = f.film_id
	           JOIN actor a ON a.actor_id = fa.actor_id
	           JOIN film_category fc ON fc.film_id = f.film_id
	           JOIN category c ON c.category_id = fc.category_id
	           GROUP BY f.film_id, f.title, c.name
	           HAVING f.title LIKE ? OR actor_names LIKE ? OR c.name LIKE ?`
	pattern := "%" + term + "%"
	rows, err := r.db.QueryContext(ctx, q, pattern, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]SearchResult, 0)
	for rows.Next() {
		var sr SearchResult
		var actors sql.NullString
		if err := rows.Scan(&sr.FilmID, &sr.Title, &actors, &sr.CategoryName); err != nil {
			return nil, err
		}
		if actors.Valid {
			sr.ActorNames = actors.String
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
