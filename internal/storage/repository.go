package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neexbeast/bite-forecast/internal/catalog"
)

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository reads and writes the lake and species catalog.
// It satisfies catalog.Source.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

// lakeDetails is the JSONB part of a lakes row.
type lakeDetails struct {
	Fish           []string `json:"fish"`
	FishType       string   `json:"fish_type"`
	BestTime       string   `json:"best_time"`
	Seasons        []string `json:"seasons"`
	Infrastructure string   `json:"infrastructure"`
	Description    string   `json:"description"`
	Depth          string   `json:"depth"`
	Area           string   `json:"area"`
	Facilities     []string `json:"facilities"`
	Restrictions   string   `json:"restrictions"`
}

type speciesDetails struct {
	Description string   `json:"description"`
	Habitat     string   `json:"habitat"`
	Baits       []string `json:"baits"`
}

// Load reads the whole catalog.
func (r *Repository) Load(ctx context.Context) (*catalog.Catalog, error) {
	lakes, err := r.lakes(ctx)
	if err != nil {
		return nil, err
	}
	species, err := r.species(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.New(lakes, species), nil
}

func (r *Repository) lakes(ctx context.Context) ([]catalog.Lake, error) {
	const q = `
		SELECT id, name, region, district, lat, lon, rating, reviews, popularity, details
		FROM lakes
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying lakes: %w", err)
	}
	defer rows.Close()

	var results []catalog.Lake
	for rows.Next() {
		var l catalog.Lake
		var detailsJSON []byte

		if err := rows.Scan(
			&l.ID,
			&l.Name,
			&l.Region,
			&l.District,
			&l.Lat,
			&l.Lon,
			&l.Rating,
			&l.Reviews,
			&l.Popularity,
			&detailsJSON,
		); err != nil {
			return nil, fmt.Errorf("scanning lake row: %w", err)
		}

		var d lakeDetails
		if err := json.Unmarshal(detailsJSON, &d); err != nil {
			return nil, fmt.Errorf("unmarshaling details for lake %s: %w", l.ID, err)
		}
		l.Fish = d.Fish
		l.FishType = d.FishType
		l.BestTime = d.BestTime
		l.Seasons = d.Seasons
		l.Infrastructure = d.Infrastructure
		l.Description = d.Description
		l.Depth = d.Depth
		l.Area = d.Area
		l.Facilities = d.Facilities
		l.Restrictions = d.Restrictions

		results = append(results, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lake rows: %w", err)
	}

	return results, nil
}

func (r *Repository) species(ctx context.Context) ([]catalog.Species, error) {
	const q = `
		SELECT id, name, category, profile, details
		FROM species
		ORDER BY name
	`

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying species: %w", err)
	}
	defer rows.Close()

	var results []catalog.Species
	for rows.Next() {
		var s catalog.Species
		var detailsJSON []byte

		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Profile, &detailsJSON); err != nil {
			return nil, fmt.Errorf("scanning species row: %w", err)
		}

		var d speciesDetails
		if err := json.Unmarshal(detailsJSON, &d); err != nil {
			return nil, fmt.Errorf("unmarshaling details for species %s: %w", s.ID, err)
		}
		s.Description = d.Description
		s.Habitat = d.Habitat
		s.Baits = d.Baits

		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating species rows: %w", err)
	}

	return results, nil
}

// UpsertLake inserts or updates a lake. On conflict (id) every column but
// created_at is overwritten.
func (r *Repository) UpsertLake(ctx context.Context, l catalog.Lake) error {
	detailsJSON, err := json.Marshal(lakeDetails{
		Fish:           l.Fish,
		FishType:       l.FishType,
		BestTime:       l.BestTime,
		Seasons:        l.Seasons,
		Infrastructure: l.Infrastructure,
		Description:    l.Description,
		Depth:          l.Depth,
		Area:           l.Area,
		Facilities:     l.Facilities,
		Restrictions:   l.Restrictions,
	})
	if err != nil {
		return fmt.Errorf("marshaling details for lake %s: %w", l.ID, err)
	}

	const q = `
		INSERT INTO lakes (id, name, region, district, lat, lon, rating, reviews, popularity, details, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (id) DO UPDATE
		SET name       = EXCLUDED.name,
		    region     = EXCLUDED.region,
		    district   = EXCLUDED.district,
		    lat        = EXCLUDED.lat,
		    lon        = EXCLUDED.lon,
		    rating     = EXCLUDED.rating,
		    reviews    = EXCLUDED.reviews,
		    popularity = EXCLUDED.popularity,
		    details    = EXCLUDED.details,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := r.q.Exec(ctx, q,
		l.ID, l.Name, l.Region, l.District, l.Lat, l.Lon,
		l.Rating, l.Reviews, l.Popularity, detailsJSON,
	); err != nil {
		return fmt.Errorf("upserting lake %s: %w", l.ID, err)
	}

	return nil
}

// UpsertSpecies inserts or updates a species entry.
func (r *Repository) UpsertSpecies(ctx context.Context, s catalog.Species) error {
	detailsJSON, err := json.Marshal(speciesDetails{
		Description: s.Description,
		Habitat:     s.Habitat,
		Baits:       s.Baits,
	})
	if err != nil {
		return fmt.Errorf("marshaling details for species %s: %w", s.ID, err)
	}

	const q = `
		INSERT INTO species (id, name, category, profile, details)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name     = EXCLUDED.name,
		    category = EXCLUDED.category,
		    profile  = EXCLUDED.profile,
		    details  = EXCLUDED.details
	`

	if _, err := r.q.Exec(ctx, q, s.ID, s.Name, s.Category, s.Profile, detailsJSON); err != nil {
		return fmt.Errorf("upserting species %s: %w", s.ID, err)
	}

	return nil
}

// CountLakes returns the number of stored lakes.
func (r *Repository) CountLakes(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM lakes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting lakes: %w", err)
	}
	return n, nil
}

// Seed writes c into an empty database. It reports whether anything was
// written; a database that already holds lakes is left untouched. The count
// and every upsert share one transaction, so a failed seed leaves the
// database empty and the next start retries it.
func (r *Repository) Seed(ctx context.Context, c *catalog.Catalog) (bool, error) {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("seeding: beginning transaction: %w", err)
	}
	inTx := &Repository{q: tx}

	n, err := inTx.CountLakes(ctx)
	if err != nil {
		_ = tx.Rollback(ctx)
		return false, err
	}
	if n > 0 {
		_ = tx.Rollback(ctx)
		return false, nil
	}

	if err := inTx.write(ctx, c); err != nil {
		_ = tx.Rollback(ctx)
		return false, fmt.Errorf("seeding: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("seeding: committing transaction: %w", err)
	}
	return true, nil
}

func (r *Repository) write(ctx context.Context, c *catalog.Catalog) error {
	for _, l := range c.Lakes() {
		if err := r.UpsertLake(ctx, l); err != nil {
			return err
		}
	}
	for _, s := range c.Species() {
		if err := r.UpsertSpecies(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
