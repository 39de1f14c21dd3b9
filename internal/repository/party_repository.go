package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/minerals/internal/database"
	"github.com/stwalsh4118/minerals/internal/models"
)

// PartyRepository defines read-only access to party records stored in
// PostgreSQL.
type PartyRepository interface {
	// FindByName returns the record stored under the exact search name.
	// Returns nil, nil if no record exists (not an error).
	// Returns an error wrapping models.ErrMalformedInput if the stored
	// document cannot be decoded.
	FindByName(ctx context.Context, name string) (*models.PartyRecord, error)

	// ListNames returns every stored search name in order.
	ListNames(ctx context.Context) ([]string, error)
}

// partyRepository is the concrete implementation of PartyRepository.
type partyRepository struct {
	db *database.Database
}

// NewPartyRepository creates a new instance of PartyRepository.
func NewPartyRepository(db *database.Database) PartyRepository {
	return &partyRepository{
		db: db,
	}
}

// FindByName reads the jsonb document for one party.
//
// Expected schema:
//
//	CREATE TABLE party_records (
//		search_name text PRIMARY KEY,
//		record      jsonb NOT NULL
//	);
func (r *partyRepository) FindByName(ctx context.Context, name string) (*models.PartyRecord, error) {
	query := `
		SELECT record
		FROM party_records
		WHERE search_name = $1
	`

	var recordJSON []byte
	err := r.db.Pool.QueryRow(ctx, query, name).Scan(&recordJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query party record %q: %w", name, err)
	}

	var record models.PartyRecord
	if err := record.Scan(recordJSON); err != nil {
		return nil, fmt.Errorf("failed to decode party record %q: %w", name, err)
	}

	// The table key is authoritative for the display name.
	if record.SearchName == "" {
		record.SearchName = name
	}

	return &record, nil
}

// ListNames returns all search names ordered alphabetically.
func (r *partyRepository) ListNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT search_name
		FROM party_records
		ORDER BY search_name
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list party names: %w", err)
	}
	defer rows.Close()

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan party names: %w", err)
	}

	if names == nil {
		names = []string{}
	}
	return names, nil
}
