package storage

import (
	"context"
	"database/sql"
	"fmt"

	"alias_gateway/internal/models"
)

// CatalogRepository reads public alias records from the alias_catalog
// table. Only public fields live in the database; private resolutions are
// never stored here.
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// aliasRow is the database shape of a public alias record
type aliasRow struct {
	AliasID            string            `db:"alias_id"`
	AliasName          string            `db:"alias_name"`
	AliasVersion       string            `db:"alias_version"`
	Capabilities       models.StringList `db:"capabilities"`
	Limits             models.JSONB      `db:"limits"`
	DefaultTemperature float64           `db:"default_temperature"`
	Status             string            `db:"status"`
}

// List returns all enabled public alias records in catalog position order.
// This runs once at startup; the result seeds the in-memory catalog and is
// read-only thereafter.
func (r *CatalogRepository) List(ctx context.Context) ([]models.PublicAlias, error) {
	query := `
		SELECT alias_id, alias_name, alias_version, capabilities,
		       limits, default_temperature, status
		FROM alias_catalog
		WHERE enabled = true
		ORDER BY position, alias_id
	`

	var rows []aliasRow
	err := r.db.conn.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list alias catalog: %w", err)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyCatalog
	}

	records := make([]models.PublicAlias, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("invalid catalog row %q: %w", row.AliasID, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// GetByID retrieves a single enabled public alias record
func (r *CatalogRepository) GetByID(ctx context.Context, aliasID string) (*models.PublicAlias, error) {
	query := `
		SELECT alias_id, alias_name, alias_version, capabilities,
		       limits, default_temperature, status
		FROM alias_catalog
		WHERE alias_id = $1 AND enabled = true
	`

	var row aliasRow
	err := r.db.conn.GetContext(ctx, &row, query, aliasID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAliasNotFound
		}
		return nil, fmt.Errorf("failed to get alias: %w", err)
	}

	rec, err := row.toModel()
	if err != nil {
		return nil, fmt.Errorf("invalid catalog row %q: %w", row.AliasID, err)
	}
	return &rec, nil
}

func (row aliasRow) toModel() (models.PublicAlias, error) {
	name := models.AliasName(row.AliasName)
	if !name.IsValid() {
		return models.PublicAlias{}, fmt.Errorf("unknown alias_name %q", row.AliasName)
	}

	limits, err := limitsFromJSONB(row.Limits)
	if err != nil {
		return models.PublicAlias{}, err
	}

	return models.PublicAlias{
		AliasID:            row.AliasID,
		AliasName:          name,
		AliasVersion:       row.AliasVersion,
		Capabilities:       []string(row.Capabilities),
		Limits:             limits,
		DefaultTemperature: row.DefaultTemperature,
		Status:             models.AliasStatus(row.Status),
	}, nil
}

func limitsFromJSONB(j models.JSONB) (models.Limits, error) {
	var limits models.Limits

	num := func(key string) (float64, error) {
		raw, ok := j[key]
		if !ok {
			return 0, fmt.Errorf("limits missing %q", key)
		}
		v, ok := raw.(float64)
		if !ok || v <= 0 {
			return 0, fmt.Errorf("limits %q must be a positive number", key)
		}
		return v, nil
	}

	maxContext, err := num("max_context")
	if err != nil {
		return limits, err
	}
	tps, err := num("tokens_per_second")
	if err != nil {
		return limits, err
	}
	maxOutput, err := num("max_output")
	if err != nil {
		return limits, err
	}

	limits.MaxContext = int(maxContext)
	limits.TokensPerSecond = tps
	limits.MaxOutput = int(maxOutput)
	return limits, nil
}
