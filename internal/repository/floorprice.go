package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/apetrack-backend/internal/models"
)

type FloorPriceRepo struct {
	pool *pgxpool.Pool
}

func NewFloorPriceRepo(pool *pgxpool.Pool) *FloorPriceRepo {
	return &FloorPriceRepo{pool: pool}
}

// Upsert writes the latest floor for one collection, keyed by contract and
// network. A suspicious floor is stored with price 0 and the reason so the
// dashboard can show why the value is missing.
func (r *FloorPriceRepo) Upsert(ctx context.Context, fp *models.FloorPrice) (*models.FloorPrice, error) {
	fetchedAt := fp.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO floor_prices
		 (contract_address, network, collection, floor_price, currency, suspicious, reason, fetched_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (contract_address, network) DO UPDATE SET
		   collection = EXCLUDED.collection,
		   floor_price = EXCLUDED.floor_price,
		   currency = EXCLUDED.currency,
		   suspicious = EXCLUDED.suspicious,
		   reason = EXCLUDED.reason,
		   fetched_at = EXCLUDED.fetched_at,
		   updated_at = now()
		 RETURNING *`,
		fp.ContractAddress, fp.Network, fp.Collection, fp.FloorPrice,
		fp.Currency, fp.Suspicious, fp.Reason, fetchedAt,
	)
	return scanFloorPrice(row)
}

func (r *FloorPriceRepo) GetAll(ctx context.Context) ([]models.FloorPrice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT * FROM floor_prices ORDER BY collection ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFloorPrices(rows)
}

func (r *FloorPriceRepo) GetByContract(ctx context.Context, contract, network string) (*models.FloorPrice, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT * FROM floor_prices WHERE lower(contract_address) = lower($1) AND network = $2`,
		contract, network,
	)
	fp, err := scanFloorPrice(row)
	if err != nil {
		if err.Error() == "no rows in result set" {
			return nil, nil
		}
		return nil, err
	}
	return fp, nil
}

// --- scan helpers ---

func scanFloorPrice(row scannable) (*models.FloorPrice, error) {
	var fp models.FloorPrice
	err := row.Scan(
		&fp.ID, &fp.ContractAddress, &fp.Network, &fp.Collection,
		&fp.FloorPrice, &fp.Currency, &fp.Suspicious, &fp.Reason,
		&fp.FetchedAt, &fp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &fp, nil
}

func collectFloorPrices(rows rowsIter) ([]models.FloorPrice, error) {
	var out []models.FloorPrice
	for rows.Next() {
		var fp models.FloorPrice
		if err := rows.Scan(
			&fp.ID, &fp.ContractAddress, &fp.Network, &fp.Collection,
			&fp.FloorPrice, &fp.Currency, &fp.Suspicious, &fp.Reason,
			&fp.FetchedAt, &fp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, fp)
	}
	return out, rows.Err()
}
