package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/apetrack-backend/internal/models"
)

type RunSummaryRepo struct {
	pool *pgxpool.Pool
}

func NewRunSummaryRepo(pool *pgxpool.Pool) *RunSummaryRepo {
	return &RunSummaryRepo{pool: pool}
}

// Record persists the roll-up of one reconciliation run. The run ID is
// generated here if the caller didn't set one.
func (r *RunSummaryRepo) Record(ctx context.Context, rs *models.RunSummary) (*models.RunSummary, error) {
	id := rs.ID
	if id == "" {
		id = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO run_summaries
		 (id, wallet, total_profit, total_loss, net_profit, nft_trades, total_transactions, duration_ms)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING *`,
		id, rs.Wallet, rs.TotalProfit, rs.TotalLoss, rs.NetProfit,
		rs.NFTTrades, rs.TotalTransactions, rs.DurationMs,
	)
	return scanRunSummary(row)
}

func (r *RunSummaryRepo) GetRecent(ctx context.Context, limit int) ([]models.RunSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT * FROM run_summaries ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRunSummaries(rows)
}

// --- scan helpers ---

func scanRunSummary(row scannable) (*models.RunSummary, error) {
	var rs models.RunSummary
	err := row.Scan(
		&rs.ID, &rs.Wallet, &rs.TotalProfit, &rs.TotalLoss, &rs.NetProfit,
		&rs.NFTTrades, &rs.TotalTransactions, &rs.DurationMs, &rs.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rs, nil
}

func collectRunSummaries(rows rowsIter) ([]models.RunSummary, error) {
	var out []models.RunSummary
	for rows.Next() {
		var rs models.RunSummary
		if err := rows.Scan(
			&rs.ID, &rs.Wallet, &rs.TotalProfit, &rs.TotalLoss, &rs.NetProfit,
			&rs.NFTTrades, &rs.TotalTransactions, &rs.DurationMs, &rs.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}
