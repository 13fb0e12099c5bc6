package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moneyd/moneyd/internal/ledger/shared"
)

// ListFilter narrows account listings.
type ListFilter struct {
	// StatsOnly keeps accounts flagged for inclusion in statistics.
	StatsOnly bool
}

// Repository loads account rows.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Account, error)
	ListByIDs(ctx context.Context, ids []int64) ([]Account, error)
}

// SnapshotRepository reads and records manual balance snapshots.
type SnapshotRepository interface {
	// ListForAccounts returns snapshots for ids dated at or before
	// maxDate, ordered by (account, date, id) so that a later insert for
	// the same date supersedes an earlier one deterministically.
	ListForAccounts(ctx context.Context, ids []int64, maxDate time.Time) ([]ManualSnapshot, error)
	Insert(ctx context.Context, snap ManualSnapshot) (ManualSnapshot, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Account, error) {
	query := `SELECT id, name, currency, include_in_stats, created_at, updated_at FROM accounts`
	if filter.StatsOnly {
		query += ` WHERE include_in_stats`
	}
	query += ` ORDER BY name, id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func (r *repository) ListByIDs(ctx context.Context, ids []int64) ([]Account, error) {
	if len(ids) == 0 {
		return []Account{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, name, currency, include_in_stats, created_at, updated_at
		FROM accounts WHERE id = ANY($1) ORDER BY name, id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func scanAccounts(rows pgx.Rows) ([]Account, error) {
	out := []Account{}
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Currency, &a.IncludeInStats, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type snapshotRepository struct {
	db *pgxpool.Pool
}

func NewSnapshotRepository(db *pgxpool.Pool) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) ListForAccounts(ctx context.Context, ids []int64, maxDate time.Time) ([]ManualSnapshot, error) {
	if len(ids) == 0 {
		return []ManualSnapshot{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, account_id, date, amount, recorded_at
		FROM manual_snapshots
		WHERE account_id = ANY($1) AND date <= $2
		ORDER BY account_id, date, id`, ids, maxDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ManualSnapshot{}
	for rows.Next() {
		var s ManualSnapshot
		if err := rows.Scan(&s.ID, &s.AccountID, &s.Date, &s.Amount, &s.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *snapshotRepository) Insert(ctx context.Context, snap ManualSnapshot) (ManualSnapshot, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO manual_snapshots (account_id, date, amount, recorded_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, recorded_at`,
		snap.AccountID, snap.Date, snap.Amount,
	).Scan(&snap.ID, &snap.RecordedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ManualSnapshot{}, shared.ErrSnapshotConflict
		}
		return ManualSnapshot{}, err
	}
	return snap, nil
}
