package transactions

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads transactions touching a set of accounts.
type Repository interface {
	// ListForAccounts returns every one-off and recurring transaction
	// whose target or counterparty account is in ids and whose schedule
	// can post inside [start, end].
	ListForAccounts(ctx context.Context, ids []int64, start, end time.Time) ([]Transaction, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListForAccounts(ctx context.Context, ids []int64, start, end time.Time) ([]Transaction, error) {
	if len(ids) == 0 {
		return []Transaction{}, nil
	}
	out := []Transaction{}

	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.ref, t.name, COALESCE(t.description, ''), t.amount,
		       t.target_account_id, t.counterparty_account_id,
		       t.category_id, COALESCE(c.name, ''),
		       COALESCE(array_agg(tg.name) FILTER (WHERE tg.name IS NOT NULL), '{}'),
		       t.date, t.created_at, t.updated_at
		FROM extra_transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		LEFT JOIN extra_transaction_tags tt ON tt.transaction_id = t.id
		LEFT JOIN tags tg ON tg.id = tt.tag_id
		WHERE (t.target_account_id = ANY($1) OR t.counterparty_account_id = ANY($1))
		  AND t.date BETWEEN $2 AND $3
		GROUP BY t.id, c.name
		ORDER BY t.date, t.id`, ids, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		t := Transaction{Kind: KindExtra}
		if err := rows.Scan(
			&t.ID, &t.Ref, &t.Name, &t.Description, &t.Amount,
			&t.TargetAccountID, &t.CounterpartyAccountID,
			&t.CategoryID, &t.Category, &t.Tags,
			&t.Date, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, `
		SELECT t.id, t.ref, t.name, COALESCE(t.description, ''), t.amount,
		       t.target_account_id, t.counterparty_account_id,
		       t.category_id, COALESCE(c.name, ''),
		       COALESCE(array_agg(tg.name) FILTER (WHERE tg.name IS NOT NULL), '{}'),
		       t.period, t.billing_start, t.billing_end, t.created_at, t.updated_at
		FROM regular_transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		LEFT JOIN regular_transaction_tags tt ON tt.transaction_id = t.id
		LEFT JOIN tags tg ON tg.id = tt.tag_id
		WHERE (t.target_account_id = ANY($1) OR t.counterparty_account_id = ANY($1))
		  AND t.billing_start <= $3
		  AND (t.billing_end IS NULL OR t.billing_end >= $2)
		GROUP BY t.id, c.name
		ORDER BY t.billing_start, t.id`, ids, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		t := Transaction{Kind: KindRegular}
		if err := rows.Scan(
			&t.ID, &t.Ref, &t.Name, &t.Description, &t.Amount,
			&t.TargetAccountID, &t.CounterpartyAccountID,
			&t.CategoryID, &t.Category, &t.Tags,
			&t.Period, &t.BillingStart, &t.BillingEnd, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
