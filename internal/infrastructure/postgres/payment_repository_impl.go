package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/internal/domain/repository"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentSelect = `
	SELECT pm.id, pm.transaction_id, pm.policy_id, pm.amount, pm.method, pm.status,
	       pm.payment_date, pm.processed_date, pm.reference, pm.created_at, p.policy_number
	FROM payments pm
	JOIN policies p ON p.id = pm.policy_id`

func (r *PaymentRepository) Create(ctx context.Context, p *entity.Payment) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO payments (id, transaction_id, policy_id, amount, method, status,
		                      payment_date, processed_date, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.TransactionID, p.PolicyID, p.Amount, int16(p.Method), int16(p.Status),
		p.PaymentDate, p.ProcessedDate, p.Reference, p.CreatedAt)
	return mapErr("create payment", err)
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, paymentSelect+` WHERE pm.id = $1`, id)
	p, err := scanPayment(row)
	return p, mapErr("get payment", err)
}

func (r *PaymentRepository) List(ctx context.Context, f repository.PaymentFilter) ([]entity.Payment, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, paymentSelect+`
		WHERE ($1 = '' OR p.user_id::text = $1)
		  AND ($2 = '' OR pm.policy_id::text = $2)
		ORDER BY pm.payment_date DESC
	`, f.OwnerID, f.PolicyID)
	if err != nil {
		return nil, mapErr("list payments", err)
	}
	defer rows.Close()

	out := make([]entity.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, mapErr("scan payment", err)
		}
		out = append(out, *p)
	}
	return out, mapErr("list payments", rows.Err())
}

func (r *PaymentRepository) Update(ctx context.Context, p *entity.Payment) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE payments SET status = $2, processed_date = $3, reference = $4
		WHERE id = $1
	`, p.ID, int16(p.Status), p.ProcessedDate, p.Reference)
	if err != nil {
		return mapErr("update payment", err)
	}
	if tag.RowsAffected() == 0 {
		return mapErr("update payment", pgx.ErrNoRows)
	}
	return nil
}

// Totals aggregates payments per (status, method) in one pass.
func (r *PaymentRepository) Totals(ctx context.Context) ([]entity.PaymentTotal, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT status, method, count(*), COALESCE(sum(amount), 0)
		FROM payments
		GROUP BY status, method
		ORDER BY status, method
	`)
	if err != nil {
		return nil, mapErr("payment totals", err)
	}
	defer rows.Close()

	var out []entity.PaymentTotal
	for rows.Next() {
		var (
			t              entity.PaymentTotal
			status, method int16
		)
		if err := rows.Scan(&status, &method, &t.Count, &t.Amount); err != nil {
			return nil, mapErr("scan payment totals", err)
		}
		t.Status = entity.PaymentStatus(status)
		t.Method = entity.PaymentMethod(method)
		out = append(out, t)
	}
	return out, mapErr("payment totals", rows.Err())
}

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var (
		p              entity.Payment
		method, status int16
	)
	if err := row.Scan(&p.ID, &p.TransactionID, &p.PolicyID, &p.Amount, &method, &status,
		&p.PaymentDate, &p.ProcessedDate, &p.Reference, &p.CreatedAt, &p.PolicyNumber); err != nil {
		return nil, err
	}
	p.Method = entity.PaymentMethod(method)
	p.Status = entity.PaymentStatus(status)
	return &p, nil
}
