package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
)

type PolicyRepository struct {
	pool *pgxpool.Pool
}

func NewPolicyRepository(pool *pgxpool.Pool) *PolicyRepository {
	return &PolicyRepository{pool: pool}
}

const policyColumns = `id, policy_number, user_id, type, coverage_amount, premium_amount, start_date, end_date, status, created_at, updated_at`

func (r *PolicyRepository) Create(ctx context.Context, p *entity.Policy) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO policies (`+policyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, p.ID, p.PolicyNumber, p.UserID, int16(p.Type), p.CoverageAmount, p.PremiumAmount,
		p.StartDate, p.EndDate, int16(p.Status), p.CreatedAt, p.UpdatedAt)
	return mapErr("create policy", err)
}

func (r *PolicyRepository) GetByID(ctx context.Context, id string) (*entity.Policy, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+policyColumns+` FROM policies WHERE id = $1`, id)
	p, err := scanPolicy(row)
	return p, mapErr("get policy", err)
}

func (r *PolicyRepository) List(ctx context.Context, ownerID string) ([]entity.Policy, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+policyColumns+` FROM policies
		WHERE ($1 = '' OR user_id::text = $1)
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, mapErr("list policies", err)
	}
	defer rows.Close()

	out := make([]entity.Policy, 0)
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, mapErr("scan policy", err)
		}
		out = append(out, *p)
	}
	return out, mapErr("list policies", rows.Err())
}

func (r *PolicyRepository) Update(ctx context.Context, p *entity.Policy) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE policies
		SET coverage_amount = $2, premium_amount = $3, end_date = $4, status = $5, updated_at = $6
		WHERE id = $1
	`, p.ID, p.CoverageAmount, p.PremiumAmount, p.EndDate, int16(p.Status), p.UpdatedAt)
	if err != nil {
		return mapErr("update policy", err)
	}
	if tag.RowsAffected() == 0 {
		return mapErr("update policy", pgx.ErrNoRows)
	}
	return nil
}

func scanPolicy(row pgx.Row) (*entity.Policy, error) {
	var (
		p           entity.Policy
		typ, status int16
	)
	if err := row.Scan(&p.ID, &p.PolicyNumber, &p.UserID, &typ, &p.CoverageAmount, &p.PremiumAmount,
		&p.StartDate, &p.EndDate, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Type = entity.PolicyType(typ)
	p.Status = entity.PolicyStatus(status)
	return &p, nil
}
