package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/internal/domain/repository"
)

type ClaimRepository struct {
	pool *pgxpool.Pool
}

func NewClaimRepository(pool *pgxpool.Pool) *ClaimRepository {
	return &ClaimRepository{pool: pool}
}

const claimSelect = `
	SELECT c.id, c.claim_number, c.policy_id, c.user_id, c.description, c.claim_amount, c.approved_amount,
	       c.status, c.incident_date, c.submitted_date, c.reviewed_date, c.document_path, c.review_notes,
	       c.created_at, c.updated_at, p.policy_number
	FROM claims c
	JOIN policies p ON p.id = c.policy_id`

func (r *ClaimRepository) Create(ctx context.Context, c *entity.Claim) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO claims (id, claim_number, policy_id, user_id, description, claim_amount, approved_amount,
		                    status, incident_date, submitted_date, reviewed_date, document_path, review_notes,
		                    created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, c.ID, c.ClaimNumber, c.PolicyID, c.UserID, c.Description, c.ClaimAmount, c.ApprovedAmount,
		int16(c.Status), c.IncidentDate, c.SubmittedDate, c.ReviewedDate, c.DocumentPath, c.ReviewNotes,
		c.CreatedAt, c.UpdatedAt)
	return mapErr("create claim", err)
}

func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*entity.Claim, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, claimSelect+` WHERE c.id = $1`, id)
	c, err := scanClaim(row)
	return c, mapErr("get claim", err)
}

func (r *ClaimRepository) GetForUpdate(ctx context.Context, id string) (*entity.Claim, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, claimSelect+` WHERE c.id = $1 FOR UPDATE OF c`, id)
	c, err := scanClaim(row)
	return c, mapErr("lock claim", err)
}

func (r *ClaimRepository) List(ctx context.Context, f repository.ClaimFilter) ([]entity.Claim, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, claimSelect+`
		WHERE ($1 = '' OR c.user_id::text = $1)
		  AND ($2 = '' OR c.policy_id::text = $2)
		ORDER BY c.submitted_date DESC
	`, f.UserID, f.PolicyID)
	if err != nil {
		return nil, mapErr("list claims", err)
	}
	defer rows.Close()

	out := make([]entity.Claim, 0)
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, mapErr("scan claim", err)
		}
		out = append(out, *c)
	}
	return out, mapErr("list claims", rows.Err())
}

func (r *ClaimRepository) Update(ctx context.Context, c *entity.Claim) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE claims
		SET status = $2, approved_amount = $3, reviewed_date = $4, review_notes = $5, updated_at = $6
		WHERE id = $1
	`, c.ID, int16(c.Status), c.ApprovedAmount, c.ReviewedDate, c.ReviewNotes, c.UpdatedAt)
	if err != nil {
		return mapErr("update claim", err)
	}
	if tag.RowsAffected() == 0 {
		return mapErr("update claim", pgx.ErrNoRows)
	}
	return nil
}

func (r *ClaimRepository) SetDocumentPath(ctx context.Context, id, path string, at time.Time) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE claims SET document_path = $2, updated_at = $3 WHERE id = $1
	`, id, path, at)
	if err != nil {
		return mapErr("set claim document", err)
	}
	if tag.RowsAffected() == 0 {
		return mapErr("set claim document", pgx.ErrNoRows)
	}
	return nil
}

// Totals aggregates claims per status in one pass.
func (r *ClaimRepository) Totals(ctx context.Context) ([]entity.ClaimTotal, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT status, count(*), COALESCE(sum(claim_amount), 0), COALESCE(sum(approved_amount), 0)
		FROM claims
		GROUP BY status
		ORDER BY status
	`)
	if err != nil {
		return nil, mapErr("claim totals", err)
	}
	defer rows.Close()

	var out []entity.ClaimTotal
	for rows.Next() {
		var (
			t      entity.ClaimTotal
			status int16
		)
		if err := rows.Scan(&status, &t.Count, &t.Claimed, &t.Approved); err != nil {
			return nil, mapErr("scan claim totals", err)
		}
		t.Status = entity.ClaimStatus(status)
		out = append(out, t)
	}
	return out, mapErr("claim totals", rows.Err())
}

func scanClaim(row pgx.Row) (*entity.Claim, error) {
	var (
		c        entity.Claim
		status   int16
		approved decimal.NullDecimal
	)
	if err := row.Scan(&c.ID, &c.ClaimNumber, &c.PolicyID, &c.UserID, &c.Description, &c.ClaimAmount, &approved,
		&status, &c.IncidentDate, &c.SubmittedDate, &c.ReviewedDate, &c.DocumentPath, &c.ReviewNotes,
		&c.CreatedAt, &c.UpdatedAt, &c.PolicyNumber); err != nil {
		return nil, err
	}
	c.Status = entity.ClaimStatus(status)
	c.ApprovedAmount = approved
	return &c, nil
}
