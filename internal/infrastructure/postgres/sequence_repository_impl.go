package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obakengshepherd/InsureClaim/internal/domain/identifier"
)

// identifiedColumns maps a tag to the column holding identifiers of that
// kind, used once per year to seed the counter from existing rows.
var identifiedColumns = map[string]struct{ table, column string }{
	identifier.TagPolicy:      {"policies", "policy_number"},
	identifier.TagClaim:       {"claims", "claim_number"},
	identifier.TagTransaction: {"payments", "transaction_id"},
}

// SequenceRepository allocates identifier counters from the
// identifier_sequences table. Call it inside the transaction that inserts
// the identified row: the counter row stays locked until commit.
type SequenceRepository struct {
	pool *pgxpool.Pool
}

func NewSequenceRepository(pool *pgxpool.Pool) *SequenceRepository {
	return &SequenceRepository{pool: pool}
}

func (r *SequenceRepository) Next(ctx context.Context, tag string, year int) (int64, error) {
	_, ok := identifiedColumns[tag]
	if !ok {
		return 0, fmt.Errorf("unknown identifier tag %q", tag)
	}
	q := conn(ctx, r.pool)

	var next int64
	err := q.QueryRow(ctx, `
		UPDATE identifier_sequences SET last_value = last_value + 1
		WHERE tag = $1 AND year = $2
		RETURNING last_value
	`, tag, year).Scan(&next)
	if err == nil {
		return next, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, mapErr("advance sequence", err)
	}

	// First allocation of the year: start after the highest identifier
	// already stored. A concurrent first allocation turns into the update.
	latest, err := latestSequence(ctx, q, tag, year)
	if err != nil {
		return 0, err
	}
	err = q.QueryRow(ctx, `
		INSERT INTO identifier_sequences (tag, year, last_value)
		VALUES ($1, $2, $3::bigint + 1)
		ON CONFLICT (tag, year) DO UPDATE SET last_value = identifier_sequences.last_value + 1
		RETURNING last_value
	`, tag, year, latest).Scan(&next)
	if err != nil {
		return 0, mapErr("seed sequence", err)
	}
	return next, nil
}

// latestSequence returns the counter of the highest stored identifier for
// tag and year, or 0 when there is none. Suffixes are zero padded, so the
// text maximum is the numeric one.
func latestSequence(ctx context.Context, q querier, tag string, year int) (int64, error) {
	src := identifiedColumns[tag]
	var latest *string
	err := q.QueryRow(ctx,
		fmt.Sprintf(`SELECT max(%[2]s) FROM %[1]s WHERE %[2]s LIKE $1`, src.table, src.column),
		tag+"-"+strconv.Itoa(year)+"-%",
	).Scan(&latest)
	if err != nil {
		return 0, mapErr("seed sequence", err)
	}
	if latest == nil {
		return 0, nil
	}
	t, y, seq, err := identifier.Parse(*latest)
	if err != nil {
		return 0, fmt.Errorf("seed %s sequence: %w", tag, err)
	}
	if t != tag || y != year {
		return 0, fmt.Errorf("seed %s sequence: %w: %q", tag, identifier.ErrMalformed, *latest)
	}
	return seq, nil
}
