package postgres

import (
	"context"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/internal/domain/identifier"
	"github.com/obakengshepherd/InsureClaim/pkg/helpers"
)

// Years far from the current one keep these rows apart from real data.
const (
	concurrentYear = 2091
	seededYear     = 2092
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	require.NoError(t, Migrate(dsn, "../../../db/migrations", "up", 0, helpers.NopLogger()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := NewPool(ctx, dsn, 16, 1, time.Hour)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func resetSequence(t *testing.T, pool *pgxpool.Pool, tag string, year int) {
	t.Helper()
	wipe := func() {
		_, err := pool.Exec(context.Background(), `DELETE FROM identifier_sequences WHERE tag = $1 AND year = $2`, tag, year)
		require.NoError(t, err)
	}
	wipe()
	t.Cleanup(wipe)
}

func TestSequenceRepository_ConcurrentAllocations(t *testing.T) {
	pool := testPool(t)
	resetSequence(t, pool, identifier.TagClaim, concurrentYear)
	seq := NewSequenceRepository(pool)
	tx := NewTxManager(pool)

	const n = 24
	var (
		mu  sync.Mutex
		got []int64
		wg  sync.WaitGroup
	)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
				v, err := seq.Next(ctx, identifier.TagClaim, concurrentYear)
				if err != nil {
					return err
				}
				mu.Lock()
				got = append(got, v)
				mu.Unlock()
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	require.Len(t, got, n)
	for i, v := range got {
		assert.Equal(t, int64(i+1), v)
	}
}

func TestSequenceRepository_SeedsFromStoredNumbers(t *testing.T) {
	pool := testPool(t)
	resetSequence(t, pool, identifier.TagPolicy, seededYear)
	ctx := context.Background()

	now := time.Now().UTC()
	u := &entity.User{
		ID: uuid.NewString(), FullName: "Seed Owner", Email: uuid.NewString() + "@example.com",
		PasswordHash: "x", PhoneNumber: "+27820000000", Role: entity.RoleCustomer, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, NewUserRepository(pool).Create(ctx, u))
	p := &entity.Policy{
		ID: uuid.NewString(), PolicyNumber: "POL-2092-000041", UserID: u.ID, Type: entity.PolicyTypeAuto,
		CoverageAmount: decimal.NewFromInt(10000), PremiumAmount: decimal.NewFromInt(100),
		StartDate: now, EndDate: now.AddDate(1, 0, 0), Status: entity.PolicyActive,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, NewPolicyRepository(pool).Create(ctx, p))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM policies WHERE id = $1`, p.ID)
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, u.ID)
	})

	gen := identifier.NewGenerator(NewSequenceRepository(pool))
	gen.Clock = func() time.Time { return time.Date(seededYear, 3, 1, 0, 0, 0, 0, time.UTC) }
	tx := NewTxManager(pool)

	var first, second string
	require.NoError(t, tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		first, err = gen.Next(ctx, identifier.TagPolicy)
		return err
	}))
	require.NoError(t, tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		second, err = gen.Next(ctx, identifier.TagPolicy)
		return err
	}))
	assert.Equal(t, "POL-2092-000042", first)
	assert.Equal(t, "POL-2092-000043", second)
}
