package sequence_repo

// Postgres-backed tests for the properties the in-memory fakes cannot
// exhibit: the get-or-create race resolved by the unique index, and
// range reservation serialized by the row lock. They run against the
// database named in TEST_DATABASE_URL (schema applied with cmd/seed)
// and are skipped otherwise.

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturador/internal/core/id"
	"facturador/internal/domain/sequence"
	"facturador/internal/infrastructure/storage/postgres"
)

type pgFixture struct {
	repo       *SequenceRepo
	businessID id.ID
	branchID   id.ID
	pointID    id.ID
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	f := &pgFixture{
		repo:       NewSequenceRepo(postgres.NewTxManager(pool)),
		businessID: id.New(),
		branchID:   id.New(),
		pointID:    id.New(),
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO businesses (id, code, name) VALUES ($1, $2, $3)`,
		f.businessID, f.businessID.String(), "Test Business")
	require.NoError(t, err)
	_, err = pool.Exec(ctx,
		`INSERT INTO branches (id, business_id, code, name) VALUES ($1, $2, '001', 'Matriz')`,
		f.branchID, f.businessID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx,
		`INSERT INTO emission_points (id, business_id, branch_id, code, name) VALUES ($1, $2, $3, '001', 'Caja')`,
		f.pointID, f.businessID, f.branchID)
	require.NoError(t, err)

	t.Cleanup(func() {
		for _, q := range []string{
			`DELETE FROM sequences WHERE business_id = $1`,
			`DELETE FROM emission_points WHERE business_id = $1`,
			`DELETE FROM branches WHERE business_id = $1`,
			`DELETE FROM businesses WHERE id = $1`,
		} {
			if _, err := pool.Exec(context.Background(), q, f.businessID); err != nil {
				t.Logf("cleanup: %v", err)
			}
		}
	})

	return f
}

func (f *pgFixture) candidate() *sequence.Sequence {
	return sequence.NewSequence(f.businessID, f.branchID, f.pointID,
		sequence.DocTypeInvoice, "001-001")
}

func TestGetOrCreate_ConcurrentSingleWinner(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	const racers = 16

	type outcome struct {
		id      id.ID
		created bool
	}
	results := make(chan outcome, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, created, err := f.repo.GetOrCreate(ctx, f.candidate())
			if err != nil {
				t.Error(err)
				return
			}
			results <- outcome{seq.ID, created}
		}()
	}
	wg.Wait()
	close(results)

	// Every racer proposed its own row; the unique index lets exactly one
	// insert and hands its row to the rest.
	var winnerID id.ID
	created := 0
	for r := range results {
		if id.IsNil(winnerID) {
			winnerID = r.id
		}
		assert.Equal(t, winnerID, r.id)
		if r.created {
			created++
		}
	}
	assert.Equal(t, 1, created, "exactly one racer creates the row")
}

func TestReserveRange_ConcurrentDisjointOnPostgres(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	seq, _, err := f.repo.GetOrCreate(ctx, f.candidate())
	require.NoError(t, err)

	const (
		workers = 10
		size    = 100
	)
	marks := make(chan int64, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mark, err := f.repo.ReserveRange(ctx, seq.ID, size)
			if err != nil {
				t.Error(err)
				return
			}
			marks <- mark
		}()
	}
	wg.Wait()
	close(marks)

	// Marks are distinct multiples of size: ranges never overlap.
	seen := make(map[int64]bool)
	for m := range marks {
		require.Zero(t, m%size)
		require.False(t, seen[m], "mark %d handed out twice", m)
		seen[m] = true
	}
	require.Len(t, seen, workers)

	current, err := f.repo.GetByID(ctx, seq.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*size), current.CurrentNumber)
}
