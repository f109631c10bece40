package sequence

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"facturador/internal/core/apperror"
	"facturador/internal/core/id"
	"facturador/internal/domain/catalogs/branch"
	"facturador/internal/domain/catalogs/point"
	"facturador/pkg/logger"
)

// --- fakes ---

type fakeRepo struct {
	mu   sync.Mutex
	byID map[id.ID]*Sequence
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[id.ID]*Sequence)}
}

func (r *fakeRepo) key(s *Sequence) string {
	return s.BusinessID.String() + "/" + s.PointID.String() + "/" + s.DocType
}

func (r *fakeRepo) GetOrCreate(ctx context.Context, seq *Sequence) (*Sequence, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if r.key(existing) == r.key(seq) {
			cp := *existing
			return &cp, false, nil
		}
	}

	cp := *seq
	r.byID[seq.ID] = &cp
	out := cp
	return &out, true, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, sequenceID id.ID) (*Sequence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[sequenceID]
	if !ok {
		return nil, apperror.NewNotFound("sequence", sequenceID.String())
	}
	cp := *s
	return &cp, nil
}

func (r *fakeRepo) ListByBusiness(ctx context.Context, businessID id.ID) ([]*Sequence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []*Sequence
	for _, s := range r.byID {
		if s.BusinessID == businessID {
			cp := *s
			items = append(items, &cp)
		}
	}
	return items, nil
}

func (r *fakeRepo) ReserveRange(ctx context.Context, sequenceID id.ID, size int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[sequenceID]
	if !ok {
		return 0, apperror.NewNotFound("sequence", sequenceID.String())
	}
	s.CurrentNumber += size
	return s.CurrentNumber, nil
}

type fakeBranches struct {
	items map[id.ID]*branch.Branch
}

func (f *fakeBranches) GetOwned(ctx context.Context, businessID, branchID id.ID) (*branch.Branch, error) {
	b, ok := f.items[branchID]
	if !ok || b.BusinessID != businessID {
		return nil, apperror.NewNotFound("branch", branchID.String())
	}
	return b, nil
}

type fakePoints struct {
	items map[id.ID]*point.EmissionPoint
}

func (f *fakePoints) GetOwned(ctx context.Context, businessID, pointID id.ID) (*point.EmissionPoint, error) {
	p, ok := f.items[pointID]
	if !ok || p.BusinessID != businessID {
		return nil, apperror.NewNotFound("emission point", pointID.String())
	}
	return p, nil
}

func nopLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

type fixture struct {
	svc        *Service
	repo       *fakeRepo
	businessID id.ID
	branchID   id.ID
	pointID    id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	businessID := id.New()
	br := branch.NewBranch(businessID, "001", "Matriz")
	pt := point.NewEmissionPoint(businessID, br.ID, "002", "Caja 2")

	repo := newFakeRepo()
	svc := NewService(repo,
		&fakeBranches{items: map[id.ID]*branch.Branch{br.ID: br}},
		&fakePoints{items: map[id.ID]*point.EmissionPoint{pt.ID: pt}},
		nopLogger())

	return &fixture{
		svc:        svc,
		repo:       repo,
		businessID: businessID,
		branchID:   br.ID,
		pointID:    pt.ID,
	}
}

// --- tests ---

func TestGetOrCreate_DerivesSeries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seq, created, err := f.svc.GetOrCreate(ctx, f.businessID, f.pointID, DocTypeInvoice)
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, "001-002", seq.Series)
	assert.Equal(t, int64(0), seq.CurrentNumber)
	assert.Equal(t, DefaultPadding, seq.Padding)
	assert.Equal(t, f.branchID, seq.BranchID)
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, created, err := f.svc.GetOrCreate(ctx, f.businessID, f.pointID, DocTypeInvoice)
	require.NoError(t, err)
	require.True(t, created)

	second, again, err := f.svc.GetOrCreate(ctx, f.businessID, f.pointID, DocTypeInvoice)
	require.NoError(t, err)

	assert.False(t, again)
	assert.Equal(t, first.ID, second.ID)
}

func TestGetOrCreate_UnknownDocType(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.GetOrCreate(context.Background(), f.businessID, f.pointID, "banana")
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestGetOrCreate_ForeignPoint(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.GetOrCreate(context.Background(), id.New(), f.pointID, DocTypeInvoice)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReserveRange_Bounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seq, _, err := f.svc.GetOrCreate(ctx, f.businessID, f.pointID, DocTypeInvoice)
	require.NoError(t, err)

	start, end, err := f.svc.ReserveRange(ctx, f.businessID, seq.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), start)
	assert.Equal(t, int64(100), end)

	start, end, err = f.svc.ReserveRange(ctx, f.businessID, seq.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(101), start)
	assert.Equal(t, int64(150), end)
}

func TestReserveRange_InvalidSize(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.ReserveRange(context.Background(), f.businessID, id.New(), 0)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestReserveRange_ForeignSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seq, _, err := f.svc.GetOrCreate(ctx, f.businessID, f.pointID, DocTypeInvoice)
	require.NoError(t, err)

	// Another business must not see the sequence at all.
	_, _, err = f.svc.ReserveRange(ctx, id.New(), seq.ID, 100)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReserveRange_ConcurrentDisjoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seq, _, err := f.svc.GetOrCreate(ctx, f.businessID, f.pointID, DocTypeInvoice)
	require.NoError(t, err)

	const (
		workers = 20
		size    = 100
	)

	type rng struct{ start, end int64 }
	results := make(chan rng, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start, end, err := f.svc.ReserveRange(ctx, f.businessID, seq.ID, size)
			if err != nil {
				t.Error(err)
				return
			}
			results <- rng{start, end}
		}()
	}
	wg.Wait()
	close(results)

	// Every reserved number appears exactly once: no overlaps, no gaps.
	seen := make(map[int64]bool)
	for r := range results {
		require.Equal(t, int64(size), r.end-r.start+1)
		for n := r.start; n <= r.end; n++ {
			if seen[n] {
				t.Fatalf("number %d reserved twice", n)
			}
			seen[n] = true
		}
	}
	require.Len(t, seen, workers*size, fmt.Sprintf("expected %d distinct numbers", workers*size))
}
