package onboarding

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"facturador/internal/core/apperror"
	"facturador/internal/core/id"
	"facturador/internal/domain/audit"
	"facturador/internal/domain/block"
	"facturador/internal/domain/catalogs/branch"
	"facturador/internal/domain/catalogs/point"
	"facturador/internal/domain/sequence"
	"facturador/pkg/logger"
)

// --- fakes ---

type fakeBusinesses struct {
	ready map[id.ID]bool
}

func (f *fakeBusinesses) MarkReady(ctx context.Context, businessID id.ID) error {
	f.ready[businessID] = true
	return nil
}

type fakeBranches struct {
	items []*branch.Branch
}

func (f *fakeBranches) ListByBusiness(ctx context.Context, businessID id.ID) ([]*branch.Branch, error) {
	var out []*branch.Branch
	for _, b := range f.items {
		if b.BusinessID == businessID {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakePoints struct {
	items []*point.EmissionPoint
}

func (f *fakePoints) ListByBusiness(ctx context.Context, businessID id.ID, branchID *id.ID) ([]*point.EmissionPoint, error) {
	var out []*point.EmissionPoint
	for _, p := range f.items {
		if p.BusinessID != businessID {
			continue
		}
		if branchID != nil && p.BranchID != *branchID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// fakeNumbering backs both the sequence and block provider slices with a
// shared in-memory counter per point.
type fakeNumbering struct {
	mu        sync.Mutex
	sequences map[id.ID]*sequence.Sequence // by point
	blocks    map[id.ID]*block.Block       // by sequence
}

func newFakeNumbering() *fakeNumbering {
	return &fakeNumbering{
		sequences: make(map[id.ID]*sequence.Sequence),
		blocks:    make(map[id.ID]*block.Block),
	}
}

func (f *fakeNumbering) GetOrCreate(ctx context.Context, businessID, pointID id.ID, docType string) (*sequence.Sequence, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok := f.sequences[pointID]; ok {
		return s, false, nil
	}
	s := sequence.NewSequence(businessID, id.New(), pointID, docType, "001-001")
	f.sequences[pointID] = s
	return s, true, nil
}

func (f *fakeNumbering) EnsureAvailable(ctx context.Context, businessID, sequenceID id.ID) (*block.Block, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if b, ok := f.blocks[sequenceID]; ok && !b.IsExhausted() {
		return b, false, nil
	}
	b := block.NewBlock(businessID, sequenceID, id.New(), 1, block.BootstrapSize, block.SystemDevice)
	f.blocks[sequenceID] = b
	return b, true, nil
}

func nopLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

type fixture struct {
	svc        *Service
	businesses *fakeBusinesses
	businessID id.ID
	numbering  *fakeNumbering
}

func newFixture(t *testing.T, branchCount, pointsPerBranch int) *fixture {
	t.Helper()

	businessID := id.New()

	branches := &fakeBranches{}
	points := &fakePoints{}
	for i := 0; i < branchCount; i++ {
		br := branch.NewBranch(businessID, "001", "Sucursal")
		branches.items = append(branches.items, br)
		for j := 0; j < pointsPerBranch; j++ {
			points.items = append(points.items,
				point.NewEmissionPoint(businessID, br.ID, "001", "Caja"))
		}
	}

	businesses := &fakeBusinesses{ready: make(map[id.ID]bool)}
	numbering := newFakeNumbering()

	svc := NewService(businesses, branches, points, numbering, numbering, audit.Nop{}, nopLogger())

	return &fixture{
		svc:        svc,
		businesses: businesses,
		businessID: businessID,
		numbering:  numbering,
	}
}

// --- tests ---

func TestEnsureReady_BootstrapsEveryPoint(t *testing.T) {
	f := newFixture(t, 2, 3)

	result, err := f.svc.EnsureReady(context.Background(), f.businessID)
	require.NoError(t, err)

	assert.Len(t, result.Points, 6)
	assert.Equal(t, 6, result.BlocksCreated)
	for _, pr := range result.Points {
		assert.True(t, pr.BlockCreated)
		assert.NotEqual(t, id.Nil(), pr.SequenceID)
		assert.NotEqual(t, id.Nil(), pr.BlockID)
	}
	assert.True(t, f.businesses.ready[f.businessID])
}

func TestEnsureReady_Idempotent(t *testing.T) {
	f := newFixture(t, 1, 2)
	ctx := context.Background()

	first, err := f.svc.EnsureReady(ctx, f.businessID)
	require.NoError(t, err)
	require.Equal(t, 2, first.BlocksCreated)

	second, err := f.svc.EnsureReady(ctx, f.businessID)
	require.NoError(t, err)

	assert.Zero(t, second.BlocksCreated, "re-running creates nothing new")
	assert.Len(t, second.Points, 2)
	for i, pr := range second.Points {
		assert.Equal(t, first.Points[i].SequenceID, pr.SequenceID)
		assert.Equal(t, first.Points[i].BlockID, pr.BlockID)
		assert.False(t, pr.BlockCreated)
	}
}

func TestEnsureReady_RequiresBranch(t *testing.T) {
	f := newFixture(t, 0, 0)

	_, err := f.svc.EnsureReady(context.Background(), f.businessID)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "NO_BRANCHES", appErr.Code)
	assert.False(t, f.businesses.ready[f.businessID])
}

func TestEnsureReady_RequiresPoint(t *testing.T) {
	f := newFixture(t, 1, 0)

	_, err := f.svc.EnsureReady(context.Background(), f.businessID)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "NO_EMISSION_POINTS", appErr.Code)
	assert.False(t, f.businesses.ready[f.businessID])
}
