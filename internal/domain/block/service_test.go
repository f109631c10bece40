package block

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
	"facturador/internal/domain/sequence"
	"facturador/pkg/logger"
)

// --- fakes ---

type fakeBlockRepo struct {
	mu   sync.Mutex
	byID map[id.ID]*Block

	failInsert bool
}

func newFakeBlockRepo() *fakeBlockRepo {
	return &fakeBlockRepo{byID: make(map[id.ID]*Block)}
}

func (r *fakeBlockRepo) Insert(ctx context.Context, b *Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failInsert {
		return assert.AnError
	}
	cp := *b
	r.byID[b.ID] = &cp
	return nil
}

func (r *fakeBlockRepo) GetOwned(ctx context.Context, businessID, blockID id.ID) (*Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.byID[blockID]
	if !ok || b.BusinessID != businessID {
		return nil, apperror.NewNotFound("block", blockID.String())
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBlockRepo) FindAvailable(ctx context.Context, businessID, sequenceID id.ID) (*Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var oldest *Block
	for _, b := range r.byID {
		if b.BusinessID != businessID || b.SequenceID != sequenceID {
			continue
		}
		if b.Status != StatusAvailable {
			continue
		}
		if oldest == nil || b.CreatedAt.Before(oldest.CreatedAt) {
			oldest = b
		}
	}
	if oldest == nil {
		return nil, apperror.NewNotFound("available block", sequenceID.String())
	}
	cp := *oldest
	return &cp, nil
}

func (r *fakeBlockRepo) ConsumeNext(ctx context.Context, businessID, blockID id.ID) (Consumed, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.byID[blockID]
	if !ok || b.BusinessID != businessID || b.NextNumber > b.EndNumber {
		return Consumed{}, false, nil
	}

	number := b.NextNumber
	b.NextNumber++
	if b.NextNumber > b.EndNumber {
		b.Status = StatusExhausted
	} else {
		b.Status = StatusOpen
	}

	return Consumed{
		Number:     number,
		SequenceID: b.SequenceID,
		Exhausted:  b.Status == StatusExhausted,
	}, true, nil
}

func (r *fakeBlockRepo) Open(ctx context.Context, businessID, blockID id.ID, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.byID[blockID]
	if !ok || b.BusinessID != businessID || b.Status != StatusAvailable {
		return nil
	}
	b.Status = StatusOpen
	b.DeviceID = deviceID
	return nil
}

func (r *fakeBlockRepo) ListBySequence(ctx context.Context, businessID, sequenceID id.ID) ([]*Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []*Block
	for _, b := range r.byID {
		if b.BusinessID == businessID && b.SequenceID == sequenceID {
			cp := *b
			items = append(items, &cp)
		}
	}
	return items, nil
}

type fakeSequences struct {
	mu   sync.Mutex
	byID map[id.ID]*sequence.Sequence
}

func (f *fakeSequences) GetOwned(ctx context.Context, businessID, sequenceID id.ID) (*sequence.Sequence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.byID[sequenceID]
	if !ok || s.BusinessID != businessID {
		return nil, apperror.NewNotFound("sequence", sequenceID.String())
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSequences) ReserveRange(ctx context.Context, businessID, sequenceID id.ID, size int64) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.byID[sequenceID]
	if !ok || s.BusinessID != businessID {
		return 0, 0, apperror.NewNotFound("sequence", sequenceID.String())
	}
	s.CurrentNumber += size
	return s.CurrentNumber - size + 1, s.CurrentNumber, nil
}

// nopTxManager runs the function without a real transaction.
type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func nopLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

type fixture struct {
	svc        *Service
	repo       *fakeBlockRepo
	businessID id.ID
	seq        *sequence.Sequence
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	businessID := id.New()
	seq := sequence.NewSequence(businessID, id.New(), id.New(), sequence.DocTypeInvoice, "001-001")

	repo := newFakeBlockRepo()
	sequences := &fakeSequences{byID: map[id.ID]*sequence.Sequence{seq.ID: seq}}
	svc := NewService(repo, sequences, nopTxManager{}, audit.Nop{}, nopLogger())

	return &fixture{svc: svc, repo: repo, businessID: businessID, seq: seq}
}

// --- tests ---

func TestCreate_FreshSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blk, err := f.svc.Create(ctx, CreateInput{
		BusinessID: f.businessID,
		SequenceID: f.seq.ID,
		Size:       100,
		DeviceID:   "POS-1",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), blk.StartNumber)
	assert.Equal(t, int64(100), blk.EndNumber)
	assert.Equal(t, int64(1), blk.NextNumber)
	assert.Equal(t, StatusAvailable, blk.Status)
	assert.Equal(t, "POS-1", blk.DeviceID)
	assert.Equal(t, int64(100), blk.Remaining())
}

func TestCreate_SecondBlockContinues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{BusinessID: f.businessID, SequenceID: f.seq.ID, Size: 100})
	require.NoError(t, err)

	second, err := f.svc.Create(ctx, CreateInput{BusinessID: f.businessID, SequenceID: f.seq.ID, Size: 50})
	require.NoError(t, err)

	assert.Equal(t, int64(101), second.StartNumber)
	assert.Equal(t, int64(150), second.EndNumber)
}

func TestCreate_DefaultsApplied(t *testing.T) {
	f := newFixture(t)

	blk, err := f.svc.Create(context.Background(), CreateInput{
		BusinessID: f.businessID,
		SequenceID: f.seq.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(DefaultSize), blk.Size())
	assert.Equal(t, SystemDevice, blk.DeviceID)
}

func TestCreate_SizeBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, size := range []int64{MinSize - 1, MaxSize + 1, -5} {
		_, err := f.svc.Create(ctx, CreateInput{BusinessID: f.businessID, SequenceID: f.seq.ID, Size: size})
		require.Error(t, err, "size %d", size)

		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	}
}

func TestCreate_PointMustMatchSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blk, err := f.svc.Create(ctx, CreateInput{
		BusinessID: f.businessID,
		SequenceID: f.seq.ID,
		PointID:    f.seq.PointID,
		Size:       100,
	})
	require.NoError(t, err)
	assert.Equal(t, f.seq.PointID, blk.PointID)

	_, err = f.svc.Create(ctx, CreateInput{
		BusinessID: f.businessID,
		SequenceID: f.seq.ID,
		PointID:    id.New(),
		Size:       100,
	})
	assert.True(t, apperror.IsNotFound(err), "wrong point reads as missing sequence")
}

func TestCreate_ForeignSequence(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateInput{
		BusinessID: id.New(),
		SequenceID: f.seq.ID,
		Size:       100,
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestEnsureAvailable_CreatesBootstrapBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blk, created, err := f.svc.EnsureAvailable(ctx, f.businessID, f.seq.ID)
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, int64(BootstrapSize), blk.Size())
	assert.Equal(t, SystemDevice, blk.DeviceID)
	assert.Equal(t, StatusAvailable, blk.Status)
}

func TestEnsureAvailable_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, created, err := f.svc.EnsureAvailable(ctx, f.businessID, f.seq.ID)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := f.svc.EnsureAvailable(ctx, f.businessID, f.seq.ID)
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestEnsureAvailable_OpenBlockDoesNotCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, created, err := f.svc.EnsureAvailable(ctx, f.businessID, f.seq.ID)
	require.NoError(t, err)
	require.True(t, created)

	// One consume flips the bootstrap block to OPEN: it belongs to a
	// device now, so the next bootstrap must reserve a fresh one.
	_, err = f.svc.Consume(ctx, f.businessID, first.ID)
	require.NoError(t, err)

	second, created, err := f.svc.EnsureAvailable(ctx, f.businessID, f.seq.ID)
	require.NoError(t, err)

	assert.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, StatusAvailable, second.Status)
	assert.Equal(t, first.EndNumber+1, second.StartNumber, "new block continues past the open one")
}

func TestConsume_SequentialNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blk, err := f.svc.Create(ctx, CreateInput{BusinessID: f.businessID, SequenceID: f.seq.ID, Size: 10})
	require.NoError(t, err)

	for want := int64(1); want <= 3; want++ {
		issued, err := f.svc.Consume(ctx, f.businessID, blk.ID)
		require.NoError(t, err)
		assert.Equal(t, want, issued.Number)
	}

	issued, err := f.svc.Consume(ctx, f.businessID, blk.ID)
	require.NoError(t, err)
	assert.Equal(t, "001-001-000000004", issued.Formatted)
}

func TestConsume_ExhaustsAfterFullRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blk, err := f.svc.Create(ctx, CreateInput{BusinessID: f.businessID, SequenceID: f.seq.ID, Size: 10})
	require.NoError(t, err)

	// All 10 numbers of the block are issuable.
	for i := 0; i < 10; i++ {
		issued, err := f.svc.Consume(ctx, f.businessID, blk.ID)
		require.NoError(t, err)
		if i == 9 {
			assert.True(t, issued.Exhausted, "last number flags exhaustion")
		} else {
			assert.False(t, issued.Exhausted)
		}
	}

	// The 11th fails without issuing anything.
	_, err = f.svc.Consume(ctx, f.businessID, blk.ID)
	assert.True(t, apperror.IsExhaustedBlock(err))

	// And keeps failing the same way.
	_, err = f.svc.Consume(ctx, f.businessID, blk.ID)
	assert.True(t, apperror.IsExhaustedBlock(err))
}

func TestConsume_UnknownBlock(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Consume(context.Background(), f.businessID, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestConsume_ForeignBlockReadsAsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blk, err := f.svc.Create(ctx, CreateInput{BusinessID: f.businessID, SequenceID: f.seq.ID, Size: 10})
	require.NoError(t, err)

	_, err = f.svc.Consume(ctx, id.New(), blk.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestConsume_ConcurrentNoDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blk, err := f.svc.Create(ctx, CreateInput{BusinessID: f.businessID, SequenceID: f.seq.ID, Size: 100})
	require.NoError(t, err)

	const workers = 150 // more workers than numbers

	var (
		mu        sync.Mutex
		issued    []int64
		exhausted int
	)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := f.svc.Consume(ctx, f.businessID, blk.ID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if apperror.IsExhaustedBlock(err) {
					exhausted++
				} else {
					t.Error(err)
				}
				return
			}
			issued = append(issued, out.Number)
		}()
	}
	wg.Wait()

	require.Len(t, issued, 100, "exactly the block's numbers are issued")
	assert.Equal(t, workers-100, exhausted)

	seen := make(map[int64]bool)
	for _, n := range issued {
		require.False(t, seen[n], "number %d issued twice", n)
		require.GreaterOrEqual(t, n, int64(1))
		require.LessOrEqual(t, n, int64(100))
		seen[n] = true
	}
}

func TestOpen_Transitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blk, err := f.svc.Create(ctx, CreateInput{BusinessID: f.businessID, SequenceID: f.seq.ID, Size: 10})
	require.NoError(t, err)

	opened, err := f.svc.Open(ctx, f.businessID, blk.ID, "POS-7")
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, opened.Status)
	assert.Equal(t, "POS-7", opened.DeviceID)

	// Re-opening keeps the original device.
	again, err := f.svc.Open(ctx, f.businessID, blk.ID, "POS-8")
	require.NoError(t, err)
	assert.Equal(t, "POS-7", again.DeviceID)
}

func TestOpen_ExhaustedBlockFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blk, err := f.svc.Create(ctx, CreateInput{BusinessID: f.businessID, SequenceID: f.seq.ID, Size: 10})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := f.svc.Consume(ctx, f.businessID, blk.ID)
		require.NoError(t, err)
	}

	_, err = f.svc.Open(ctx, f.businessID, blk.ID, "POS-1")
	assert.True(t, apperror.IsExhaustedBlock(err))
}

func TestOpen_RequiresDevice(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Open(context.Background(), f.businessID, id.New(), "")
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}
