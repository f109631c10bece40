package sequence_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"facturador/internal/core/apperror"
	"facturador/internal/core/id"
	"facturador/internal/domain/block"
	"facturador/internal/infrastructure/storage/postgres"
)

const blockTable = "sequence_blocks"

var blockCols = []string{
	"id", "business_id", "sequence_id", "point_id",
	"start_number", "end_number", "next_number",
	"status", "device_id", "created_at",
}

// BlockRepo implements block.Repository.
type BlockRepo struct {
	txm *postgres.TxManager
}

// NewBlockRepo creates a new block repository.
func NewBlockRepo(txm *postgres.TxManager) *BlockRepo {
	return &BlockRepo{txm: txm}
}

func (r *BlockRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Insert stores a new block.
func (r *BlockRepo) Insert(ctx context.Context, b *block.Block) error {
	q := r.builder().
		Insert(blockTable).
		Columns(blockCols...).
		Values(b.ID, b.BusinessID, b.SequenceID, b.PointID,
			b.StartNumber, b.EndNumber, b.NextNumber,
			b.Status, b.DeviceID, b.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewNotFound("sequence", b.SequenceID.String())
		}
		return fmt.Errorf("insert block: %w", err)
	}

	return nil
}

// GetOwned retrieves a block only if it belongs to the business.
func (r *BlockRepo) GetOwned(ctx context.Context, businessID, blockID id.ID) (*block.Block, error) {
	q := r.builder().
		Select(blockCols...).
		From(blockTable).
		Where(squirrel.Eq{"id": blockID}).
		Where(squirrel.Eq{"business_id": businessID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b block.Block
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("block", blockID.String())
		}
		return nil, fmt.Errorf("get block: %w", err)
	}

	return &b, nil
}

// FindAvailable returns the oldest AVAILABLE block of the sequence. OPEN
// blocks do not count: they belong to a device already, so bootstrap must
// set aside a fresh one.
func (r *BlockRepo) FindAvailable(ctx context.Context, businessID, sequenceID id.ID) (*block.Block, error) {
	q := r.builder().
		Select(blockCols...).
		From(blockTable).
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Eq{"sequence_id": sequenceID}).
		Where(squirrel.Eq{"status": block.StatusAvailable}).
		OrderBy("created_at ASC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b block.Block
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("available block", sequenceID.String())
		}
		return nil, fmt.Errorf("find available block: %w", err)
	}

	return &b, nil
}

// ConsumeNext atomically takes the next number from the block. The guard
// next_number <= end_number makes over-consumption impossible: once the
// range is spent the WHERE matches nothing and no number is issued. The
// same statement flips the status, OPEN on first consumption, EXHAUSTED on
// the last.
func (r *BlockRepo) ConsumeNext(ctx context.Context, businessID, blockID id.ID) (block.Consumed, bool, error) {
	const q = `
		UPDATE sequence_blocks
		SET next_number = next_number + 1,
			status = CASE
				WHEN next_number + 1 > end_number THEN 'EXHAUSTED'
				ELSE 'OPEN'
			END
		WHERE id = $1 AND business_id = $2 AND next_number <= end_number
		RETURNING next_number - 1 AS number, sequence_id, status`

	var (
		consumed block.Consumed
		status   block.Status
	)
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, q, blockID, businessID).
		Scan(&consumed.Number, &consumed.SequenceID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return block.Consumed{}, false, nil
	}
	if err != nil {
		return block.Consumed{}, false, fmt.Errorf("consume next: %w", err)
	}

	consumed.Exhausted = status == block.StatusExhausted
	return consumed, true, nil
}

// Open marks an AVAILABLE block as OPEN and assigns the device. Already
// open blocks keep their device.
func (r *BlockRepo) Open(ctx context.Context, businessID, blockID id.ID, deviceID string) error {
	q := r.builder().
		Update(blockTable).
		Set("status", block.StatusOpen).
		Set("device_id", deviceID).
		Where(squirrel.Eq{"id": blockID}).
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Eq{"status": block.StatusAvailable})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("open block: %w", err)
	}

	return nil
}

// ListBySequence returns all blocks of a sequence, oldest first.
func (r *BlockRepo) ListBySequence(ctx context.Context, businessID, sequenceID id.ID) ([]*block.Block, error) {
	q := r.builder().
		Select(blockCols...).
		From(blockTable).
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Eq{"sequence_id": sequenceID}).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*block.Block
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}

	return items, nil
}
