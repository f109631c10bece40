// Package sequence_repo provides PostgreSQL storage for sequences and
// allocation blocks. The hot-path statements (counter upsert, range
// reservation, number consumption) are single atomic UPDATEs: correctness
// under concurrency comes from the database, not application locks.
package sequence_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"facturador/internal/core/apperror"
	"facturador/internal/core/id"
	"facturador/internal/domain/sequence"
	"facturador/internal/infrastructure/storage/postgres"
)

const sequenceTable = "sequences"

var sequenceCols = []string{
	"id", "business_id", "branch_id", "point_id", "doc_type",
	"series", "current_number", "padding", "created_at",
}

// SequenceRepo implements sequence.Repository.
type SequenceRepo struct {
	txm *postgres.TxManager
}

// NewSequenceRepo creates a new sequence repository.
func NewSequenceRepo(txm *postgres.TxManager) *SequenceRepo {
	return &SequenceRepo{txm: txm}
}

func (r *SequenceRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetOrCreate inserts the sequence or returns the existing row for the same
// (business, point, doc type). One round trip; concurrent callers race on
// the unique index and losers read the winner's row. The no-op DO UPDATE
// makes the conflicting row visible to RETURNING; xmax distinguishes a
// fresh insert from an existing row.
func (r *SequenceRepo) GetOrCreate(ctx context.Context, seq *sequence.Sequence) (*sequence.Sequence, bool, error) {
	const q = `
		INSERT INTO sequences
			(id, business_id, branch_id, point_id, doc_type, series, current_number, padding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (business_id, point_id, doc_type)
		DO UPDATE SET series = sequences.series
		RETURNING id, business_id, branch_id, point_id, doc_type,
			series, current_number, padding, created_at,
			(xmax = 0) AS inserted`

	var row struct {
		sequence.Sequence
		Inserted bool `db:"inserted"`
	}

	err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, q,
		seq.ID, seq.BusinessID, seq.BranchID, seq.PointID, seq.DocType,
		seq.Series, seq.CurrentNumber, seq.Padding, seq.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("upsert sequence: %w", err)
	}

	s := row.Sequence
	return &s, row.Inserted, nil
}

// GetByID retrieves a sequence by primary key.
func (r *SequenceRepo) GetByID(ctx context.Context, sequenceID id.ID) (*sequence.Sequence, error) {
	q := r.builder().
		Select(sequenceCols...).
		From(sequenceTable).
		Where(squirrel.Eq{"id": sequenceID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s sequence.Sequence
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sequence", sequenceID.String())
		}
		return nil, fmt.Errorf("get sequence: %w", err)
	}

	return &s, nil
}

// ListByBusiness returns all sequences of a business, oldest first.
func (r *SequenceRepo) ListByBusiness(ctx context.Context, businessID id.ID) ([]*sequence.Sequence, error) {
	q := r.builder().
		Select(sequenceCols...).
		From(sequenceTable).
		Where(squirrel.Eq{"business_id": businessID}).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*sequence.Sequence
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list sequences: %w", err)
	}

	return items, nil
}

// ReserveRange atomically advances the counter by size and returns the new
// high-water mark. Concurrent reservations serialize on the row lock, so
// two callers always get disjoint ranges.
func (r *SequenceRepo) ReserveRange(ctx context.Context, sequenceID id.ID, size int64) (int64, error) {
	const q = `
		UPDATE sequences
		SET current_number = current_number + $2
		WHERE id = $1
		RETURNING current_number`

	var mark int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, q, sequenceID, size).Scan(&mark)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperror.NewNotFound("sequence", sequenceID.String())
	}
	if err != nil {
		return 0, fmt.Errorf("reserve range: %w", err)
	}

	return mark, nil
}
