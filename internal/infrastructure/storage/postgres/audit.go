package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "facturador/internal/core/context"
	"facturador/internal/core/id"
	"facturador/internal/domain/audit"
	"facturador/pkg/logger"
)

// CompressionAlgo specifies the compression algorithm used for payloads.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// compressThreshold is the payload size above which zstd kicks in.
const compressThreshold = 10 * 1024

// AuditRecorder implements audit.Recorder on the shared audit_log table.
// Recording never fails the caller: errors are logged and dropped, an
// issued number must not be lost because the trail hiccuped.
type AuditRecorder struct {
	txManager *TxManager
	encoder   *zstd.Encoder
	log       *logger.Logger
}

// NewAuditRecorder creates an audit recorder.
func NewAuditRecorder(txManager *TxManager, log *logger.Logger) (*AuditRecorder, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}

	return &AuditRecorder{
		txManager: txManager,
		encoder:   encoder,
		log:       log,
	}, nil
}

// Record implements audit.Recorder.
func (s *AuditRecorder) Record(ctx context.Context, entry audit.Entry) {
	if entry.UserID == "" {
		if user := appctx.GetUser(ctx); user != nil {
			entry.UserID = user.UserID
		}
	}
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var (
		payload    json.RawMessage
		compressed []byte
		algo       = CompressionNone
	)
	if entry.Payload != nil {
		raw, err := json.Marshal(entry.Payload)
		if err != nil {
			s.log.WithContext(ctx).Errorw("audit payload marshal failed",
				"entity_id", entry.EntityID.String(), "error", err)
			return
		}
		if len(raw) > compressThreshold {
			compressed = s.encoder.EncodeAll(raw, nil)
			algo = CompressionZstd
		} else {
			payload = raw
		}
	}

	const q = `
		INSERT INTO audit_log (
			id, business_id, entity_type, entity_id, action, user_id,
			payload, payload_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, q,
		entry.ID, entry.BusinessID, entry.EntityType, entry.EntityID,
		entry.Action, entry.UserID,
		payload, compressed, algo, entry.CreatedAt)
	if err != nil {
		s.log.WithContext(ctx).Errorw("audit record failed",
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID.String(),
			"action", string(entry.Action),
			"error", err)
	}
}
