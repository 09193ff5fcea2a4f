package shared

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// ApprovalAction enumerates approval log actions.
type ApprovalAction string

const (
	// ApprovalGrant marks an elevated action granted by the owner.
	ApprovalGrant ApprovalAction = "GRANT"
	// ApprovalDeny marks a rejected elevation attempt.
	ApprovalDeny ApprovalAction = "DENY"
)

// ApprovalLog represents a single approval record.
type ApprovalLog struct {
	ID      int64
	Module  string
	RefID   uuid.UUID
	ActorID int64
	Action  ApprovalAction
	Note    string
	At      time.Time
}

// OwnerApprover verifies the owner PIN gating elevated operations, for
// example completing a checkout whose net total is negative.
type OwnerApprover struct {
	pinHash string
}

// NewOwnerApprover constructs OwnerApprover from a bcrypt PIN hash.
func NewOwnerApprover(pinHash string) *OwnerApprover {
	return &OwnerApprover{pinHash: pinHash}
}

// Verify checks the supplied PIN against the configured hash.
func (a *OwnerApprover) Verify(pin string) error {
	if a == nil || a.pinHash == "" {
		return errors.New("owner approver not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.pinHash), []byte(pin)); err != nil {
		return ErrApprovalDenied
	}
	return nil
}

// ApprovalRecorder persists approval history.
type ApprovalRecorder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewApprovalRecorder constructs ApprovalRecorder.
func NewApprovalRecorder(pool *pgxpool.Pool, logger *slog.Logger) *ApprovalRecorder {
	return &ApprovalRecorder{pool: pool, logger: logger}
}

// Record writes approval entry to database.
func (r *ApprovalRecorder) Record(ctx context.Context, log ApprovalLog) error {
	if r == nil {
		return errors.New("approval recorder not initialised")
	}
	if log.Module == "" {
		return errors.New("approval module required")
	}
	if log.ActorID == 0 {
		return errors.New("approval actor required")
	}
	if log.RefID == uuid.Nil {
		return errors.New("approval ref id required")
	}
	if log.Action == "" {
		return errors.New("approval action required")
	}
	var at any
	if !log.At.IsZero() {
		at = log.At
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO approvals (module, ref_id, actor_id, action, note, at)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`, log.Module, log.RefID, log.ActorID, string(log.Action), log.Note, at)
	if err != nil {
		r.logger.Error("record approval", slog.Any("error", err))
		return err
	}
	return nil
}

// List returns approvals for module/ref.
func (r *ApprovalRecorder) List(ctx context.Context, module string, ref uuid.UUID) ([]ApprovalLog, error) {
	if r == nil {
		return nil, errors.New("approval recorder not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT id, module, ref_id, actor_id, action, note, at
FROM approvals WHERE module=$1 AND ref_id=$2 ORDER BY at ASC`, module, ref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	logs := []ApprovalLog{}
	for rows.Next() {
		var entry ApprovalLog
		var action string
		if err := rows.Scan(&entry.ID, &entry.Module, &entry.RefID, &entry.ActorID, &action, &entry.Note, &entry.At); err != nil {
			return nil, err
		}
		entry.Action = ApprovalAction(action)
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
