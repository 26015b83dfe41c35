// internal/service/audit/audit.go
package audit

import (
	"context"
	"database/sql"

	"checkout-service/internal/domain/audit"

	"go.uber.org/zap"
)

type Store interface {
	Append(ctx context.Context, e *audit.Entry) error
	List(ctx context.Context, f *audit.ListFilters) ([]audit.Entry, int64, error)
}

// Recorder writes the append-only admin action trail. Failures are logged
// but never bubble up: an audit hiccup must not fail the action itself.
type Recorder struct {
	store  Store
	logger *zap.Logger
}

func NewRecorder(store Store, logger *zap.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

func (r *Recorder) Record(ctx context.Context, actorID int64, actorEmail, action string, targetType string, targetID int64, metadata map[string]interface{}) {
	e := &audit.Entry{
		ActorID:    actorID,
		ActorEmail: actorEmail,
		Action:     action,
		Metadata:   metadata,
	}
	if targetType != "" {
		e.TargetType = sql.NullString{String: targetType, Valid: true}
	}
	if targetID != 0 {
		e.TargetID = sql.NullInt64{Int64: targetID, Valid: true}
	}

	if err := r.store.Append(ctx, e); err != nil {
		r.logger.Error("failed to append audit entry",
			zap.String("action", action),
			zap.Int64("actor_id", actorID),
			zap.Error(err),
		)
	}
}

func (r *Recorder) List(ctx context.Context, f *audit.ListFilters) (*audit.ListResponse, error) {
	if f == nil {
		f = &audit.ListFilters{}
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 50
	}
	if f.PageSize > 200 {
		f.PageSize = 200
	}

	entries, total, err := r.store.List(ctx, f)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
	return &audit.ListResponse{
		Entries:    entries,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages,
	}, nil
}
