package service

import (
	"context"
	"encoding/json"

	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/model"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/repository"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/logger"

	"go.uber.org/zap"
)

// Recorder appends audit entries. Recording is best-effort: a failed
// write is logged and swallowed so a logging outage never blocks a
// payment or download.
type Recorder interface {
	Record(ctx context.Context, action, entityType, entityID, actorID string, meta map[string]interface{})
	GetList(ctx context.Context, offset, limit int) ([]model.Entry, int64, error)
}

type recorder struct {
	repo repository.AuditRepository
}

func NewRecorder(repo repository.AuditRepository) Recorder {
	return &recorder{repo: repo}
}

func (r *recorder) Record(ctx context.Context, action, entityType, entityID, actorID string, meta map[string]interface{}) {
	var raw json.RawMessage
	if len(meta) > 0 {
		if data, err := json.Marshal(meta); err == nil {
			raw = data
		}
	}

	entry := &model.Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Metadata:   raw,
	}

	if err := r.repo.Create(ctx, entry); err != nil {
		if logger.Log != nil {
			logger.Log.Error("audit write failed",
				zap.String("action", action),
				zap.String("entity_type", entityType),
				zap.String("entity_id", entityID),
				zap.Error(err),
			)
		}
	}
}

func (r *recorder) GetList(ctx context.Context, offset, limit int) ([]model.Entry, int64, error) {
	return r.repo.GetList(ctx, offset, limit)
}
