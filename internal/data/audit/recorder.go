// Package audit records served predictions to the history store and the
// analytics sink. Both are optional and failures never reach the caller.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/eduymaz/aller-mind/internal/data/analytics"
	"github.com/eduymaz/aller-mind/internal/data/repos/predictions"
	"github.com/eduymaz/aller-mind/internal/domain/history"
	"github.com/eduymaz/aller-mind/internal/pkg/dbctx"
	"github.com/eduymaz/aller-mind/internal/platform/logger"
)

type Recorder struct {
	repo predictions.PredictionRecordRepo
	sink analytics.Sink
	log  *logger.Logger
}

// NewRecorder accepts nil repo or sink to disable that destination.
func NewRecorder(repo predictions.PredictionRecordRepo, sink analytics.Sink, baseLog *logger.Logger) *Recorder {
	return &Recorder{repo: repo, sink: sink, log: baseLog.With("component", "AuditRecorder")}
}

// Entry is one served prediction before it becomes a record.
type Entry struct {
	Kind       history.Kind
	GroupID    int
	SafeHours  float64
	RiskScore  float64
	RiskLevel  string
	Confidence float64
	ModelsUsed int
	ClientID   string
	RequestID  string
	Payload    any
}

func (r *Recorder) HistoryEnabled() bool { return r != nil && r.repo != nil }

// Record stores e and returns the stored record, or nil when nothing is
// configured.
func (r *Recorder) Record(ctx context.Context, e Entry) *history.PredictionRecord {
	if r == nil || (r.repo == nil && r.sink == nil) {
		return nil
	}
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		r.log.Warn("audit payload not encodable", "kind", e.Kind, "error", err)
		payload = []byte("{}")
	}
	rec := &history.PredictionRecord{
		ID:         uuid.New(),
		Kind:       string(e.Kind),
		GroupID:    e.GroupID,
		SafeHours:  e.SafeHours,
		RiskScore:  e.RiskScore,
		RiskLevel:  e.RiskLevel,
		Confidence: e.Confidence,
		ModelsUsed: e.ModelsUsed,
		ClientID:   e.ClientID,
		RequestID:  e.RequestID,
		Payload:    datatypes.JSON(payload),
		CreatedAt:  time.Now().UTC(),
	}

	if r.repo != nil {
		if _, err := r.repo.Create(dbctx.Of(ctx), []*history.PredictionRecord{rec}); err != nil {
			r.log.Warn("history write failed", "kind", e.Kind, "request_id", e.RequestID, "error", err)
		}
	}
	if r.sink != nil {
		if err := r.sink.Record(ctx, rec); err != nil {
			r.log.Warn("analytics write failed", "kind", e.Kind, "request_id", e.RequestID, "error", err)
		}
	}
	return rec
}

func (r *Recorder) Recent(ctx context.Context, filter history.Filter) ([]*history.PredictionRecord, error) {
	if !r.HistoryEnabled() {
		return nil, nil
	}
	return r.repo.ListRecent(dbctx.Of(ctx), filter)
}

func (r *Recorder) LevelCounts(ctx context.Context, since time.Time) (map[string]int64, error) {
	if !r.HistoryEnabled() {
		return map[string]int64{}, nil
	}
	return r.repo.CountByLevel(dbctx.Of(ctx), since)
}
