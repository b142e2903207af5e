package predictions

import (
	"time"

	"gorm.io/gorm"

	"github.com/eduymaz/aller-mind/internal/domain/history"
	"github.com/eduymaz/aller-mind/internal/pkg/dbctx"
	"github.com/eduymaz/aller-mind/internal/platform/logger"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

type PredictionRecordRepo interface {
	Create(dbc dbctx.Context, records []*history.PredictionRecord) ([]*history.PredictionRecord, error)
	ListRecent(dbc dbctx.Context, filter history.Filter) ([]*history.PredictionRecord, error)
	CountByLevel(dbc dbctx.Context, since time.Time) (map[string]int64, error)
	DeleteOlderThan(dbc dbctx.Context, cutoff time.Time) (int64, error)
}

type predictionRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPredictionRecordRepo(db *gorm.DB, baseLog *logger.Logger) PredictionRecordRepo {
	return &predictionRecordRepo{
		db:  db,
		log: baseLog.With("repo", "PredictionRecordRepo"),
	}
}

func (r *predictionRecordRepo) Create(dbc dbctx.Context, records []*history.PredictionRecord) ([]*history.PredictionRecord, error) {
	if len(records) == 0 {
		return []*history.PredictionRecord{}, nil
	}
	if err := dbc.DB(r.db).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *predictionRecordRepo) ListRecent(dbc dbctx.Context, filter history.Filter) ([]*history.PredictionRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	q := dbc.DB(r.db).Model(&history.PredictionRecord{})
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.GroupID != 0 {
		q = q.Where("group_id = ?", filter.GroupID)
	}
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if !filter.Since.IsZero() {
		q = q.Where("created_at >= ?", filter.Since.UTC())
	}

	var out []*history.PredictionRecord
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *predictionRecordRepo) CountByLevel(dbc dbctx.Context, since time.Time) (map[string]int64, error) {
	type row struct {
		RiskLevel string
		N         int64
	}
	var rows []row
	q := dbc.DB(r.db).Model(&history.PredictionRecord{}).
		Select("risk_level, COUNT(*) AS n").
		Group("risk_level")
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since.UTC())
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.RiskLevel] = rw.N
	}
	return out, nil
}

func (r *predictionRecordRepo) DeleteOlderThan(dbc dbctx.Context, cutoff time.Time) (int64, error) {
	if cutoff.IsZero() {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Where("created_at < ?", cutoff.UTC()).
		Delete(&history.PredictionRecord{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		r.log.Info("pruned prediction history", "deleted", res.RowsAffected, "cutoff", cutoff.UTC())
	}
	return res.RowsAffected, nil
}
