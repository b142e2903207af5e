package history

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Kind string

const (
	KindGroup    Kind = "group"
	KindEnsemble Kind = "ensemble"
	KindAssess   Kind = "assess"
	KindBatch    Kind = "batch"
)

// PredictionRecord is an append-only audit row for one served prediction.
// Payload holds the full response body.
type PredictionRecord struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Kind       string         `gorm:"column:kind;not null;index" json:"kind"`
	GroupID    int            `gorm:"column:group_id;not null;default:0;index" json:"group_id,omitempty"`
	SafeHours  float64        `gorm:"column:safe_hours;not null" json:"safe_hours"`
	RiskScore  float64        `gorm:"column:risk_score;not null" json:"risk_score"`
	RiskLevel  string         `gorm:"column:risk_level;not null;index" json:"risk_level"`
	Confidence float64        `gorm:"column:confidence;not null;default:0" json:"confidence,omitempty"`
	ModelsUsed int            `gorm:"column:models_used;not null;default:0" json:"models_used,omitempty"`
	ClientID   string         `gorm:"column:client_id;index" json:"client_id,omitempty"`
	RequestID  string         `gorm:"column:request_id;index" json:"request_id,omitempty"`
	Payload    datatypes.JSON `gorm:"column:payload" json:"payload"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"created_at"`
}

func (PredictionRecord) TableName() string { return "prediction_record" }

func (r *PredictionRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

// Filter narrows a history listing. Zero fields match everything.
type Filter struct {
	Kind     string
	GroupID  int
	ClientID string
	Since    time.Time
	Limit    int
}
