package models

import "time"

// Pricing run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// PricingRun is one batch (or single-product) pricing run, recorded at
// start and finalized with its counts when the run ends.
type PricingRun struct {
	ID         string     `gorm:"column:id;primaryKey" json:"id"`
	Scope      string     `gorm:"column:scope;not null" json:"scope"`
	Status     string     `gorm:"column:status;not null" json:"status"`
	Successful int        `gorm:"column:successful;not null;default:0" json:"successful"`
	Failed     int        `gorm:"column:failed;not null;default:0" json:"failed"`
	Skipped    int        `gorm:"column:skipped;not null;default:0" json:"skipped"`
	StartedAt  time.Time  `gorm:"column:started_at;autoCreateTime" json:"started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
}
