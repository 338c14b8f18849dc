package model

import (
	"time"

	"gorm.io/datatypes"
)

// SyncRun records the outcome of one sync invocation.
type SyncRun struct {
	ID         uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID    string         `gorm:"column:run_uuid;type:varchar(64);uniqueIndex;not null"`
	Kind       string         `gorm:"column:kind;type:varchar(16);not null"` // full/division/team
	Success    bool           `gorm:"column:success;type:boolean;default:false"`
	StartedAt  time.Time      `gorm:"column:started_at;type:timestamp;not null"`
	FinishedAt time.Time      `gorm:"column:finished_at;type:timestamp;not null"`
	DurationMs int64          `gorm:"column:duration_ms;type:bigint;default:0"`
	Counts     datatypes.JSON `gorm:"column:counts;type:jsonb"`
	Errors     datatypes.JSON `gorm:"column:errors;type:jsonb"`
	CreatedAt  time.Time      `gorm:"column:created_at;type:timestamp;default:now()"`
}

func (SyncRun) TableName() string { return "sync_runs" }
