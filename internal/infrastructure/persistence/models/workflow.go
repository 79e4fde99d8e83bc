package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkflowConfigModel stores the approval policy. A single row keyed by
// name holds the current configuration; updates overwrite in place.
type WorkflowConfigModel struct {
	Name                 string           `gorm:"type:varchar(50);primary_key"`
	RequireApproval      bool             `gorm:"not null;default:false"`
	AutoApproveThreshold *decimal.Decimal `gorm:"type:decimal(18,3)"`
	UpdatedAt            time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WorkflowConfigModel) TableName() string {
	return "workflow_configs"
}
