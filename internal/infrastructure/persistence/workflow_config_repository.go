package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wms/backend/internal/domain/approval"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// orderApprovalConfigName keys the single approval policy row.
const orderApprovalConfigName = "order_approval"

// GormWorkflowConfigStore implements approval.ConfigStore backed by the
// workflow_configs table. The store holds a fallback configuration
// (seeded from application config) that is returned, and persisted,
// when no row exists yet.
type GormWorkflowConfigStore struct {
	db       *gorm.DB
	fallback approval.Config
}

// NewGormWorkflowConfigStore creates a new GormWorkflowConfigStore
func NewGormWorkflowConfigStore(db *gorm.DB, fallback approval.Config) *GormWorkflowConfigStore {
	return &GormWorkflowConfigStore{db: db, fallback: fallback}
}

// Get returns the approval configuration for a customer. The store
// keeps a single global policy row, so the customer is not consulted.
func (s *GormWorkflowConfigStore) Get(ctx context.Context, _ uuid.UUID) (approval.Config, error) {
	var model models.WorkflowConfigModel
	err := s.db.WithContext(ctx).
		First(&model, "name = ?", orderApprovalConfigName).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.fallback, nil
		}
		return approval.Config{}, err
	}
	return approval.Config{
		RequireApproval:      model.RequireApproval,
		AutoApproveThreshold: model.AutoApproveThreshold,
	}, nil
}

// Update replaces the approval configuration
func (s *GormWorkflowConfigStore) Update(ctx context.Context, cfg approval.Config) error {
	model := models.WorkflowConfigModel{
		Name:                 orderApprovalConfigName,
		RequireApproval:      cfg.RequireApproval,
		AutoApproveThreshold: cfg.AutoApproveThreshold,
		UpdatedAt:            time.Now(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			UpdateAll: true,
		}).
		Create(&model).Error
}

// Seed persists the fallback configuration if no row exists yet.
// Called once at startup; an existing row always wins.
func (s *GormWorkflowConfigStore) Seed(ctx context.Context) error {
	model := models.WorkflowConfigModel{
		Name:                 orderApprovalConfigName,
		RequireApproval:      s.fallback.RequireApproval,
		AutoApproveThreshold: s.fallback.AutoApproveThreshold,
		UpdatedAt:            time.Now(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&model).Error
}

// Ensure GormWorkflowConfigStore implements approval.ConfigStore
var _ approval.ConfigStore = (*GormWorkflowConfigStore)(nil)
