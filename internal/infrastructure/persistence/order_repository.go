package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/order"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order by its order number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds orders with filtering
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	var orderModels []models.OrderModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.OrderModel{}).Preload("Items"),
		filter,
	)

	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(orderModels), nil
}

// FindByCustomer finds orders for a customer
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	var orderModels []models.OrderModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.OrderModel{}).Preload("Items").
			Where("customer_id = ?", customerID),
		filter,
	)

	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(orderModels), nil
}

// FindByStatus finds orders in a given status
func (r *GormOrderRepository) FindByStatus(ctx context.Context, status order.Status, filter shared.Filter) ([]order.Order, error) {
	var orderModels []models.OrderModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.OrderModel{}).Preload("Items").
			Where("status = ?", status),
		filter,
	)

	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(orderModels), nil
}

// Save creates or updates an order along with its line items
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := model.Items
		model.Items = nil
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		return saveOrderItems(tx, model.ID, items)
	})
}

// SaveWithLock saves with optimistic locking (version check).
// The status write and the item writes share the surrounding transaction,
// so callers running inside a TransactionScope get all-or-nothing behavior.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := o.Version
		o.Version++
		o.UpdatedAt = time.Now()

		model := models.OrderModelFromDomain(o)
		items := model.Items
		model.Items = nil

		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", model.ID, currentVersion).
			Updates(map[string]interface{}{
				"customer_id":           model.CustomerID,
				"customer_name":         model.CustomerName,
				"customer_code":         model.CustomerCode,
				"vat_exempt":            model.VATExempt,
				"total_amount":          model.TotalAmount,
				"status":                model.Status,
				"remark":                model.Remark,
				"delivery_confirmed":    model.DeliveryConfirmed,
				"delivery_confirmed_by": model.DeliveryConfirmedBy,
				"delivery_confirmed_at": model.DeliveryConfirmedAt,
				"approved_at":           model.ApprovedAt,
				"rejected_at":           model.RejectedAt,
				"started_at":            model.StartedAt,
				"delivered_at":          model.DeliveredAt,
				"completed_at":          model.CompletedAt,
				"cancelled_at":          model.CancelledAt,
				"cancel_reason":         model.CancelReason,
				"reject_reason":         model.RejectReason,
				"version":               model.Version,
				"updated_at":            model.UpdatedAt,
			})
		if result.Error != nil {
			o.Version = currentVersion
			return result.Error
		}
		if result.RowsAffected == 0 {
			o.Version = currentVersion
			return shared.ErrConcurrencyConflict
		}

		return saveOrderItems(tx, model.ID, items)
	})
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.OrderModel{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts orders in a given status
func (r *GormOrderRepository) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByOrderNumber checks if an order number is already taken
func (r *GormOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateOrderNumber generates a unique order number.
// Format: ORD-YYYY-NNNNN (e.g., ORD-2026-00001)
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("ORD-%d-", year)

	var lastOrder models.OrderModel
	err := r.db.WithContext(ctx).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		First(&lastOrder).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastOrder.OrderNumber != "" {
		parts := strings.Split(lastOrder.OrderNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	orderNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	// Walk forward past any collisions from concurrent generation
	for i := 0; i < 100; i++ {
		exists, err := r.ExistsByOrderNumber(ctx, orderNumber)
		if err != nil {
			return "", err
		}
		if !exists {
			break
		}
		nextNum++
		orderNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
	}

	return orderNumber, nil
}

// applyFilter applies filter options to the query
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR customer_name ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// saveOrderItems replaces the persisted line items with the current set
func saveOrderItems(tx *gorm.DB, orderID uuid.UUID, items []models.OrderItemModel) error {
	if orderID == uuid.Nil {
		return nil
	}

	currentItemIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", orderID, currentItemIDs).
			Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", orderID).
			Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
	}

	for i := range items {
		items[i].OrderID = orderID
		if err := tx.Save(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func toDomainOrders(orderModels []models.OrderModel) []order.Order {
	orders := make([]order.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)

// GormApprovalRecordRepository implements order.ApprovalRecordRepository using GORM
type GormApprovalRecordRepository struct {
	db *gorm.DB
}

// NewGormApprovalRecordRepository creates a new GormApprovalRecordRepository
func NewGormApprovalRecordRepository(db *gorm.DB) *GormApprovalRecordRepository {
	return &GormApprovalRecordRepository{db: db}
}

// Save appends an approval record
func (r *GormApprovalRecordRepository) Save(ctx context.Context, record *order.ApprovalRecord) error {
	model := models.ApprovalRecordModelFromDomain(record)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByOrder returns all approval records for an order, oldest first
func (r *GormApprovalRecordRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.ApprovalRecord, error) {
	var recordModels []models.ApprovalRecordModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]order.ApprovalRecord, len(recordModels))
	for i := range recordModels {
		records[i] = *recordModels[i].ToDomain()
	}
	return records, nil
}

// Ensure GormApprovalRecordRepository implements order.ApprovalRecordRepository
var _ order.ApprovalRecordRepository = (*GormApprovalRecordRepository)(nil)
