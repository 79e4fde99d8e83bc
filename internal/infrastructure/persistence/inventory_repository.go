package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
)

// GormInventoryRepository implements inventory.Repository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// FindByID finds an item by ID
func (r *GormInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySKU finds an item by SKU
func (r *GormInventoryRepository) FindBySKU(ctx context.Context, sku string) (*inventory.Item, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).First(&model, "sku = ?", sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySKUs finds all items matching the given SKUs
func (r *GormInventoryRepository) FindBySKUs(ctx context.Context, skus []string) ([]inventory.Item, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	var itemModels []models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("sku IN ?", skus).
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return toDomainItems(itemModels), nil
}

// FindBySKUsForUpdate loads items by SKU with row-level locks. SKUs are
// sorted before locking so concurrent deductions acquire rows in a
// consistent order and cannot deadlock each other.
func (r *GormInventoryRepository) FindBySKUsForUpdate(ctx context.Context, skus []string) ([]inventory.Item, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	var itemModels []models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sku IN ?", skus).
		Order("sku ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return toDomainItems(itemModels), nil
}

// FindAll finds items with filtering
func (r *GormInventoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Item, error) {
	var itemModels []models.InventoryItemModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.InventoryItemModel{}),
		filter,
	)

	if err := query.Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return toDomainItems(itemModels), nil
}

// FindBelowMinQuantity finds items at or below their low-stock threshold
func (r *GormInventoryRepository) FindBelowMinQuantity(ctx context.Context, filter shared.Filter) ([]inventory.Item, error) {
	var itemModels []models.InventoryItemModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.InventoryItemModel{}).
			Where("min_quantity > 0 AND quantity <= min_quantity"),
		filter,
	)

	if err := query.Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return toDomainItems(itemModels), nil
}

// Save creates or updates an item
func (r *GormInventoryRepository) Save(ctx context.Context, item *inventory.Item) error {
	model := models.InventoryItemModelFromDomain(item)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormInventoryRepository) SaveWithLock(ctx context.Context, item *inventory.Item) error {
	currentVersion := item.Version
	item.Version++
	item.UpdatedAt = time.Now()

	model := models.InventoryItemModelFromDomain(item)

	result := r.db.WithContext(ctx).Model(&models.InventoryItemModel{}).
		Where("id = ? AND version = ?", model.ID, currentVersion).
		Updates(map[string]interface{}{
			"sku":               model.SKU,
			"name":              model.Name,
			"quantity":          model.Quantity,
			"consumed_quantity": model.ConsumedQuantity,
			"min_quantity":      model.MinQuantity,
			"unit_price":        model.UnitPrice,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})
	if result.Error != nil {
		item.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		item.Version = currentVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// DeductQuantity atomically deducts stock with a conditional update.
// The quantity >= requested guard in the WHERE clause makes the check
// and the write a single statement, so two concurrent deductions can
// never both succeed against the same units of stock.
func (r *GormInventoryRepository) DeductQuantity(ctx context.Context, sku string, quantity decimal.Decimal) (*inventory.Item, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Deduction quantity must be positive")
	}

	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.InventoryItemModel{}).
		Where("sku = ? AND quantity >= ?", sku, quantity).
		Updates(map[string]interface{}{
			"quantity":          gorm.Expr("quantity - ?", quantity),
			"consumed_quantity": gorm.Expr("consumed_quantity + ?", quantity),
			"updated_at":        now,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// Either the SKU does not exist or stock does not cover the
		// request. Reload to tell the two apart.
		item, err := r.FindBySKU(ctx, sku)
		if err != nil {
			return nil, err
		}
		return nil, &inventory.InsufficientStockError{
			SKU:       sku,
			Available: item.Quantity,
			Requested: quantity,
		}
	}

	return r.FindBySKU(ctx, sku)
}

// Count counts items matching the filter
func (r *GormInventoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.InventoryItemModel{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsBySKU checks if a SKU is already registered
func (r *GormInventoryRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.InventoryItemModel{}).
		Where("sku = ?", sku).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormInventoryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, InventoryItemSortFields, "sku")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormInventoryRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("sku ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}
	return query
}

func toDomainItems(itemModels []models.InventoryItemModel) []inventory.Item {
	items := make([]inventory.Item, len(itemModels))
	for i := range itemModels {
		items[i] = *itemModels[i].ToDomain()
	}
	return items
}

// Ensure GormInventoryRepository implements inventory.Repository
var _ inventory.Repository = (*GormInventoryRepository)(nil)

// GormStockMovementRepository implements inventory.StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Save appends a stock movement
func (r *GormStockMovementRepository) Save(ctx context.Context, movement *inventory.StockMovement) error {
	model := models.StockMovementModelFromDomain(movement)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveAll appends multiple movements
func (r *GormStockMovementRepository) SaveAll(ctx context.Context, movements []*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	movementModels := make([]*models.StockMovementModel, len(movements))
	for i, movement := range movements {
		movementModels[i] = models.StockMovementModelFromDomain(movement)
	}
	return r.db.WithContext(ctx).Create(&movementModels).Error
}

// FindByItem returns movements for an item, newest first
func (r *GormStockMovementRepository) FindByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movementModels []models.StockMovementModel
	query := r.db.WithContext(ctx).
		Where("item_id = ?", itemID)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, StockMovementSortFields, "moved_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	if err := query.Order(orderBy + " " + orderDir).
		Find(&movementModels).Error; err != nil {
		return nil, err
	}
	return toDomainMovements(movementModels), nil
}

// FindByOrder returns movements caused by an order
func (r *GormStockMovementRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]inventory.StockMovement, error) {
	var movementModels []models.StockMovementModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("moved_at ASC").
		Find(&movementModels).Error; err != nil {
		return nil, err
	}
	return toDomainMovements(movementModels), nil
}

func toDomainMovements(movementModels []models.StockMovementModel) []inventory.StockMovement {
	movements := make([]inventory.StockMovement, len(movementModels))
	for i := range movementModels {
		movements[i] = *movementModels[i].ToDomain()
	}
	return movements
}

// Ensure GormStockMovementRepository implements inventory.StockMovementRepository
var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
