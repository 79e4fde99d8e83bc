package inventory

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// Service provides inventory item management and the movement audit
// trail. Order-driven deductions do not go through here; they run
// inside the order service's transaction scope.
type Service struct {
	itemRepo     inventory.Repository
	movementRepo inventory.StockMovementRepository
	logger       *zap.Logger
}

// NewService creates a new inventory Service
func NewService(
	itemRepo inventory.Repository,
	movementRepo inventory.StockMovementRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		logger:       logger,
	}
}

// CreateItem registers a new stock-keeping unit
func (s *Service) CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResponse, error) {
	exists, err := s.itemRepo.ExistsBySKU(ctx, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "SKU is already registered")
	}

	item, err := inventory.NewItem(req.SKU, req.Name, req.Quantity, req.MinQuantity,
		valueobject.NewMoneyOMR(req.UnitPrice))
	if err != nil {
		return nil, err
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("Inventory item created",
		zap.String("sku", item.SKU),
		zap.String("quantity", item.Quantity.String()),
	)

	resp := ToItemResponse(item)
	return &resp, nil
}

// GetByID returns a single inventory item
func (s *Service) GetByID(ctx context.Context, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// GetBySKU returns a single inventory item by SKU
func (s *Service) GetBySKU(ctx context.Context, sku string) (*ItemResponse, error) {
	item, err := s.itemRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// List returns inventory items with pagination
func (s *Service) List(ctx context.Context, filter ItemListFilter) ([]ItemResponse, int64, error) {
	sharedFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}

	var (
		items []inventory.Item
		err   error
	)
	if filter.BelowMinOnly {
		items, err = s.itemRepo.FindBelowMinQuantity(ctx, sharedFilter)
	} else {
		items, err = s.itemRepo.FindAll(ctx, sharedFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.itemRepo.Count(ctx, sharedFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToItemResponses(items), total, nil
}

// Restock brings replenishment stock in and records the movement
func (s *Service) Restock(ctx context.Context, itemID uuid.UUID, req RestockRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	before := item.Quantity
	if err := item.Restock(req.Quantity); err != nil {
		return nil, err
	}

	if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
		return nil, err
	}

	movement, err := inventory.NewStockMovement(item.ID, item.SKU,
		inventory.MovementTypeRestock, req.Quantity, before, item.Quantity)
	if err != nil {
		return nil, err
	}
	if req.Reason != "" {
		movement = movement.WithReason(req.Reason)
	}
	if req.OperatorID != nil {
		movement = movement.WithOperatorID(*req.OperatorID)
	}

	if err := s.movementRepo.Save(ctx, movement); err != nil {
		return nil, err
	}

	s.logger.Info("Inventory restocked",
		zap.String("sku", item.SKU),
		zap.String("quantity", req.Quantity.String()),
		zap.String("quantity_after", item.Quantity.String()),
	)

	resp := ToItemResponse(item)
	return &resp, nil
}

// ListMovements returns the movement audit trail for an item, newest first
func (s *Service) ListMovements(ctx context.Context, itemID uuid.UUID, page, pageSize int) ([]MovementResponse, error) {
	// Verify the item exists so an unknown ID reads as 404, not an empty list.
	if _, err := s.itemRepo.FindByID(ctx, itemID); err != nil {
		return nil, err
	}

	movements, err := s.movementRepo.FindByItem(ctx, itemID, shared.Filter{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(movements), nil
}
