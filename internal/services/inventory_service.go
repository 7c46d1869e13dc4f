package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/validator"
)

type inventoryService struct {
	repo          repositories.Repository
	notifications NotificationEventService
	audit         *auditRecorder
	logger        *slog.Logger
	opLogger      *ServiceLogger
	validator     *validator.Validator
}

func NewInventoryService(
	repo repositories.Repository,
	notifications NotificationEventService,
	logger *slog.Logger,
	validator *validator.Validator,
) InventoryService {
	opLogger := NewServiceLogger(logger, LogConfig{Service: "inventory", Component: "stock"})
	return &inventoryService{
		repo:          repo,
		notifications: notifications,
		audit:         newAuditRecorder(repo, opLogger),
		logger:        logger,
		opLogger:      opLogger,
		validator:     validator,
	}
}

func (s *inventoryService) CreateItem(ctx context.Context, req *InventoryItemRequest) (*models.InventoryItem, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	item := &models.InventoryItem{
		Name:     strings.TrimSpace(req.Name),
		SKU:      req.SKU,
		Category: req.Category,
		MinStock: req.MinStock,
	}
	if item.SKU != nil && strings.TrimSpace(*item.SKU) == "" {
		item.SKU = nil
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Inventory().CreateItem(ctx, tx, item); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: sku already in use", ErrConflict)
			}
			return fmt.Errorf("failed to create item: %w", err)
		}
		return s.repo.Inventory().SaveLevel(ctx, tx, &models.StockLevel{
			ItemID: item.ID,
			Alert:  item.MinStock > 0,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetItem(ctx, item.ID)
}

func (s *inventoryService) GetItem(ctx context.Context, id uint) (*models.InventoryItem, error) {
	item, err := s.repo.Inventory().GetItem(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (s *inventoryService) ListItems(ctx context.Context, filters repositories.InventoryFilters) ([]*models.InventoryItem, error) {
	items, err := s.repo.Inventory().ListItems(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// RecordMove stores the move and recomputes the item's level from the full
// move history while holding the item lock. A move that would take the
// stock below zero is rejected.
func (s *inventoryService) RecordMove(ctx context.Context, req *StockMoveRequest, actor Actor) (*StockMoveResult, error) {
	op := s.opLogger.WithOperation(ctx, "record_stock_move", actor.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		item        *models.InventoryItem
		level       *models.StockLevel
		alertRaised bool
	)
	move := &models.StockMove{
		ItemID:      req.ItemID,
		Qty:         req.Qty,
		Type:        req.Type,
		Reference:   strings.TrimSpace(req.Reference),
		CreatedByID: actor.userIDPtr(),
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		item, err = s.lockItem(ctx, tx, req.ItemID)
		if err != nil {
			return err
		}

		current, err := s.repo.Inventory().StockFromMoves(ctx, tx, item.ID, nil)
		if err != nil {
			return fmt.Errorf("failed to compute stock: %w", err)
		}
		if current+move.Delta() < 0 {
			return fmt.Errorf("%w: %s has %d in stock", ErrNegativeStock, item.Name, current)
		}

		if err := s.repo.Inventory().CreateMove(ctx, tx, move); err != nil {
			return fmt.Errorf("failed to create move: %w", err)
		}

		level, alertRaised, err = s.saveLevel(ctx, tx, item, current+move.Delta())
		if err != nil {
			return err
		}

		return s.audit.Record(ctx, tx, actor, AuditEvent{
			Type:         models.AuditStockMoveRecorded,
			ResourceID:   move.ID,
			ResourceType: "stock_move",
			Action:       "record",
			OldValue:     current,
			NewValue:     level.Quantity,
			Metadata:     map[string]interface{}{"item_id": item.ID, "type": move.Type, "qty": move.Qty},
		})
	})
	op.LogResult(move.ID, "stock_move", err)
	if err != nil {
		return nil, err
	}

	if alertRaised {
		logNotifyError(s.logger, "stock_alert", s.notifications.NotifyStockAlert(ctx, item, level))
	}
	return &StockMoveResult{Move: move, Level: level}, nil
}

// DeleteMove removes a move and recomputes the level without it
func (s *inventoryService) DeleteMove(ctx context.Context, moveID uint, actor Actor) (*models.StockLevel, error) {
	op := s.opLogger.WithOperation(ctx, "delete_stock_move", actor.UserID)

	var (
		item        *models.InventoryItem
		level       *models.StockLevel
		alertRaised bool
	)
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		move, err := s.repo.Inventory().GetMove(ctx, tx, moveID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrStockMoveNotFound
			}
			return fmt.Errorf("failed to get move: %w", err)
		}

		item, err = s.lockItem(ctx, tx, move.ItemID)
		if err != nil {
			return err
		}

		remaining, err := s.repo.Inventory().StockFromMoves(ctx, tx, item.ID, &move.ID)
		if err != nil {
			return fmt.Errorf("failed to compute stock: %w", err)
		}
		if remaining < 0 {
			return fmt.Errorf("%w: removing the move leaves %s at %d", ErrNegativeStock, item.Name, remaining)
		}

		if err := s.repo.Inventory().DeleteMove(ctx, tx, move.ID); err != nil {
			return fmt.Errorf("failed to delete move: %w", err)
		}

		level, alertRaised, err = s.saveLevel(ctx, tx, item, remaining)
		if err != nil {
			return err
		}

		return s.audit.Record(ctx, tx, actor, AuditEvent{
			Type:         models.AuditStockMoveDeleted,
			ResourceID:   move.ID,
			ResourceType: "stock_move",
			Action:       "delete",
			OldValue:     move.Qty,
			NewValue:     level.Quantity,
			Metadata:     map[string]interface{}{"item_id": item.ID, "type": move.Type},
		})
	})
	op.LogResult(moveID, "stock_move", err)
	if err != nil {
		return nil, err
	}

	if alertRaised {
		logNotifyError(s.logger, "stock_alert", s.notifications.NotifyStockAlert(ctx, item, level))
	}
	return level, nil
}

func (s *inventoryService) ListMoves(ctx context.Context, itemID uint) ([]*models.StockMove, error) {
	if _, err := s.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	moves, err := s.repo.Inventory().ListMoves(ctx, nil, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list moves: %w", err)
	}
	return moves, nil
}

func (s *inventoryService) lockItem(ctx context.Context, tx *gorm.DB, id uint) (*models.InventoryItem, error) {
	item, err := s.repo.Inventory().LockItem(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// saveLevel writes the cached level and reports whether the alert flag was
// switched on by this write.
func (s *inventoryService) saveLevel(ctx context.Context, tx *gorm.DB, item *models.InventoryItem, quantity int) (*models.StockLevel, bool, error) {
	level, err := s.repo.Inventory().GetLevel(ctx, tx, item.ID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return nil, false, fmt.Errorf("failed to get stock level: %w", err)
		}
		level = &models.StockLevel{ItemID: item.ID}
	}

	wasAlert := level.Alert && level.ID != 0
	level.Quantity = quantity
	level.Alert = quantity < item.MinStock
	if err := s.repo.Inventory().SaveLevel(ctx, tx, level); err != nil {
		return nil, false, fmt.Errorf("failed to save stock level: %w", err)
	}
	return level, level.Alert && !wasAlert, nil
}
