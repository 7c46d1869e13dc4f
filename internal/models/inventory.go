package models

import "time"

type ItemCategory string

const (
	ItemCategorySale       ItemCategory = "SALE"
	ItemCategoryConsumable ItemCategory = "CONSUMABLE"
)

type InventoryItem struct {
	ID       uint         `json:"id" gorm:"primaryKey"`
	Name     string       `json:"name" gorm:"not null;size:150"`
	SKU      *string      `json:"sku" gorm:"size:60;uniqueIndex"`
	Category ItemCategory `json:"category" gorm:"size:20;not null"`
	MinStock int          `json:"min_stock" gorm:"not null"`

	Level *StockLevel `json:"stock_level,omitempty" gorm:"foreignKey:ItemID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type StockMoveType string

const (
	StockMoveIn     StockMoveType = "IN"
	StockMoveOut    StockMoveType = "OUT"
	StockMoveAdjust StockMoveType = "ADJUST"
	StockMoveLoss   StockMoveType = "LOSS"
)

// RequiresPositiveQty is true for every type except ADJUST, which carries a
// signed correction.
func (t StockMoveType) RequiresPositiveQty() bool {
	return t == StockMoveIn || t == StockMoveOut || t == StockMoveLoss
}

type StockMove struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ItemID      uint           `json:"item_id" gorm:"not null;index"`
	Item        *InventoryItem `json:"item,omitempty" gorm:"foreignKey:ItemID"`
	Qty         int            `json:"qty" gorm:"not null"`
	Type        StockMoveType  `json:"type" gorm:"size:10;not null"`
	Reference   string         `json:"reference" gorm:"size:255"`
	CreatedByID *uint          `json:"created_by_id"`

	CreatedAt time.Time `json:"created_at"`
}

// Delta is the signed effect of the move on the item's stock.
func (m StockMove) Delta() int {
	switch m.Type {
	case StockMoveIn:
		return m.Qty
	case StockMoveOut, StockMoveLoss:
		if m.Qty < 0 {
			return m.Qty
		}
		return -m.Qty
	default:
		return m.Qty
	}
}

type StockLevel struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	ItemID   uint `json:"item_id" gorm:"uniqueIndex;not null"`
	Quantity int  `json:"quantity"`
	Alert    bool `json:"alert"`

	UpdatedAt time.Time `json:"updated_at"`
}
