package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type LoyverseStore struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"size:150"`
	Token    string `json:"-" gorm:"size:255;not null"`
	IsActive bool   `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoyverseReceipt keeps the raw payload of a receipt fetched from the POS.
type LoyverseReceipt struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	ReceiptID     string          `json:"receipt_id" gorm:"uniqueIndex;not null;size:64"`
	ReceiptNumber string          `json:"receipt_number" gorm:"size:64;index"`
	ReceiptDate   *time.Time      `json:"receipt_date"`
	TotalMoney    decimal.Decimal `json:"total_money" gorm:"type:decimal(10,2)"`
	RawJSON       datatypes.JSON  `json:"raw_json"`
	SyncedAt      time.Time       `json:"synced_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
