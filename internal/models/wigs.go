package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sequence is a named counter used to mint human readable codes.
type Sequence struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"uniqueIndex;not null;size:20"`
	Value     int       `json:"value" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

type WigCodePrefix string

const (
	WigCodeProduct WigCodePrefix = "WIG"
	WigCodeCare    WigCodePrefix = "CARE"
)

type WigProductStatus string

const (
	WigInStock  WigProductStatus = "IN_STOCK"
	WigReserved WigProductStatus = "RESERVED"
	WigSold     WigProductStatus = "SOLD"
	WigRetouch  WigProductStatus = "RETOUCH"
	WigReturned WigProductStatus = "RETURNED"
)

// WigProduct is a wig held for sale.
type WigProduct struct {
	ID     uint             `json:"id" gorm:"primaryKey"`
	Code   string           `json:"code" gorm:"uniqueIndex;not null;size:20"`
	Name   string           `json:"name" gorm:"not null;size:150"`
	Status WigProductStatus `json:"status" gorm:"size:20;not null;index"`
	Price  decimal.Decimal  `json:"price" gorm:"type:decimal(10,2);not null"`
	Notes  string           `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CareWigStatus string

const (
	CareReceived   CareWigStatus = "RECEIVED"
	CareInProgress CareWigStatus = "IN_PROGRESS"
	CareReady      CareWigStatus = "READY"
	CareDelivered  CareWigStatus = "DELIVERED"
	CareCanceled   CareWigStatus = "CANCELED"
)

// CareWig is a client's wig left at the salon for maintenance.
type CareWig struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	Code           string        `json:"code" gorm:"uniqueIndex;not null;size:20"`
	Client         string        `json:"client" gorm:"not null;size:150"`
	Status         CareWigStatus `json:"status" gorm:"size:20;not null;index"`
	PromisedDate   *time.Time    `json:"promised_date" gorm:"type:date"`
	Notes          string        `json:"notes" gorm:"type:text"`
	LabelPrintedAt *time.Time    `json:"label_printed_at"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}
