package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ServiceCategory struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;not null;size:120"`
	Description string `json:"description" gorm:"type:text"`
	ImagePath   string `json:"image_path" gorm:"size:255"`
	IsActive    bool   `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Service struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	Name        string           `json:"name" gorm:"not null;size:150;index"`
	Description string           `json:"description" gorm:"type:text"`
	CategoryID  *uint            `json:"category_id" gorm:"index"`
	Category    *ServiceCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	BasePrice   decimal.Decimal  `json:"base_price" gorm:"type:decimal(10,2);not null"`
	IsActive    bool             `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ActivityType string

const (
	ActivityTypeService         ActivityType = "SERVICE"
	ActivityTypeProductPurchase ActivityType = "PRODUCT_PURCHASE"
)

type ActivityStatus string

const (
	ActivityArrived    ActivityStatus = "ARRIVED"
	ActivityInProgress ActivityStatus = "IN_PROGRESS"
	ActivityDone       ActivityStatus = "DONE"
	ActivityToCollect  ActivityStatus = "TO_COLLECT"
	ActivityPaid       ActivityStatus = "PAID"
	ActivityCanceled   ActivityStatus = "CANCELED"
)

// activityStatusFlow lists the statuses reachable from each status.
// PAID and CANCELED are terminal.
var activityStatusFlow = map[ActivityStatus][]ActivityStatus{
	ActivityArrived:    {ActivityInProgress, ActivityCanceled},
	ActivityInProgress: {ActivityDone, ActivityCanceled},
	ActivityDone:       {ActivityToCollect, ActivityCanceled},
	ActivityToCollect:  {ActivityPaid, ActivityCanceled},
	ActivityPaid:       {},
	ActivityCanceled:   {},
}

func (s ActivityStatus) IsValid() bool {
	_, ok := activityStatusFlow[s]
	return ok
}

// CanTransitionTo reports whether next is a direct successor of s.
func (s ActivityStatus) CanTransitionTo(next ActivityStatus) bool {
	for _, allowed := range activityStatusFlow[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ActivityStatus) IsTerminal() bool {
	return s.IsValid() && len(activityStatusFlow[s]) == 0
}

type Activity struct {
	ID              uint                `json:"id" gorm:"primaryKey"`
	Type            ActivityType        `json:"type" gorm:"size:30;not null"`
	Status          ActivityStatus      `json:"status" gorm:"size:30;not null;index"`
	ClientID        *uint               `json:"client_id" gorm:"index"`
	Client          *Client             `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	AssignedStaffID *uint               `json:"assigned_staff_id" gorm:"index"`
	AssignedStaff   *User               `json:"assigned_staff,omitempty" gorm:"foreignKey:AssignedStaffID"`
	StartAt         time.Time           `json:"start_at" gorm:"not null;index"`
	EstimatedEndAt  *time.Time          `json:"estimated_end_at"`
	EndAt           *time.Time          `json:"end_at"`
	ExpectedAmount  decimal.Decimal     `json:"expected_amount" gorm:"type:decimal(10,2);not null"`
	FinalAmount     decimal.NullDecimal `json:"final_amount" gorm:"type:decimal(10,2)"`
	Notes           string              `json:"notes" gorm:"type:text"`
	ContentPossible bool                `json:"content_possible"`
	CreatedByID     *uint               `json:"created_by_id"`

	Lines       []ActivityLine `json:"lines,omitempty" gorm:"foreignKey:ActivityID"`
	PaymentLink *PaymentLink   `json:"payment_link,omitempty" gorm:"foreignKey:ActivityID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LinesTotal sums quantity times unit price over the loaded lines.
func (a *Activity) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range a.Lines {
		total = total.Add(line.Total())
	}
	return total
}

type ActivityLine struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	ActivityID  uint            `json:"activity_id" gorm:"not null;index"`
	ServiceID   *uint           `json:"service_id" gorm:"index"`
	Service     *Service        `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	Description string          `json:"description" gorm:"size:255"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l ActivityLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type PaymentLink struct {
	ID                uint             `json:"id" gorm:"primaryKey"`
	ActivityID        uint             `json:"activity_id" gorm:"uniqueIndex;not null"`
	LoyverseReceiptID *uint            `json:"loyverse_receipt_id" gorm:"index"`
	LoyverseReceipt   *LoyverseReceipt `json:"loyverse_receipt,omitempty" gorm:"foreignKey:LoyverseReceiptID"`
	ManualReference   string           `json:"manual_reference" gorm:"size:120"`
	LinkedByID        *uint            `json:"linked_by_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
