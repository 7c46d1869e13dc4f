package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/validator"
)

// ===== ACCOUNTS =====

type CreateUserRequest struct {
	Username string          `json:"username" validate:"required,min=3,max=150"`
	FullName string          `json:"full_name" validate:"max=150"`
	Email    string          `json:"email" validate:"omitempty,email"`
	Password string          `json:"password" validate:"required,min=8,max=72"`
	Role     models.UserRole `json:"role" validate:"omitempty,user_role"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
}

type ClientRequest struct {
	Name  string `json:"name" validate:"required,max=150"`
	Phone string `json:"phone" validate:"max=50"`
	Email string `json:"email" validate:"omitempty,email"`
	Notes string `json:"notes"`
}

type ClientListResponse struct {
	Clients []*models.Client `json:"clients"`
	Total   int64            `json:"total"`
}

// ===== SERVICES CATALOG =====

type ServiceCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description"`
	ImagePath   string `json:"image_path" validate:"max=255"`
	IsActive    *bool  `json:"is_active"`
}

type ServiceRequest struct {
	Name        string          `json:"name" validate:"required,max=150"`
	Description string          `json:"description"`
	CategoryID  *uint           `json:"category_id"`
	BasePrice   decimal.Decimal `json:"base_price"`
	IsActive    *bool           `json:"is_active"`
}

func (r ServiceRequest) ValidateBusiness() validator.ValidationErrors {
	if r.BasePrice.IsNegative() {
		return validator.ValidationErrors{{Field: "base_price", Message: "must not be negative", Value: r.BasePrice.String()}}
	}
	return nil
}

// ===== ACTIVITIES =====

type CreateActivityRequest struct {
	Type            models.ActivityType   `json:"type" validate:"required,oneof=SERVICE PRODUCT_PURCHASE"`
	ClientID        *uint                 `json:"client_id"`
	AssignedStaffID *uint                 `json:"assigned_staff_id"`
	StartAt         time.Time             `json:"start_at" validate:"required"`
	EstimatedEndAt  *time.Time            `json:"estimated_end_at"`
	ExpectedAmount  decimal.Decimal       `json:"expected_amount"`
	Notes           string                `json:"notes"`
	ContentPossible bool                  `json:"content_possible"`
	Lines           []ActivityLineRequest `json:"lines" validate:"dive"`
}

func (r CreateActivityRequest) ValidateBusiness() validator.ValidationErrors {
	var errs validator.ValidationErrors
	if r.ExpectedAmount.IsNegative() {
		errs = errs.Add("expected_amount", "must not be negative", r.ExpectedAmount.String())
	}
	if r.EstimatedEndAt != nil && r.EstimatedEndAt.Before(r.StartAt) {
		errs = errs.Add("estimated_end_at", "must not be before start_at", r.EstimatedEndAt)
	}
	return errs
}

type UpdateActivityRequest struct {
	ClientID        *uint            `json:"client_id"`
	StartAt         *time.Time       `json:"start_at"`
	EstimatedEndAt  *time.Time       `json:"estimated_end_at"`
	EndAt           *time.Time       `json:"end_at"`
	ExpectedAmount  *decimal.Decimal `json:"expected_amount"`
	Notes           *string          `json:"notes"`
	ContentPossible *bool            `json:"content_possible"`
}

type ActivityLineRequest struct {
	ServiceID   *uint            `json:"service_id"`
	Description string           `json:"description" validate:"max=255"`
	Quantity    int              `json:"quantity" validate:"min=1"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

type LinkPaymentRequest struct {
	LoyverseReceiptID *uint            `json:"loyverse_receipt_id"`
	ManualReference   string           `json:"manual_reference" validate:"max=120"`
	FinalAmount       *decimal.Decimal `json:"final_amount"`
}

func (r LinkPaymentRequest) ValidateBusiness() validator.ValidationErrors {
	errs := validator.RequireOneOf("loyverse_receipt_id", "a Loyverse receipt or a manual reference is required",
		r.LoyverseReceiptID != nil, strings.TrimSpace(r.ManualReference) != "")
	if r.FinalAmount != nil && r.FinalAmount.IsNegative() {
		errs = errs.Add("final_amount", "must not be negative", r.FinalAmount.String())
	}
	return errs
}

type ActivityListResponse struct {
	Activities []*models.Activity `json:"activities"`
	Total      int64              `json:"total"`
}

// ===== LOYVERSE =====

type SyncResult struct {
	Fetched int        `json:"fetched"`
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Since   *time.Time `json:"since,omitempty"`
}

type ReceiptListResponse struct {
	Receipts []*models.LoyverseReceipt `json:"receipts"`
	Total    int64                     `json:"total"`
}

// ===== INVENTORY =====

type InventoryItemRequest struct {
	Name     string              `json:"name" validate:"required,max=150"`
	SKU      *string             `json:"sku" validate:"omitempty,max=60"`
	Category models.ItemCategory `json:"category" validate:"required,oneof=SALE CONSUMABLE"`
	MinStock int                 `json:"min_stock" validate:"min=0"`
}

type StockMoveRequest struct {
	ItemID    uint                 `json:"item_id" validate:"required"`
	Qty       int                  `json:"qty"`
	Type      models.StockMoveType `json:"type" validate:"required,stock_move_type"`
	Reference string               `json:"reference" validate:"max=255"`
}

func (r StockMoveRequest) ValidateBusiness() validator.ValidationErrors {
	if r.Qty == 0 {
		return validator.ValidationErrors{{Field: "qty", Message: "must not be zero", Value: r.Qty}}
	}
	if r.Type.RequiresPositiveQty() && r.Qty < 0 {
		return validator.ValidationErrors{{Field: "qty", Message: "must be positive for this move type", Value: r.Qty}}
	}
	return nil
}

type StockMoveResult struct {
	Move  *models.StockMove  `json:"move"`
	Level *models.StockLevel `json:"stock_level"`
}

// ===== TASKS =====

type RecurrenceRuleRequest struct {
	Name        string                     `json:"name" validate:"required,max=150"`
	Frequency   models.RecurrenceFrequency `json:"frequency" validate:"required,recurrence_frequency"`
	Interval    int                        `json:"interval" validate:"min=1"`
	Weekdays    string                     `json:"weekdays" validate:"omitempty,weekdays"`
	Description string                     `json:"description"`
}

type TaskTemplateRequest struct {
	Name             string   `json:"name" validate:"required,max=150"`
	Description      string   `json:"description"`
	RecurrenceRuleID *uint    `json:"recurrence_rule_id"`
	IsActive         *bool    `json:"is_active"`
	Checklist        []string `json:"checklist" validate:"dive,required,max=200"`
}

type CreateTaskRequest struct {
	Title        string     `json:"title" validate:"required,max=200"`
	Description  string     `json:"description"`
	AssignedToID *uint      `json:"assigned_to_id"`
	DueDate      *time.Time `json:"due_date"`
	Checklist    []string   `json:"checklist" validate:"dive,required,max=200"`
}

type TaskListResponse struct {
	Tasks []*models.Task `json:"tasks"`
	Total int64          `json:"total"`
}

type GenerationResult struct {
	Date    time.Time `json:"date"`
	Created int       `json:"created"`
	Skipped int       `json:"skipped"`
	TaskIDs []uint    `json:"task_ids"`
}
