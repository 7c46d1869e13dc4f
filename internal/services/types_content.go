package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/validator"
)

// ===== CONTENT CALENDAR =====

type ContentItemRequest struct {
	Title       string                 `json:"title" validate:"required,max=200"`
	Description string                 `json:"description"`
	Platform    models.ContentPlatform `json:"platform" validate:"omitempty,content_platform"`
	Status      models.ContentStatus   `json:"status" validate:"omitempty,content_status"`
	ScheduledAt *time.Time             `json:"scheduled_at"`
}

func (r ContentItemRequest) ValidateBusiness() validator.ValidationErrors {
	if strings.TrimSpace(r.Title) == "" {
		return validator.ValidationErrors{{Field: "title", Message: "must not be blank", Value: r.Title}}
	}
	return nil
}

// UpdateContentRequest changes only the fields that are set. Status may be
// set to any known value; the review steps have their own endpoints.
type UpdateContentRequest struct {
	Title         *string                 `json:"title" validate:"omitempty,max=200"`
	Description   *string                 `json:"description"`
	Platform      *models.ContentPlatform `json:"platform" validate:"omitempty,content_platform"`
	Status        *models.ContentStatus   `json:"status" validate:"omitempty,content_status"`
	ScheduledAt   *time.Time              `json:"scheduled_at"`
	ClearSchedule bool                    `json:"clear_schedule"`
}

func (r UpdateContentRequest) ValidateBusiness() validator.ValidationErrors {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return validator.ValidationErrors{{Field: "title", Message: "must not be blank", Value: *r.Title}}
	}
	return nil
}

type ContentReviewRequest struct {
	Comment string `json:"comment" validate:"max=2000"`
}

type ContentMetricRequest struct {
	Likes    int `json:"likes" validate:"min=0"`
	Comments int `json:"comments" validate:"min=0"`
	Shares   int `json:"shares" validate:"min=0"`
	Saves    int `json:"saves" validate:"min=0"`
	Reach    int `json:"reach" validate:"min=0"`
	Clicks   int `json:"clicks" validate:"min=0"`
}

type ContentListResponse struct {
	Items []*models.ContentItem `json:"items"`
	Total int64                `json:"total"`
}

// ===== WIGS =====

type WigProductRequest struct {
	Name   string                  `json:"name" validate:"required,max=150"`
	Status models.WigProductStatus `json:"status" validate:"omitempty,wig_status"`
	Price  decimal.Decimal         `json:"price"`
	Notes  string                  `json:"notes"`
}

func (r WigProductRequest) ValidateBusiness() validator.ValidationErrors {
	if r.Price.IsNegative() {
		return validator.ValidationErrors{{Field: "price", Message: "must not be negative", Value: r.Price.String()}}
	}
	return nil
}

type CareWigRequest struct {
	Client       string               `json:"client" validate:"required,max=150"`
	Status       models.CareWigStatus `json:"status" validate:"omitempty,care_status"`
	PromisedDate *time.Time           `json:"promised_date"`
	Notes        string               `json:"notes"`
}

// WigListQuery carries the raw listing parameters. Dates are YYYY-MM-DD.
type WigListQuery struct {
	Status    string `form:"status"`
	Code      string `form:"code"`
	Search    string `form:"q"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}
