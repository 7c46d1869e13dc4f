package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ContentStatus string

const (
	ContentIdea            ContentStatus = "IDEA"
	ContentBrief           ContentStatus = "BRIEF"
	ContentInCreation      ContentStatus = "IN_CREATION"
	ContentToValidate      ContentStatus = "TO_VALIDATE"
	ContentApproved        ContentStatus = "APPROVED"
	ContentScheduled       ContentStatus = "SCHEDULED"
	ContentPublished       ContentStatus = "PUBLISHED"
	ContentMetricsRecorded ContentStatus = "METRICS_RECORDED"
	ContentRejected        ContentStatus = "REJECTED"
)

var AllContentStatuses = []ContentStatus{
	ContentIdea, ContentBrief, ContentInCreation, ContentToValidate, ContentApproved,
	ContentScheduled, ContentPublished, ContentMetricsRecorded, ContentRejected,
}

func (s ContentStatus) IsValid() bool {
	for _, status := range AllContentStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// CanSubmit is true while the piece is still being written.
func (s ContentStatus) CanSubmit() bool {
	return s == ContentBrief || s == ContentInCreation
}

func (s ContentStatus) CanPublish() bool {
	return s == ContentApproved || s == ContentScheduled
}

type ContentPlatform string

const (
	PlatformInstagram ContentPlatform = "INSTAGRAM"
	PlatformTikTok    ContentPlatform = "TIKTOK"
	PlatformFacebook  ContentPlatform = "FACEBOOK"
	PlatformWhatsApp  ContentPlatform = "WHATSAPP"
	PlatformYouTube   ContentPlatform = "YOUTUBE"
	PlatformOther     ContentPlatform = "OTHER"
)

var AllContentPlatforms = []ContentPlatform{
	PlatformInstagram, PlatformTikTok, PlatformFacebook, PlatformWhatsApp, PlatformYouTube, PlatformOther,
}

func (p ContentPlatform) IsValid() bool {
	for _, platform := range AllContentPlatforms {
		if platform == p {
			return true
		}
	}
	return false
}

// ContentItem is one entry of the social media calendar.
type ContentItem struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Title        string          `json:"title" gorm:"not null;size:200"`
	Description  string          `json:"description" gorm:"type:text"`
	Platform     ContentPlatform `json:"platform" gorm:"size:20;not null;index"`
	Status       ContentStatus   `json:"status" gorm:"size:20;not null;index"`
	ScheduledAt  *time.Time      `json:"scheduled_at" gorm:"index"`
	CreatedByID  *uint           `json:"created_by_id"`
	ApprovedByID *uint           `json:"approved_by_id"`

	Approvals []ContentApproval `json:"approvals,omitempty" gorm:"foreignKey:ContentItemID"`
	Metrics   []ContentMetric   `json:"metrics,omitempty" gorm:"foreignKey:ContentItemID"`

	PerformanceScore decimal.Decimal `json:"performance_score" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefreshScore copies the score of the most recent metric, or zero.
func (c *ContentItem) RefreshScore() {
	c.PerformanceScore = decimal.Zero
	var latest *ContentMetric
	for i := range c.Metrics {
		m := &c.Metrics[i]
		if latest == nil || m.CreatedAt.After(latest.CreatedAt) ||
			(m.CreatedAt.Equal(latest.CreatedAt) && m.ID > latest.ID) {
			latest = m
		}
	}
	if latest != nil {
		c.PerformanceScore = latest.Score()
	}
}

// ContentApproval records one owner decision, positive or not.
type ContentApproval struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	ContentItemID uint   `json:"content_item_id" gorm:"not null;index"`
	ApprovedByID  *uint  `json:"approved_by_id"`
	Comment       string `json:"comment" gorm:"type:text;not null"`
	Approved      bool   `json:"approved"`

	CreatedAt time.Time `json:"created_at"`
}

type ContentMetric struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	ContentItemID uint `json:"content_item_id" gorm:"not null;index"`
	Likes         int  `json:"likes"`
	Comments      int  `json:"comments"`
	Shares        int  `json:"shares"`
	Saves         int  `json:"saves"`
	Reach         int  `json:"reach"`
	Clicks        int  `json:"clicks"`

	CreatedAt time.Time `json:"created_at"`
}

func (m ContentMetric) Interactions() int {
	return m.Likes + m.Comments + m.Shares + m.Saves
}

// Score is the engagement rate in percent, rounded to two decimals. Without
// a reach the raw interaction count is returned.
func (m ContentMetric) Score() decimal.Decimal {
	interactions := decimal.NewFromInt(int64(m.Interactions()))
	if m.Reach <= 0 {
		return interactions
	}
	return interactions.Div(decimal.NewFromInt(int64(m.Reach))).Mul(decimal.NewFromInt(100)).Round(2)
}
