package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestContentMetric_Score(t *testing.T) {
	tests := []struct {
		name   string
		metric ContentMetric
		want   string
	}{
		{"no reach falls back to interactions", ContentMetric{Likes: 3, Comments: 1, Shares: 1, Saves: 2}, "7"},
		{"engagement rate", ContentMetric{Likes: 40, Comments: 5, Shares: 3, Saves: 2, Reach: 400}, "12.5"},
		{"rounded to cents", ContentMetric{Likes: 2, Reach: 3}, "66.67"},
		{"clicks are not interactions", ContentMetric{Clicks: 50, Reach: 100}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, decimal.RequireFromString(tt.want).Equal(tt.metric.Score()), "got %s", tt.metric.Score())
		})
	}
}

func TestContentItem_RefreshScoreUsesLatestMetric(t *testing.T) {
	item := &ContentItem{}
	item.RefreshScore()
	assert.True(t, item.PerformanceScore.IsZero())

	base := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	item.Metrics = []ContentMetric{
		{ID: 2, Likes: 10, Reach: 100, CreatedAt: base.Add(time.Hour)},
		{ID: 1, Likes: 90, Reach: 100, CreatedAt: base},
	}
	item.RefreshScore()
	assert.Equal(t, "10", item.PerformanceScore.String())
}

func TestContentStatus_Transitions(t *testing.T) {
	assert.True(t, ContentBrief.CanSubmit())
	assert.True(t, ContentInCreation.CanSubmit())
	assert.False(t, ContentIdea.CanSubmit())
	assert.False(t, ContentToValidate.CanSubmit())

	assert.True(t, ContentApproved.CanPublish())
	assert.True(t, ContentScheduled.CanPublish())
	assert.False(t, ContentToValidate.CanPublish())

	assert.False(t, ContentStatus("DRAFT").IsValid())
	assert.False(t, ContentPlatform("MYSPACE").IsValid())
}
