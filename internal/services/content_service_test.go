package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

func TestContentWorkflow(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	svc := env.services.Content()

	item, err := svc.Create(ctx, &ContentItemRequest{Title: "  Avant/après lissage  "}, manager)
	require.NoError(t, err)
	assert.Equal(t, "Avant/après lissage", item.Title)
	assert.Equal(t, models.PlatformInstagram, item.Platform)
	assert.Equal(t, models.ContentIdea, item.Status)

	_, err = svc.SubmitForApproval(ctx, item.ID, manager)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.True(t, IsValidation(err))

	brief := models.ContentBrief
	_, err = svc.Update(ctx, item.ID, &UpdateContentRequest{Status: &brief}, manager)
	require.NoError(t, err)

	item, err = svc.SubmitForApproval(ctx, item.ID, manager)
	require.NoError(t, err)
	assert.Equal(t, models.ContentToValidate, item.Status)

	_, err = svc.Approve(ctx, item.ID, &ContentReviewRequest{Comment: "ok"}, manager)
	assert.True(t, IsUnauthorized(err), "only the owner reviews content")

	_, err = svc.Reject(ctx, item.ID, &ContentReviewRequest{Comment: "   "}, owner)
	assert.ErrorIs(t, err, ErrReviewCommentEmpty)

	item, err = svc.Reject(ctx, item.ID, &ContentReviewRequest{Comment: " Lumière trop sombre "}, owner)
	require.NoError(t, err)
	assert.Equal(t, models.ContentInCreation, item.Status)
	require.NotNil(t, item.ApprovedByID)
	assert.Equal(t, owner.UserID, *item.ApprovedByID)
	require.Len(t, item.Approvals, 1)
	assert.False(t, item.Approvals[0].Approved)
	assert.Equal(t, "Lumière trop sombre", item.Approvals[0].Comment)

	_, err = svc.Approve(ctx, item.ID, &ContentReviewRequest{Comment: "ok"}, owner)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = svc.SubmitForApproval(ctx, item.ID, manager)
	require.NoError(t, err)
	item, err = svc.Approve(ctx, item.ID, &ContentReviewRequest{Comment: "OK pour jeudi"}, owner)
	require.NoError(t, err)
	assert.Equal(t, models.ContentApproved, item.Status)
	require.Len(t, item.Approvals, 2)
	assert.True(t, item.Approvals[0].Approved, "latest decision first")

	_, err = svc.AddMetrics(ctx, item.ID, &ContentMetricRequest{Likes: 1}, manager)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	item, err = svc.Publish(ctx, item.ID, manager)
	require.NoError(t, err)
	assert.Equal(t, models.ContentPublished, item.Status)

	metric, err := svc.AddMetrics(ctx, item.ID, &ContentMetricRequest{Likes: 40, Comments: 5, Shares: 3, Saves: 2, Reach: 400, Clicks: 9}, manager)
	require.NoError(t, err)
	assert.NotZero(t, metric.ID)

	item, err = svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContentMetricsRecorded, item.Status)
	assert.True(t, decimal.RequireFromString("12.5").Equal(item.PerformanceScore))

	_, err = svc.AddMetrics(ctx, item.ID, &ContentMetricRequest{Likes: 1}, manager)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	var reviews int64
	require.NoError(t, env.db.Model(&models.AuditLog{}).Where("event_type = ?", models.AuditContentReviewed).Count(&reviews).Error)
	assert.EqualValues(t, 2, reviews)
}

func TestContent_PermissionsAndValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	svc := env.services.Content()
	staff := Actor{UserID: 9, Role: models.RoleStaff}

	_, err := svc.Create(ctx, &ContentItemRequest{Title: "Story"}, staff)
	assert.True(t, IsUnauthorized(err))

	_, err = svc.Create(ctx, &ContentItemRequest{Title: "   "}, manager)
	assert.True(t, IsValidation(err))

	_, err = svc.Create(ctx, &ContentItemRequest{Title: "Live", Platform: "MYSPACE"}, manager)
	assert.True(t, IsValidation(err))

	item, err := svc.Create(ctx, &ContentItemRequest{Title: "Live", Platform: models.PlatformTikTok}, manager)
	require.NoError(t, err)

	draft := models.ContentStatus("DRAFT")
	_, err = svc.Update(ctx, item.ID, &UpdateContentRequest{Status: &draft}, manager)
	assert.True(t, IsValidation(err))

	_, err = svc.Publish(ctx, item.ID, staff)
	assert.True(t, IsUnauthorized(err))

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrContentNotFound)
	assert.True(t, IsNotFound(err))
}

func TestContent_UpdateAndList(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	svc := env.services.Content()

	monday := time.Date(2026, time.March, 2, 18, 0, 0, 0, time.UTC)
	create := func(title string, platform models.ContentPlatform, at *time.Time) *models.ContentItem {
		item, err := svc.Create(ctx, &ContentItemRequest{Title: title, Platform: platform, ScheduledAt: at}, manager)
		require.NoError(t, err)
		return item
	}
	thursday := monday.AddDate(0, 0, 3)
	create("Tuto tresses", models.PlatformTikTok, &thursday)
	reel := create("Reel coloration", models.PlatformInstagram, &monday)
	create("Idée concours", models.PlatformInstagram, nil)

	all, err := svc.List(ctx, repositories.ContentFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)
	require.Len(t, all.Items, 3)
	assert.Equal(t, "Reel coloration", all.Items[0].Title)
	assert.Equal(t, "Tuto tresses", all.Items[1].Title)
	assert.Nil(t, all.Items[2].ScheduledAt, "unscheduled ideas last")

	instagram := models.PlatformInstagram
	filtered, err := svc.List(ctx, repositories.ContentFilters{Platform: &instagram, Search: "REEL"})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, reel.ID, filtered.Items[0].ID)

	from := monday.AddDate(0, 0, 1)
	window, err := svc.List(ctx, repositories.ContentFilters{ScheduledFrom: &from})
	require.NoError(t, err)
	require.Len(t, window.Items, 1)
	assert.Equal(t, "Tuto tresses", window.Items[0].Title)

	title := "Reel coloration cuivrée"
	updated, err := svc.Update(ctx, reel.ID, &UpdateContentRequest{Title: &title, ClearSchedule: true}, manager)
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Nil(t, updated.ScheduledAt)
	assert.Equal(t, models.PlatformInstagram, updated.Platform, "unset fields are kept")
}
