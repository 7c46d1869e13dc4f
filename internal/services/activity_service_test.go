package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/backoffice-service/internal/events"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
)

type activityFixture struct {
	staff   *models.User
	client  *models.Client
	service *models.Service
}

func (e *testEnv) activityFixture(t *testing.T) *activityFixture {
	t.Helper()
	ctx := context.Background()

	staff := e.createUser(t, "camille", models.RoleStaff)
	client, err := e.services.Client().Create(ctx, &ClientRequest{Name: "Mme Diallo", Phone: "+33 6 00 00 00 00"})
	require.NoError(t, err)
	category, err := e.services.Catalog().CreateCategory(ctx, &ServiceCategoryRequest{Name: "Coiffure"})
	require.NoError(t, err)
	service, err := e.services.Catalog().CreateService(ctx, &ServiceRequest{
		Name:       "Brushing",
		CategoryID: &category.ID,
		BasePrice:  decimal.RequireFromString("35.50"),
	})
	require.NoError(t, err)

	return &activityFixture{staff: staff, client: client, service: service}
}

func (e *testEnv) newActivity(t *testing.T, f *activityFixture) *models.Activity {
	t.Helper()
	activity, err := e.services.Activity().Create(context.Background(), &CreateActivityRequest{
		Type:            models.ActivityTypeService,
		ClientID:        &f.client.ID,
		AssignedStaffID: &f.staff.ID,
		StartAt:         time.Now().Add(-time.Hour),
		Lines:           []ActivityLineRequest{{ServiceID: &f.service.ID, Quantity: 2}},
	}, manager)
	require.NoError(t, err)
	return activity
}

func TestActivityCreate_DefaultsFromCatalog(t *testing.T) {
	env := newTestEnv(t, nil)
	activity := env.newActivity(t, env.activityFixture(t))

	assert.Equal(t, models.ActivityArrived, activity.Status)
	require.Len(t, activity.Lines, 1)
	assert.Equal(t, "Brushing", activity.Lines[0].Description)
	assert.True(t, activity.ExpectedAmount.Equal(decimal.RequireFromString("71")), activity.ExpectedAmount.String())
}

func TestActivityCreate_LineNeedsServiceOrDescription(t *testing.T) {
	env := newTestEnv(t, nil)
	f := env.activityFixture(t)

	_, err := env.services.Activity().Create(context.Background(), &CreateActivityRequest{
		Type:     models.ActivityTypeProductPurchase,
		ClientID: &f.client.ID,
		StartAt:  time.Now(),
		Lines:    []ActivityLineRequest{{Quantity: 1}},
	}, manager)
	assert.True(t, IsValidation(err))
}

func TestActivityStatus_FollowsWorkflow(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	activity := env.newActivity(t, env.activityFixture(t))

	_, err := env.services.Activity().SetStatus(ctx, activity.ID, models.ActivityPaid, manager)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = env.services.Activity().MarkDone(ctx, activity.ID, manager)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition, "ARRIVED cannot jump to DONE")

	updated, err := env.services.Activity().SetStatus(ctx, activity.ID, models.ActivityInProgress, manager)
	require.NoError(t, err)
	assert.Equal(t, models.ActivityInProgress, updated.Status)

	updated, err = env.services.Activity().MarkDone(ctx, activity.ID, manager)
	require.NoError(t, err)
	assert.Equal(t, models.ActivityDone, updated.Status)
	require.NotNil(t, updated.EndAt)
	assert.False(t, updated.EndAt.Before(updated.StartAt))

	// repeating the current status is a no-op
	_, err = env.services.Activity().MarkDone(ctx, activity.ID, manager)
	require.NoError(t, err)

	assert.Len(t, env.publisher.EventsOfType(events.EventActivityStatusChanged), 2)
}

func TestActivityStatus_RejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	activity := env.newActivity(t, env.activityFixture(t))

	_, err := env.services.Activity().SetStatus(context.Background(), activity.ID, "LOST", manager)
	assert.True(t, IsValidation(err))
}

func TestLinkPayment(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	f := env.activityFixture(t)
	activity := env.newActivity(t, f)

	receipt := &models.LoyverseReceipt{
		ReceiptID:     "8f1c-0001",
		ReceiptNumber: "1-1001",
		TotalMoney:    decimal.RequireFromString("70"),
		SyncedAt:      time.Now(),
	}
	require.NoError(t, env.db.Create(receipt).Error)

	req := &LinkPaymentRequest{LoyverseReceiptID: &receipt.ID}

	_, err := env.services.Activity().LinkPayment(ctx, activity.ID, req, manager)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition, "activity is not finished")

	staff := Actor{UserID: f.staff.ID, Role: models.RoleStaff}
	_, err = env.services.Activity().LinkPayment(ctx, activity.ID, req, staff)
	assert.True(t, IsUnauthorized(err))

	_, err = env.services.Activity().LinkPayment(ctx, activity.ID, req, owner)
	assert.True(t, IsUnauthorized(err), "owners do not settle payments")

	_, err = env.services.Activity().SetStatus(ctx, activity.ID, models.ActivityInProgress, manager)
	require.NoError(t, err)
	_, err = env.services.Activity().MarkDone(ctx, activity.ID, manager)
	require.NoError(t, err)

	missing := uint(9999)
	_, err = env.services.Activity().LinkPayment(ctx, activity.ID, &LinkPaymentRequest{LoyverseReceiptID: &missing}, manager)
	assert.ErrorIs(t, err, ErrReceiptNotFound)

	final := decimal.RequireFromString("70")
	req.FinalAmount = &final
	paid, err := env.services.Activity().LinkPayment(ctx, activity.ID, req, manager)
	require.NoError(t, err)
	assert.Equal(t, models.ActivityPaid, paid.Status)
	require.True(t, paid.FinalAmount.Valid)
	assert.True(t, paid.FinalAmount.Decimal.Equal(final))
	require.NotNil(t, paid.PaymentLink)
	assert.Equal(t, receipt.ID, *paid.PaymentLink.LoyverseReceiptID)

	paidEvents := env.publisher.EventsOfType(events.EventActivityPaid)
	require.Len(t, paidEvents, 1)

	// relinking a paid activity swaps the reference without a second event
	relinked, err := env.services.Activity().LinkPayment(ctx, activity.ID, &LinkPaymentRequest{ManualReference: "CB-4471"}, manager)
	require.NoError(t, err)
	assert.Equal(t, "CB-4471", relinked.PaymentLink.ManualReference)
	assert.True(t, relinked.FinalAmount.Decimal.Equal(final), "final amount is kept")
	assert.Len(t, env.publisher.EventsOfType(events.EventActivityPaid), 1)

	_, err = env.services.Activity().AddLine(ctx, activity.ID, &ActivityLineRequest{Description: "Soin", Quantity: 1})
	assert.True(t, IsBusinessRule(err))
}

func TestLinkPayment_RequiresReference(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.services.Activity().LinkPayment(context.Background(), 1, &LinkPaymentRequest{}, manager)
	assert.True(t, IsValidation(err))
}
