package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
)

func TestWigCodes_MonthlySequencePerPrefix(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	svc := env.services.Wig()

	october := time.Date(2026, time.October, 17, 10, 0, 0, 0, time.UTC)
	svc.(*wigService).now = func() time.Time { return october }

	first, err := svc.CreateProduct(ctx, &WigProductRequest{Name: "Lace frontale 24\"", Price: decimal.RequireFromString("249.999")}, manager)
	require.NoError(t, err)
	assert.Equal(t, "WIG-2610-0001", first.Code)
	assert.Equal(t, models.WigInStock, first.Status)
	assert.Equal(t, "250", first.Price.String())

	second, err := svc.CreateProduct(ctx, &WigProductRequest{Name: "Bob ondulé", Price: decimal.NewFromInt(120)}, manager)
	require.NoError(t, err)
	assert.Equal(t, "WIG-2610-0002", second.Code)

	care, err := svc.CreateCare(ctx, &CareWigRequest{Client: "Awa Diop"}, manager)
	require.NoError(t, err)
	assert.Equal(t, "CARE-2610-0001", care.Code, "each prefix has its own counter")
	assert.Equal(t, models.CareReceived, care.Status)

	svc.(*wigService).now = func() time.Time { return october.AddDate(0, 1, 0) }
	november, err := svc.CreateProduct(ctx, &WigProductRequest{Name: "Closure 4x4", Price: decimal.NewFromInt(90)}, manager)
	require.NoError(t, err)
	assert.Equal(t, "WIG-2611-0001", november.Code)

	var seq models.Sequence
	require.NoError(t, env.db.Where(&models.Sequence{Key: "WIG-2610"}).First(&seq).Error)
	assert.Equal(t, 2, seq.Value)
}

func TestWigProducts_UpdateAndValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	svc := env.services.Wig()

	_, err := svc.CreateProduct(ctx, &WigProductRequest{Name: "Perruque", Price: decimal.NewFromInt(-1)}, manager)
	assert.True(t, IsValidation(err))

	_, err = svc.CreateProduct(ctx, &WigProductRequest{Name: "Perruque", Status: "LOST"}, manager)
	assert.True(t, IsValidation(err))

	product, err := svc.CreateProduct(ctx, &WigProductRequest{Name: "Perruque blonde", Price: decimal.NewFromInt(180)}, manager)
	require.NoError(t, err)

	sold, err := svc.UpdateProduct(ctx, product.ID, &WigProductRequest{
		Name:   "Perruque blonde platine",
		Status: models.WigSold,
		Price:  decimal.NewFromInt(170),
		Notes:  "vendue en boutique",
	}, manager)
	require.NoError(t, err)
	assert.Equal(t, product.Code, sold.Code)
	assert.Equal(t, models.WigSold, sold.Status)
	assert.Equal(t, "Perruque blonde platine", sold.Name)

	var audits int64
	require.NoError(t, env.db.Model(&models.AuditLog{}).Where("event_type = ?", models.AuditWigStatusChanged).Count(&audits).Error)
	assert.EqualValues(t, 1, audits)

	_, err = svc.UpdateProduct(ctx, 999, &WigProductRequest{Name: "x"}, manager)
	assert.ErrorIs(t, err, ErrWigProductNotFound)

	require.NoError(t, svc.DeleteProduct(ctx, product.ID))
	_, err = svc.GetProduct(ctx, product.ID)
	assert.ErrorIs(t, err, ErrWigProductNotFound)
	assert.True(t, IsNotFound(err))
}

func TestWigListing_Filters(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	svc := env.services.Wig()

	blonde, err := svc.CreateProduct(ctx, &WigProductRequest{Name: "Perruque blonde", Price: decimal.NewFromInt(180)}, manager)
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, &WigProductRequest{Name: "Bob noir", Status: models.WigReserved, Price: decimal.NewFromInt(120)}, manager)
	require.NoError(t, err)
	promised := time.Date(2026, time.October, 24, 0, 0, 0, 0, time.UTC)
	care, err := svc.CreateCare(ctx, &CareWigRequest{Client: "Fatou Ndiaye", PromisedDate: &promised}, manager)
	require.NoError(t, err)
	_, err = svc.CreateCare(ctx, &CareWigRequest{Client: "Mariam Koné", Status: models.CareInProgress}, manager)
	require.NoError(t, err)

	products, err := svc.ListProducts(ctx, WigListQuery{})
	require.NoError(t, err)
	assert.Len(t, products, 2)

	products, err = svc.ListProducts(ctx, WigListQuery{Status: string(models.WigReserved)})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Bob noir", products[0].Name)

	products, err = svc.ListProducts(ctx, WigListQuery{Search: "BLONDE"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, blonde.ID, products[0].ID)

	products, err = svc.ListProducts(ctx, WigListQuery{Code: blonde.Code[4:]})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, blonde.ID, products[0].ID)

	careList, err := svc.ListCare(ctx, WigListQuery{Search: "ndiaye"})
	require.NoError(t, err)
	require.Len(t, careList, 1)
	assert.Equal(t, care.ID, careList[0].ID)

	today := time.Now()
	careList, err = svc.ListCare(ctx, WigListQuery{
		StartDate: today.AddDate(0, 0, -1).Format(time.DateOnly),
		EndDate:   today.AddDate(0, 0, 1).Format(time.DateOnly),
	})
	require.NoError(t, err)
	assert.Len(t, careList, 2)

	careList, err = svc.ListCare(ctx, WigListQuery{StartDate: today.AddDate(0, 0, 2).Format(time.DateOnly)})
	require.NoError(t, err)
	assert.Empty(t, careList)

	_, err = svc.ListProducts(ctx, WigListQuery{StartDate: "17/10/2026"})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "start_date", verrs[0].Field)

	_, err = svc.ListCare(ctx, WigListQuery{StartDate: "2026-10-20", EndDate: "2026-10-10"})
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "end_date", verrs[0].Field)
	assert.True(t, IsValidation(err))
}

func TestCareWig_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	svc := env.services.Wig()

	care, err := svc.CreateCare(ctx, &CareWigRequest{Client: "Awa Diop", Notes: "lavage + coiffage"}, manager)
	require.NoError(t, err)

	ready, err := svc.UpdateCare(ctx, care.ID, &CareWigRequest{Client: "Awa Diop", Status: models.CareReady, Notes: care.Notes}, manager)
	require.NoError(t, err)
	assert.Equal(t, models.CareReady, ready.Status)
	assert.Equal(t, care.Code, ready.Code)

	_, err = svc.UpdateCare(ctx, care.ID, &CareWigRequest{Client: "Awa Diop", Status: "LOST"}, manager)
	assert.True(t, IsValidation(err))

	require.NoError(t, svc.DeleteCare(ctx, care.ID))
	assert.ErrorIs(t, svc.DeleteCare(ctx, care.ID), ErrCareWigNotFound)
}
