package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/backoffice-service/internal/integrations/loyverse"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

// MockReceiptFetcher is a mock implementation of ReceiptFetcher
type MockReceiptFetcher struct {
	mock.Mock
}

func (m *MockReceiptFetcher) FetchReceipts(ctx context.Context, token string, since *time.Time) ([]loyverse.Receipt, error) {
	args := m.Called(ctx, token, since)
	if receipts := args.Get(0); receipts != nil {
		return receipts.([]loyverse.Receipt), args.Error(1)
	}
	return nil, args.Error(1)
}

func receiptAt(id string, at time.Time, total float64) loyverse.Receipt {
	raw, _ := json.Marshal(map[string]interface{}{"receipt_number": id, "total_money": total})
	return loyverse.Receipt{
		ReceiptID:     id,
		ReceiptNumber: "1-" + id,
		ReceiptDate:   &at,
		TotalMoney:    total,
		Raw:           raw,
	}
}

func TestSyncReceipts_UsesStoreTokenAndUpserts(t *testing.T) {
	fetcher := new(MockReceiptFetcher)
	env := newTestEnv(t, fetcher)
	ctx := context.Background()

	require.NoError(t, env.db.Create(&models.LoyverseStore{Name: "Salon Centre", Token: "store-token", IsActive: true}).Error)

	first := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	fetcher.On("FetchReceipts", mock.Anything, "store-token", (*time.Time)(nil)).
		Return([]loyverse.Receipt{receiptAt("a1", first, 45.5), receiptAt("a2", first.Add(time.Hour), 20)}, nil).Once()

	result, err := env.services.Loyverse().SyncReceipts(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)

	// the next run resumes from the newest stored receipt
	fetcher.On("FetchReceipts", mock.Anything, "store-token", mock.MatchedBy(func(since *time.Time) bool {
		return since != nil && since.Equal(first.Add(time.Hour))
	})).Return([]loyverse.Receipt{receiptAt("a2", first.Add(time.Hour), 25)}, nil).Once()

	result, err = env.services.Loyverse().SyncReceipts(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)

	list, err := env.services.Loyverse().ListReceipts(ctx, repositories.ReceiptFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)

	fetcher.AssertExpectations(t)
}

func TestSyncReceipts_NotConfigured(t *testing.T) {
	env := newTestEnv(t, new(MockReceiptFetcher))

	_, err := env.services.Loyverse().SyncReceipts(context.Background(), nil)
	assert.ErrorIs(t, err, ErrLoyverseNotConfigured)

	withoutClient := newTestEnv(t, nil)
	_, err = withoutClient.services.Loyverse().SyncReceipts(context.Background(), nil)
	assert.ErrorIs(t, err, ErrLoyverseNotConfigured)
}

func TestSyncReceipts_FetchErrorStoresNothing(t *testing.T) {
	fetcher := new(MockReceiptFetcher)
	env := newTestEnv(t, fetcher)
	ctx := context.Background()
	require.NoError(t, env.db.Create(&models.LoyverseStore{Name: "Salon", Token: "tok", IsActive: true}).Error)

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fetcher.On("FetchReceipts", mock.Anything, "tok", &since).Return(nil, errors.New("loyverse unavailable")).Once()

	_, err := env.services.Loyverse().SyncReceipts(ctx, &since)
	require.Error(t, err)

	list, err := env.services.Loyverse().ListReceipts(ctx, repositories.ReceiptFilters{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}
