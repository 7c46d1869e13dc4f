package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/backoffice-service/internal/config"
	"github.com/SAP-F-2025/backoffice-service/internal/services"
)

type MockReceiptSyncer struct {
	mock.Mock
}

func (m *MockReceiptSyncer) SyncReceipts(ctx context.Context, since *time.Time) (*services.SyncResult, error) {
	args := m.Called(ctx, since)
	if result := args.Get(0); result != nil {
		return result.(*services.SyncResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockTaskGenerator struct {
	mock.Mock
}

func (m *MockTaskGenerator) GenerateRecurringTasks(ctx context.Context, date time.Time) (*services.GenerationResult, error) {
	args := m.Called(ctx, date)
	if result := args.Get(0); result != nil {
		return result.(*services.GenerationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_RegistersConfiguredJobs(t *testing.T) {
	cfg := config.SchedulerConfig{LoyverseSyncSpec: "*/30 * * * *", RecurringTasks: "5 0 * * *", Timezone: "Europe/Paris"}

	s, err := New(cfg, new(MockReceiptSyncer), new(MockTaskGenerator), discardLogger())
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 2)
	assert.Equal(t, "Europe/Paris", s.location.String())

	s, err = New(config.SchedulerConfig{RecurringTasks: "5 0 * * *"}, nil, new(MockTaskGenerator), discardLogger())
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 1)
}

func TestNew_RejectsInvalidSettings(t *testing.T) {
	_, err := New(config.SchedulerConfig{LoyverseSyncSpec: "every now and then"}, new(MockReceiptSyncer), nil, discardLogger())
	assert.Error(t, err)

	_, err = New(config.SchedulerConfig{Timezone: "Mars/Olympus"}, nil, nil, discardLogger())
	assert.Error(t, err)
}

func TestRunJobs(t *testing.T) {
	receipts := new(MockReceiptSyncer)
	tasks := new(MockTaskGenerator)
	s, err := New(config.SchedulerConfig{Timezone: "Europe/Paris"}, receipts, tasks, discardLogger())
	require.NoError(t, err)

	receipts.On("SyncReceipts", mock.Anything, (*time.Time)(nil)).Return(&services.SyncResult{Fetched: 3, Created: 3}, nil).Once()
	receipts.On("SyncReceipts", mock.Anything, (*time.Time)(nil)).Return(nil, errors.New("timeout")).Once()
	tasks.On("GenerateRecurringTasks", mock.Anything, mock.MatchedBy(func(date time.Time) bool {
		return date.Location().String() == "Europe/Paris"
	})).Return(&services.GenerationResult{Created: 2}, nil).Once()

	s.RunReceiptSync(context.Background())
	s.RunReceiptSync(context.Background())
	s.RunRecurringTasks(context.Background())

	receipts.AssertExpectations(t)
	tasks.AssertExpectations(t)
}

func TestStartStop(t *testing.T) {
	s, err := New(config.SchedulerConfig{RecurringTasks: "5 0 * * *"}, nil, new(MockTaskGenerator), discardLogger())
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
