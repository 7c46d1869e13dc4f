package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/config"
	"github.com/SAP-F-2025/backoffice-service/internal/events"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/notify"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/backoffice-service/pkg"
)

var (
	owner   = Actor{UserID: 1, Role: models.RoleOwner}
	manager = Actor{UserID: 1, Role: models.RoleManager}
)

type testEnv struct {
	db        *gorm.DB
	services  ServiceManager
	publisher *events.MockEventPublisher
	mailer    *notify.ConsoleMailer
}

// newTestEnv migrates a private in-memory sqlite database and wires the
// services on top of it with in-process event and mail sinks.
func newTestEnv(t *testing.T, receipts ReceiptFetcher) *testEnv {
	t.Helper()

	cfg := &config.Config{
		DatabaseDriver: "sqlite",
		DatabaseURL:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		Environment:    "test",
	}
	cfg.Certificates.VerifyBaseURL = "https://backoffice.test/verify"
	cfg.Certificates.NumberPrefix = "CERT"

	db, err := pkg.InitDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewMockEventPublisher(logger)
	mailer := notify.NewConsoleMailer(logger)

	services := NewServiceManager(Dependencies{
		Repo:      postgres.NewRepository(db),
		Publisher: publisher,
		Mailer:    mailer,
		Tokens:    fixedTokens{},
		Receipts:  receipts,
		Config:    cfg,
		Logger:    logger,
	})

	return &testEnv{db: db, services: services, publisher: publisher, mailer: mailer}
}

type fixedTokens struct{}

func (fixedTokens) Issue(user *models.User) (string, time.Time, error) {
	return "token-" + user.Username, time.Now().Add(time.Hour), nil
}

func (e *testEnv) createUser(t *testing.T, username string, role models.UserRole) *models.User {
	t.Helper()
	user, err := e.services.User().Create(context.Background(), &CreateUserRequest{
		Username: username,
		FullName: username,
		Email:    username + "@salon.test",
		Password: "correct-horse",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }
func stringPtr(v string) *string  { return &v }
