package seed

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/backoffice-service/internal/config"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/backoffice-service/internal/services"
	"github.com/SAP-F-2025/backoffice-service/pkg"
)

const sampleCatalog = `
users:
  - username: gerante
    password: changeme-please
    role: OWNER
categories:
  - name: Coiffure
    services:
      - name: Brushing
        price: "25.00"
      - name: Coupe femme
        price: "35.50"
inventory:
  - name: Shampooing pro
    sku: SH-001
    category: CONSUMABLE
    min_stock: 2
    quantity: 6
courses:
  - title: Fondamentaux du salon
    duration_weeks: 2
    modules:
      - week: 1
        title: Accueil client
        lessons:
          - title: Premier contact
            type: COURSE
            duration_minutes: 20
            quiz:
              title: Quiz accueil
              max_attempts: 3
              questions:
                - type: MCQ
                  prompt: Que faire en premier ?
                  points: 1
                  choices:
                    - text: Saluer le client
                      correct: true
                    - text: Encaisser
`

func newSeeder(t *testing.T) (*Seeder, services.ServiceManager) {
	t.Helper()
	cfg := &config.Config{
		DatabaseDriver: "sqlite",
		DatabaseURL:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	db, err := pkg.InitDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sm := services.NewServiceManager(services.Dependencies{Repo: postgres.NewRepository(db), Config: cfg, Logger: logger})
	return NewSeeder(sm, services.Actor{Role: models.RoleOwner}, logger), sm
}

func TestLoad(t *testing.T) {
	catalog, err := Load(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, catalog.Categories, 1)
	assert.Len(t, catalog.Categories[0].Services, 2)
	require.NotNil(t, catalog.Courses[0].Modules[0].Lessons[0].Quiz)
	assert.True(t, catalog.Courses[0].Modules[0].Lessons[0].Quiz.Questions[0].Choices[0].Correct)

	_, err = Load(strings.NewReader("categorys:\n  - name: typo\n"))
	assert.Error(t, err, "unknown keys are rejected")

	empty, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Courses)
}

func TestApply_IsIdempotent(t *testing.T) {
	seeder, sm := newSeeder(t)
	ctx := context.Background()
	catalog, err := Load(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	result, err := seeder.Apply(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Users)
	assert.Equal(t, 1, result.Categories)
	assert.Equal(t, 2, result.Services)
	assert.Equal(t, 1, result.Items)
	assert.Equal(t, 1, result.Courses)
	assert.Equal(t, 1, result.Lessons)
	assert.Equal(t, 1, result.Questions)

	items, err := sm.Inventory().ListItems(ctx, repositories.InventoryFilters{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	moves, err := sm.Inventory().ListMoves(ctx, items[0].ID)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, 6, moves[0].Qty)

	again, err := seeder.Apply(ctx, catalog)
	require.NoError(t, err)
	assert.Zero(t, again.Courses)
	assert.Zero(t, again.Services)
	assert.Equal(t, 6, again.Skipped)

	courses, err := sm.Course().ListCourses(ctx, false)
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}
