package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

func (e *testEnv) recurringTemplate(t *testing.T, name string, interval int) *models.TaskTemplate {
	t.Helper()
	ctx := context.Background()

	rule, err := e.services.Task().CreateRule(ctx, &RecurrenceRuleRequest{
		Name:      name,
		Frequency: models.FrequencyDaily,
		Interval:  interval,
	})
	require.NoError(t, err)

	template, err := e.services.Task().CreateTemplate(ctx, &TaskTemplateRequest{
		Name:             name,
		RecurrenceRuleID: &rule.ID,
		Checklist:        []string{"Désinfecter les postes", "Vider les bacs"},
	})
	require.NoError(t, err)
	return template
}

func TestGenerateRecurringTasks_OncePerDay(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	template := env.recurringTemplate(t, "Ouverture", 1)

	today := time.Now()
	result, err := env.services.Task().GenerateRecurringTasks(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Skipped)
	require.Len(t, result.TaskIDs, 1)

	again, err := env.services.Task().GenerateRecurringTasks(ctx, today.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 1, again.Skipped)

	task, err := env.services.Task().GetTask(ctx, result.TaskIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "Ouverture", task.Title)
	assert.Equal(t, models.TaskTodo, task.Status)
	require.NotNil(t, task.TemplateID)
	assert.Equal(t, template.ID, *task.TemplateID)
	assert.Len(t, task.ChecklistItems, 2)

	tomorrow, err := env.services.Task().GenerateRecurringTasks(ctx, today.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, tomorrow.Created)

	list, err := env.services.Task().ListTasks(ctx, repositories.TaskFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
}

func TestGenerateRecurringTasks_RespectsInterval(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.recurringTemplate(t, "Inventaire bacs", 2)

	today := time.Now()
	created := make([]int, 0, 3)
	for offset := 0; offset < 3; offset++ {
		result, err := env.services.Task().GenerateRecurringTasks(ctx, today.AddDate(0, 0, offset))
		require.NoError(t, err)
		created = append(created, result.Created)
	}
	assert.Equal(t, []int{1, 0, 1}, created)

	yesterday, err := env.services.Task().GenerateRecurringTasks(ctx, today.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Equal(t, 0, yesterday.Created, "rules never fire before they exist")
}

func TestTaskChecklistAndStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	assignee := env.createUser(t, "hugo", models.RoleStaff)

	task, err := env.services.Task().CreateTask(ctx, &CreateTaskRequest{
		Title:        "Commander les colorations",
		AssignedToID: &assignee.ID,
		Checklist:    []string{"Vérifier le stock"},
	}, manager)
	require.NoError(t, err)
	require.Len(t, task.ChecklistItems, 1)

	item, err := env.services.Task().SetChecklistItem(ctx, task.ID, task.ChecklistItems[0].ID, true)
	require.NoError(t, err)
	assert.True(t, item.IsDone)

	_, err = env.services.Task().SetChecklistItem(ctx, task.ID+100, task.ChecklistItems[0].ID, true)
	assert.ErrorIs(t, err, ErrChecklistItemNotFound)

	done, err := env.services.Task().SetStatus(ctx, task.ID, models.TaskDone, manager)
	require.NoError(t, err)
	assert.Equal(t, models.TaskDone, done.Status)

	_, err = env.services.Task().SetStatus(ctx, task.ID, "ARCHIVED", manager)
	assert.True(t, IsValidation(err))

	missing := uint(777)
	_, err = env.services.Task().CreateTask(ctx, &CreateTaskRequest{Title: "x", AssignedToID: &missing}, manager)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
