package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
)

func readSheet(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestExportActivities(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	activity := env.newActivity(t, env.activityFixture(t))

	from := activity.StartAt.Add(-time.Hour)
	to := activity.StartAt.Add(time.Hour)

	_, err := env.services.Export().ExportActivities(ctx, to, from, owner)
	assert.True(t, IsValidation(err))

	_, err = env.services.Export().ExportActivities(ctx, from, to, Actor{UserID: 9, Role: models.RoleCashier})
	assert.True(t, IsUnauthorized(err))

	data, err := env.services.Export().ExportActivities(ctx, from, to, owner)
	require.NoError(t, err)

	rows := readSheet(t, data, "Activities")
	require.Len(t, rows, 2)
	assert.Equal(t, "Activity ID", rows[0][0])
	assert.Equal(t, "Mme Diallo", rows[1][3])
	assert.Equal(t, "71.00", rows[1][7])
}

func TestExportEnrollments(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fixture := env.buildCourse(t, "Maquillage", 1)
	env.enroll(t, "alice", fixture.course)
	env.enroll(t, "zoe", fixture.course)

	_, err := env.services.Export().ExportEnrollments(ctx, 4040, owner)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	data, err := env.services.Export().ExportEnrollments(ctx, fixture.course.ID, owner)
	require.NoError(t, err)

	rows := readSheet(t, data, "Enrollments")
	require.Len(t, rows, 3)
	assert.Equal(t, "Status", rows[0][4])
	assert.Equal(t, "Maquillage", rows[1][3])
}
