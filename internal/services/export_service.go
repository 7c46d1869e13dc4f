package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

const (
	exportTimeLayout = "2006-01-02 15:04"
	exportPageSize   = 200
)

type exportService struct {
	repo     repositories.Repository
	audit    *auditRecorder
	logger   *slog.Logger
	opLogger *ServiceLogger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	opLogger := NewServiceLogger(logger, LogConfig{Service: "export", Component: "xlsx"})
	return &exportService{
		repo:     repo,
		audit:    newAuditRecorder(repo, opLogger),
		logger:   logger,
		opLogger: opLogger,
	}
}

// ExportEnrollments writes one row per enrollment of the course
func (s *exportService) ExportEnrollments(ctx context.Context, courseID uint, actor Actor) ([]byte, error) {
	op := s.opLogger.WithOperation(ctx, "export_enrollments", actor.UserID)

	if err := requireSupervisor(actor, courseID, "course", "export"); err != nil {
		op.LogResult(courseID, "course", err)
		return nil, err
	}
	if _, err := s.repo.Catalog().GetCourse(ctx, nil, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	var enrollments []*models.Enrollment
	filters := repositories.EnrollmentFilters{CourseID: &courseID}
	filters.Limit = exportPageSize
	for {
		page, total, err := s.repo.Enrollment().List(ctx, nil, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list enrollments: %w", err)
		}
		enrollments = append(enrollments, page...)
		filters.Offset += len(page)
		if len(page) == 0 || int64(filters.Offset) >= total {
			break
		}
	}

	headers := []string{"Enrollment ID", "User", "Email", "Course", "Status", "Progress %", "Started At", "Completed At"}
	rows := make([][]interface{}, 0, len(enrollments))
	for _, e := range enrollments {
		row := []interface{}{e.ID, "", "", "", string(e.Status), e.ProgressPercent, e.StartedAt.Format(exportTimeLayout), ""}
		if e.User != nil {
			row[1] = e.User.DisplayName()
			row[2] = e.User.Email
		}
		if e.Course != nil {
			row[3] = e.Course.Title
		}
		if e.CompletedAt != nil {
			row[7] = e.CompletedAt.Format(exportTimeLayout)
		}
		rows = append(rows, row)
	}

	data, err := writeSheet("Enrollments", headers, rows)
	if err != nil {
		op.LogResult(courseID, "course", err)
		return nil, err
	}

	err = s.recordExport(ctx, actor, courseID, "course", "enrollments", len(rows))
	op.LogResult(courseID, "course", err)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ExportActivities writes the activities that started in [from, to)
func (s *exportService) ExportActivities(ctx context.Context, from, to time.Time, actor Actor) ([]byte, error) {
	op := s.opLogger.WithOperation(ctx, "export_activities", actor.UserID)

	if err := requireSupervisor(actor, 0, "activity", "export"); err != nil {
		op.LogResult(0, "activity", err)
		return nil, err
	}
	if !to.After(from) {
		return nil, validationFailure("to", "must be after from", to)
	}

	activities, err := s.repo.Activity().ListBetween(ctx, nil, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	headers := []string{
		"Activity ID", "Type", "Status", "Client", "Staff", "Start", "End",
		"Lines Total", "Expected Amount", "Final Amount", "Notes",
	}
	rows := make([][]interface{}, 0, len(activities))
	for _, a := range activities {
		row := []interface{}{
			a.ID, string(a.Type), string(a.Status), "", "", a.StartAt.Format(exportTimeLayout), "",
			a.LinesTotal().StringFixed(2), a.ExpectedAmount.StringFixed(2), "", a.Notes,
		}
		if a.Client != nil {
			row[3] = a.Client.Name
		}
		if a.AssignedStaff != nil {
			row[4] = a.AssignedStaff.DisplayName()
		}
		if a.EndAt != nil {
			row[6] = a.EndAt.Format(exportTimeLayout)
		}
		if a.FinalAmount.Valid {
			row[9] = a.FinalAmount.Decimal.StringFixed(2)
		}
		rows = append(rows, row)
	}

	data, err := writeSheet("Activities", headers, rows)
	if err != nil {
		op.LogResult(0, "activity", err)
		return nil, err
	}

	err = s.recordExport(ctx, actor, 0, "activity", "activities", len(rows))
	op.LogResult(0, "activity", err)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *exportService) recordExport(ctx context.Context, actor Actor, resourceID uint, resourceType, dataset string, rows int) error {
	return s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.audit.Record(ctx, tx, actor, AuditEvent{
			Type:         models.AuditDataExported,
			ResourceID:   resourceID,
			ResourceType: resourceType,
			Action:       "export",
			Metadata:     map[string]interface{}{"dataset": dataset, "rows": rows},
		})
	})
}

// writeSheet renders a single sheet workbook with a header row
func writeSheet(sheetName string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for r, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", r+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
