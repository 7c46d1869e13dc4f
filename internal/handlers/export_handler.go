package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/backoffice-service/internal/services"
	"github.com/SAP-F-2025/backoffice-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// ExportActivities streams the activities between ?from= and ?to= as xlsx.
// The range defaults to the last 30 days.
// @Summary Export activities
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param from query string false "Start of the range (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "End of the range (RFC3339 or YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /exports/activities [get]
func (h *ExportHandler) ExportActivities(c *gin.Context) {
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid from", err)
		return
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid to", err)
		return
	}
	end := time.Now()
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -30)
	if from != nil {
		start = *from
	}

	h.LogRequest(c, "Exporting activities", "from", start, "to", end)

	data, err := h.exportService.ExportActivities(c.Request.Context(), start, end, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendWorkbook(c, fmt.Sprintf("activities_%s_%s.xlsx", start.Format("20060102"), end.Format("20060102")), data)
}

// ExportEnrollments streams the enrollments of a course as xlsx
// @Summary Export course enrollments
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Course ID"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exports/courses/{id}/enrollments [get]
func (h *ExportHandler) ExportEnrollments(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	data, err := h.exportService.ExportEnrollments(c.Request.Context(), courseID, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendWorkbook(c, fmt.Sprintf("course_%d_enrollments.xlsx", courseID), data)
}

func (h *ExportHandler) sendWorkbook(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
