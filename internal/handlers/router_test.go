package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/backoffice-service/internal/auth"
	"github.com/SAP-F-2025/backoffice-service/internal/config"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/backoffice-service/internal/services"
	"github.com/SAP-F-2025/backoffice-service/internal/utils"
	"github.com/SAP-F-2025/backoffice-service/pkg"
)

type apiEnv struct {
	router   *gin.Engine
	services services.ServiceManager
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		DatabaseDriver: "sqlite",
		DatabaseURL:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		Environment:    "test",
	}
	db, err := pkg.InitDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenService("test-secret", time.Hour)
	sm := services.NewServiceManager(services.Dependencies{
		Repo:   postgres.NewRepository(db),
		Tokens: tokens,
		Config: cfg,
		Logger: slogger,
	})

	router := gin.New()
	NewHandlerManager(sm, tokens, nil, utils.NewSlogLogger(slogger)).SetupRoutes(router)
	return &apiEnv{router: router, services: sm}
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// login creates the user and returns a bearer token obtained through the API
func (e *apiEnv) login(t *testing.T, username string, role models.UserRole) string {
	t.Helper()
	_, err := e.services.User().Create(t.Context(), &services.CreateUserRequest{
		Username: username,
		Password: "correct-horse",
		Role:     role,
	})
	require.NoError(t, err)

	w := e.do(t, http.MethodPost, "/api/v1/auth/login", "", services.LoginRequest{Username: username, Password: "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp services.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestHealthCheck(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "backoffice-service")
}

func TestAuthRoutes(t *testing.T) {
	env := newAPIEnv(t)
	token := env.login(t, "owner", models.RoleOwner)

	w := env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var identity auth.Identity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &identity))
	assert.Equal(t, "owner", identity.Username)
	assert.Equal(t, models.RoleOwner, identity.Role)

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", "", services.LoginRequest{Username: "owner", Password: "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/clients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorMapping(t *testing.T) {
	env := newAPIEnv(t)
	token := env.login(t, "owner", models.RoleOwner)

	w := env.do(t, http.MethodPost, "/api/v1/clients", token, services.ClientRequest{Name: "Mme Diallo", Email: "diallo@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/v1/clients/999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/clients/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/clients", token, services.ClientRequest{Name: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "Validation failed", errResp.Message)

	w = env.do(t, http.MethodPost, "/api/v1/users", token, services.CreateUserRequest{Username: "owner", Password: "another-pass"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/lms/certificates/verify/unknown-code", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActivityRoutes(t *testing.T) {
	env := newAPIEnv(t)
	ownerToken := env.login(t, "owner", models.RoleOwner)
	managerToken := env.login(t, "gerante", models.RoleManager)
	staffToken := env.login(t, "coiffeuse", models.RoleStaff)

	body := map[string]interface{}{
		"type":     "SERVICE",
		"start_at": time.Now().UTC().Format(time.RFC3339),
		"lines": []map[string]interface{}{
			{"description": "Brushing", "quantity": 1, "unit_price": "25.00"},
		},
	}
	w := env.do(t, http.MethodPost, "/api/v1/activities", staffToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var activity models.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &activity))
	assert.Equal(t, models.ActivityArrived, activity.Status)
	assert.Equal(t, "25", activity.ExpectedAmount.String())

	statusPath := "/api/v1/activities/" + uintString(activity.ID) + "/set-status"
	w = env.do(t, http.MethodPost, statusPath, staffToken, SetActivityStatusRequest{Status: "FLYING"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, statusPath, staffToken, SetActivityStatusRequest{Status: models.ActivityPaid})
	assert.Equal(t, http.StatusBadRequest, w.Code, "ARRIVED cannot jump to PAID")

	w = env.do(t, http.MethodPost, statusPath, staffToken, SetActivityStatusRequest{Status: models.ActivityInProgress})
	assert.Equal(t, http.StatusOK, w.Code)

	linkPath := "/api/v1/activities/" + uintString(activity.ID) + "/link-payment"
	w = env.do(t, http.MethodPost, linkPath, staffToken, services.LinkPaymentRequest{ManualReference: "cash"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, linkPath, ownerToken, services.LinkPaymentRequest{ManualReference: "cash"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, linkPath, managerToken, services.LinkPaymentRequest{ManualReference: "cash"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "activity is not finished yet")

	w = env.do(t, http.MethodGet, "/api/v1/activities?status=IN_PROGRESS", staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list services.ActivityListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Total)
}

func TestExportRoute(t *testing.T) {
	env := newAPIEnv(t)
	ownerToken := env.login(t, "owner", models.RoleOwner)
	cashierToken := env.login(t, "caisse", models.RoleCashier)

	w := env.do(t, http.MethodGet, "/api/v1/exports/activities?from=2026-01-01&to=2026-02-01", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "activities_20260101_20260201.xlsx")
	assert.NotZero(t, w.Body.Len())

	w = env.do(t, http.MethodGet, "/api/v1/exports/activities", cashierToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestContentRoutes(t *testing.T) {
	env := newAPIEnv(t)
	ownerToken := env.login(t, "patronne", models.RoleOwner)
	managerToken := env.login(t, "gerante", models.RoleManager)
	cashierToken := env.login(t, "caisse", models.RoleCashier)

	w := env.do(t, http.MethodPost, "/api/v1/content", cashierToken, services.ContentItemRequest{Title: "Story"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/content", managerToken, services.ContentItemRequest{
		Title:  "Tuto tresses",
		Status: models.ContentBrief,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item models.ContentItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	base := "/api/v1/content/" + strconv.FormatUint(uint64(item.ID), 10)

	w = env.do(t, http.MethodGet, "/api/v1/content?status=BRIEF", cashierToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list services.ContentListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.EqualValues(t, 1, list.Total)

	w = env.do(t, http.MethodPost, base+"/submit", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, base+"/approve", managerToken, services.ContentReviewRequest{Comment: "ok"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, base+"/approve", ownerToken, services.ContentReviewRequest{Comment: "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, base+"/approve", ownerToken, services.ContentReviewRequest{Comment: "Parfait"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, base+"/publish", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, base+"/metrics", managerToken, services.ContentMetricRequest{Likes: 8, Comments: 2, Reach: 50})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, base, cashierToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.Equal(t, models.ContentMetricsRecorded, item.Status)
	assert.Equal(t, "20", item.PerformanceScore.String())

	w = env.do(t, http.MethodGet, "/api/v1/content/999", cashierToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWigRoutes(t *testing.T) {
	env := newAPIEnv(t)
	staffToken := env.login(t, "styliste", models.RoleStaff)
	cashierToken := env.login(t, "caisse", models.RoleCashier)

	w := env.do(t, http.MethodPost, "/api/v1/wigs/care", cashierToken, services.CareWigRequest{Client: "Awa Diop"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/wigs/care", staffToken, services.CareWigRequest{Client: "Awa Diop"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var care models.CareWig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &care))
	assert.Regexp(t, `^CARE-\d{4}-0001$`, care.Code)

	w = env.do(t, http.MethodPost, "/api/v1/wigs/products", staffToken, map[string]interface{}{"name": "Bob ondulé", "price": "120.00"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product models.WigProduct
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	assert.Regexp(t, `^WIG-\d{4}-0001$`, product.Code)

	w = env.do(t, http.MethodGet, "/api/v1/wigs/care?q=awa", cashierToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var careList []models.CareWig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &careList))
	assert.Len(t, careList, 1)

	w = env.do(t, http.MethodGet, "/api/v1/wigs/products?start_date=2026-10-20&end_date=2026-10-10", cashierToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "end_date")

	w = env.do(t, http.MethodDelete, "/api/v1/wigs/products/"+strconv.FormatUint(uint64(product.ID), 10), staffToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
