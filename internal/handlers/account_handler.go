package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/backoffice-service/internal/auth"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/services"
	"github.com/SAP-F-2025/backoffice-service/internal/utils"
)

type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// AccountHandler serves login, users and clients
type AccountHandler struct {
	BaseHandler
	userService   services.UserService
	clientService services.ClientService
}

func NewAccountHandler(userService services.UserService, clientService services.ClientService, logger utils.Logger) *AccountHandler {
	return &AccountHandler{
		BaseHandler:   NewBaseHandler(logger),
		userService:   userService,
		clientService: clientService,
	}
}

// Login exchanges a username and password for a bearer token
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body services.LoginRequest true "Credentials"
// @Success 200 {object} services.LoginResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Login attempt", "username", req.Username)

	resp, err := h.userService.Authenticate(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the identity carried by the bearer token
// @Summary Current identity
// @Tags auth
// @Produce json
// @Success 200 {object} auth.Identity
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AccountHandler) Me(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}
	c.JSON(http.StatusOK, identity)
}

// ===== USERS =====

// CreateUser registers a back-office account
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param request body services.CreateUserRequest true "User data"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /users [post]
func (h *AccountHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating user", "username", req.Username, "role", req.Role)

	user, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ListUsers returns a page of accounts
// @Summary List users
// @Tags users
// @Produce json
// @Param search query string false "Username or name fragment"
// @Param role query string false "Role filter"
// @Param is_active query bool false "Active filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.UserListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /users [get]
func (h *AccountHandler) ListUsers(c *gin.Context) {
	filters := repositories.UserFilters{
		Search:     c.Query("search"),
		Pagination: parsePagination(c),
	}
	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		filters.Role = &r
	}
	if c.Query("is_active") != "" {
		active := parseBoolQuery(c, "is_active")
		filters.IsActive = &active
	}

	users, err := h.userService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// @Summary Get user
// @Tags users
// @Produce json
// @Param id path uint true "User ID"
// @Success 200 {object} models.User
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *AccountHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Update user role
// @Description Only owners and admins may change roles
// @Tags users
// @Accept json
// @Produce json
// @Param id path uint true "User ID"
// @Param request body UpdateRoleRequest true "New role"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id}/role [put]
func (h *AccountHandler) UpdateRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating user role", "target_user_id", id, "role", req.Role)

	user, err := h.userService.UpdateRole(c.Request.Context(), id, req.Role, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Activate or deactivate user
// @Tags users
// @Accept json
// @Produce json
// @Param id path uint true "User ID"
// @Param request body SetActiveRequest true "Active flag"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id}/active [put]
func (h *AccountHandler) SetActive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.SetActive(c.Request.Context(), id, *req.IsActive, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ===== CLIENTS =====

// @Summary Create client
// @Tags clients
// @Accept json
// @Produce json
// @Param request body services.ClientRequest true "Client data"
// @Success 201 {object} models.Client
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /clients [post]
func (h *AccountHandler) CreateClient(c *gin.Context) {
	var req services.ClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, client)
}

// @Summary List clients
// @Tags clients
// @Produce json
// @Param search query string false "Name, phone or email fragment"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.ClientListResponse
// @Failure 400 {object} ErrorResponse
// @Router /clients [get]
func (h *AccountHandler) ListClients(c *gin.Context) {
	clients, err := h.clientService.List(c.Request.Context(), repositories.ClientFilters{
		Search:     c.Query("search"),
		Pagination: parsePagination(c),
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, clients)
}

// @Summary Get client
// @Tags clients
// @Produce json
// @Param id path uint true "Client ID"
// @Success 200 {object} models.Client
// @Failure 404 {object} ErrorResponse
// @Router /clients/{id} [get]
func (h *AccountHandler) GetClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	client, err := h.clientService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, client)
}

// @Summary Update client
// @Tags clients
// @Accept json
// @Produce json
// @Param id path uint true "Client ID"
// @Param request body services.ClientRequest true "Client data"
// @Success 200 {object} models.Client
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /clients/{id} [put]
func (h *AccountHandler) UpdateClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient removes a client account
// @Summary Delete client
// @Tags clients
// @Produce json
// @Param id path uint true "Client ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /clients/{id} [delete]
func (h *AccountHandler) DeleteClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting client", "client_id", id)

	if err := h.clientService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
