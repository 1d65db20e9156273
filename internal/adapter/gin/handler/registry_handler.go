package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "user-registry/internal/domain/user"
	"user-registry/internal/usecase/registry"
	pkgerrors "user-registry/pkg/errors"
	"user-registry/pkg/logger"
)

// RegistryHandler handles HTTP requests for registry operations
type RegistryHandler struct {
	uc  registry.Usecase
	log *zap.Logger
}

// NewRegistryHandler creates a new RegistryHandler instance
func NewRegistryHandler(uc registry.Usecase, log *zap.Logger) *RegistryHandler {
	return &RegistryHandler{
		uc:  uc,
		log: log,
	}
}

// UserRequest represents the HTTP request body for creating or updating a user.
// Blank fields are rejected by the registry.
type UserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ListUsersQuery represents the query string of GET /v1/users
type ListUsersQuery struct {
	Query string `form:"query"`
	Page  int64  `form:"page" binding:"omitempty,min=1"`
	Limit int64  `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// ListUsersResponse represents the HTTP response for listing users
type ListUsersResponse struct {
	Users      []domain.User `json:"users"`
	Pagination *Pagination   `json:"pagination,omitempty"`
}

// Pagination represents pagination information
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// ResultResponse is returned by commands that create or update a user
type ResultResponse struct {
	User     domain.User     `json:"user"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Health handles GET /health
func (h *RegistryHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "user-registry",
		"registry": h.uc.Snapshot().Status,
	})
}

// GetSnapshot handles GET /v1/registry
func (h *RegistryHandler) GetSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.uc.Snapshot())
}

// Events handles GET /v1/registry/events, streaming every new snapshot as a
// server-sent event until the client goes away.
func (h *RegistryHandler) Events(c *gin.Context) {
	ch, cancel := h.uc.Subscribe()
	defer cancel()

	logger.WithContext(c.Request.Context(), h.log).Debug("snapshot stream opened")

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("snapshot", s)
			c.Writer.Flush()
		}
	}
}

// ListUsers handles GET /v1/users
func (h *RegistryHandler) ListUsers(c *gin.Context) {
	var q ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.log.Warn("Invalid list users request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.uc.ListUsers(c.Request.Context(), registry.ListUsersRequest{
		Query: q.Query,
		Page:  q.Page,
		Limit: q.Limit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListUsersResponse{
		Users: resp.Users,
		Pagination: &Pagination{
			Total:      resp.Pagination.Total,
			Page:       resp.Pagination.Page,
			Limit:      resp.Pagination.Limit,
			TotalPages: resp.Pagination.TotalPages,
		},
	})
}

// CreateUser handles POST /v1/users
func (h *RegistryHandler) CreateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Info("Gin CreateUser request", zap.String("name", req.Name), zap.String("email", req.Email))

	res, err := h.uc.Create(c.Request.Context(), registry.CreateUserRequest{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ResultResponse{User: res.User, Snapshot: res.Snapshot})
}

// UpdateUser handles PUT /v1/users/:id
func (h *RegistryHandler) UpdateUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid update user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Info("Gin UpdateUser request", zap.Int64("id", id))

	res, err := h.uc.Update(c.Request.Context(), registry.UpdateUserRequest{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResultResponse{User: res.User, Snapshot: res.Snapshot})
}

// DeleteUser handles DELETE /v1/users/:id. Unknown ids are not an error.
func (h *RegistryHandler) DeleteUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Info("Gin DeleteUser request", zap.Int64("id", id))
	c.JSON(http.StatusOK, h.uc.Delete(c.Request.Context(), id))
}

// BeginEdit handles POST /v1/users/:id/edit
func (h *RegistryHandler) BeginEdit(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	snap, err := h.uc.BeginEdit(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// BeginCreate handles POST /v1/draft/new
func (h *RegistryHandler) BeginCreate(c *gin.Context) {
	c.JSON(http.StatusOK, h.uc.BeginCreate(c.Request.Context()))
}

// SetDraft handles PUT /v1/draft
func (h *RegistryHandler) SetDraft(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid draft request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, h.uc.SetDraft(c.Request.Context(), domain.Draft{Name: req.Name, Email: req.Email}))
}

// Submit handles POST /v1/draft/submit
func (h *RegistryHandler) Submit(c *gin.Context) {
	logger.WithContext(c.Request.Context(), h.log).Info("Gin Submit request")

	res, err := h.uc.Submit(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ResultResponse{User: res.User, Snapshot: res.Snapshot})
}

func (h *RegistryHandler) parseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.log.Warn("Invalid user ID", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "User ID must be a valid number",
		})
		return 0, false
	}
	return id, true
}

// handleError converts registry errors to HTTP responses
func (h *RegistryHandler) handleError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	var hs pkgerrors.HTTPStatuser
	if errors.As(err, &hs) {
		code = hs.HTTPStatus()
	}

	log := logger.WithContext(c.Request.Context(), h.log)
	if code >= http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		c.JSON(code, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	log.Warn("request rejected", zap.Int("status", code), zap.Error(err))
	c.JSON(code, ErrorResponse{
		Error:   errorCode(code),
		Message: err.Error(),
	})
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	default:
		return "error"
	}
}
