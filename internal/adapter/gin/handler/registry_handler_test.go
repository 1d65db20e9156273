package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-registry/internal/domain/user"
	"user-registry/internal/usecase/registry"
	pkgerrors "user-registry/pkg/errors"
)

// MockUsecase is a mock implementation of registry.Usecase
type MockUsecase struct {
	mock.Mock
}

func (m *MockUsecase) Snapshot() domain.Snapshot {
	return m.Called().Get(0).(domain.Snapshot)
}

func (m *MockUsecase) Ready() <-chan struct{} {
	return m.Called().Get(0).(<-chan struct{})
}

func (m *MockUsecase) Subscribe() (<-chan domain.Snapshot, func()) {
	args := m.Called()
	return args.Get(0).(<-chan domain.Snapshot), args.Get(1).(func())
}

func (m *MockUsecase) ListUsers(ctx context.Context, in registry.ListUsersRequest) (*registry.ListUsersResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.ListUsersResponse), args.Error(1)
}

func (m *MockUsecase) BeginCreate(ctx context.Context) domain.Snapshot {
	return m.Called(ctx).Get(0).(domain.Snapshot)
}

func (m *MockUsecase) BeginEdit(ctx context.Context, id int64) (domain.Snapshot, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Snapshot), args.Error(1)
}

func (m *MockUsecase) SetDraft(ctx context.Context, d domain.Draft) domain.Snapshot {
	return m.Called(ctx, d).Get(0).(domain.Snapshot)
}

func (m *MockUsecase) Submit(ctx context.Context) (*registry.Result, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Result), args.Error(1)
}

func (m *MockUsecase) SubmitDraft(ctx context.Context, d domain.Draft) (*registry.Result, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Result), args.Error(1)
}

func (m *MockUsecase) Create(ctx context.Context, in registry.CreateUserRequest) (*registry.Result, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Result), args.Error(1)
}

func (m *MockUsecase) Update(ctx context.Context, in registry.UpdateUserRequest) (*registry.Result, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Result), args.Error(1)
}

func (m *MockUsecase) Delete(ctx context.Context, id int64) domain.Snapshot {
	return m.Called(ctx, id).Get(0).(domain.Snapshot)
}

func setupTest(t *testing.T) (*gin.Engine, *RegistryHandler, *MockUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUsecase)
	handler := NewRegistryHandler(mockUsecase, zaptest.NewLogger(t))

	r := gin.New()
	return r, handler, mockUsecase
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

var (
	ada      = domain.User{ID: 1, Name: "Ada", Email: "ada@example.com"}
	readySn  = domain.Snapshot{Version: 2, Status: domain.StatusReady, Users: []domain.User{ada}, Mode: domain.ModeCreate}
	notFound = pkgerrors.NewNotFoundError("user", "user 9 not found")
)

func TestHealth(t *testing.T) {
	r, handler, mockUsecase := setupTest(t)
	r.GET("/health", handler.Health)
	mockUsecase.On("Snapshot").Return(readySn)

	w := doJSON(r, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"registry":"ready"`)
}

func TestGetSnapshot(t *testing.T) {
	r, handler, mockUsecase := setupTest(t)
	r.GET("/v1/registry", handler.GetSnapshot)
	mockUsecase.On("Snapshot").Return(readySn)

	w := doJSON(r, http.MethodGet, "/v1/registry", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var got domain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, readySn, got)
}

func TestCreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/v1/users", handler.CreateUser)

		mockUsecase.On("Create", mock.Anything, registry.CreateUserRequest{Name: "Ada", Email: "ada@example.com"}).
			Return(&registry.Result{User: ada, Snapshot: readySn}, nil)

		w := doJSON(r, http.MethodPost, "/v1/users", `{"name":"Ada","email":"ada@example.com"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp ResultResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, ada, resp.User)
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Invalid Request Body", func(t *testing.T) {
		r, handler, _ := setupTest(t)
		r.POST("/v1/users", handler.CreateUser)

		w := doJSON(r, http.MethodPost, "/v1/users", "invalid json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Validation Error", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/v1/users", handler.CreateUser)

		mockUsecase.On("Create", mock.Anything, registry.CreateUserRequest{Name: "Ada"}).
			Return(nil, pkgerrors.NewValidationError("", "Email is required"))

		w := doJSON(r, http.MethodPost, "/v1/users", `{"name":"Ada"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "validation_error", resp.Error)
		assert.Contains(t, resp.Message, "Email is required")
	})
}

func TestUpdateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.PUT("/v1/users/:id", handler.UpdateUser)

		updated := domain.User{ID: 1, Name: "Grace", Email: "grace@example.com"}
		mockUsecase.On("Update", mock.Anything, registry.UpdateUserRequest{ID: 1, Name: "Grace", Email: "grace@example.com"}).
			Return(&registry.Result{User: updated}, nil)

		w := doJSON(r, http.MethodPut, "/v1/users/1", `{"name":"Grace","email":"grace@example.com"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"Grace"`)
	})

	t.Run("Not Found", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.PUT("/v1/users/:id", handler.UpdateUser)

		mockUsecase.On("Update", mock.Anything, mock.Anything).Return(nil, notFound)

		w := doJSON(r, http.MethodPut, "/v1/users/9", `{"name":"X","email":"x@x"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "not_found")
	})

	t.Run("Invalid ID", func(t *testing.T) {
		r, handler, _ := setupTest(t)
		r.PUT("/v1/users/:id", handler.UpdateUser)

		w := doJSON(r, http.MethodPut, "/v1/users/abc", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_id")
	})
}

func TestDeleteUser(t *testing.T) {
	r, handler, mockUsecase := setupTest(t)
	r.DELETE("/v1/users/:id", handler.DeleteUser)

	empty := domain.Snapshot{Version: 3, Status: domain.StatusReady, Users: []domain.User{}, Mode: domain.ModeCreate}
	mockUsecase.On("Delete", mock.Anything, int64(1)).Return(empty)

	w := doJSON(r, http.MethodDelete, "/v1/users/1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"users":[]`)
	mockUsecase.AssertExpectations(t)
}

func TestListUsers(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/v1/users", handler.ListUsers)

		mockUsecase.On("ListUsers", mock.Anything, registry.ListUsersRequest{Query: "ada", Page: 1, Limit: 10}).
			Return(&registry.ListUsersResponse{
				Users:      []domain.User{ada},
				Pagination: domain.NewPagination(1, 1, 10),
			}, nil)

		w := doJSON(r, http.MethodGet, "/v1/users?query=ada&page=1&limit=10", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var resp ListUsersResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []domain.User{ada}, resp.Users)
		assert.Equal(t, int64(1), resp.Pagination.TotalPages)
	})

	t.Run("Invalid Limit", func(t *testing.T) {
		r, handler, _ := setupTest(t)
		r.GET("/v1/users", handler.ListUsers)

		w := doJSON(r, http.MethodGet, "/v1/users?limit=0&page=-1", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Invalid Query", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/v1/users", handler.ListUsers)

		mockUsecase.On("ListUsers", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewValidationError("query", "search query contains invalid characters"))

		w := doJSON(r, http.MethodGet, "/v1/users?query=%3Cscript%3E", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDraftFlow(t *testing.T) {
	editing := int64(1)
	editSn := domain.Snapshot{Status: domain.StatusReady, Users: []domain.User{ada}, Draft: domain.DraftOf(ada), EditingID: &editing, Mode: domain.ModeEdit}

	t.Run("BeginEdit", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/v1/users/:id/edit", handler.BeginEdit)
		mockUsecase.On("BeginEdit", mock.Anything, int64(1)).Return(editSn, nil)

		w := doJSON(r, http.MethodPost, "/v1/users/1/edit", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"mode":"edit"`)
	})

	t.Run("BeginEdit Not Found", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/v1/users/:id/edit", handler.BeginEdit)
		mockUsecase.On("BeginEdit", mock.Anything, int64(9)).Return(readySn, notFound)

		w := doJSON(r, http.MethodPost, "/v1/users/9/edit", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("SetDraft", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.PUT("/v1/draft", handler.SetDraft)
		d := domain.Draft{Name: "Grace", Email: "g@x"}
		mockUsecase.On("SetDraft", mock.Anything, d).Return(domain.Snapshot{Draft: d, Mode: domain.ModeCreate})

		w := doJSON(r, http.MethodPut, "/v1/draft", `{"name":"Grace","email":"g@x"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUsecase.AssertExpectations(t)
	})

	t.Run("BeginCreate", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/v1/draft/new", handler.BeginCreate)
		mockUsecase.On("BeginCreate", mock.Anything).Return(readySn)

		w := doJSON(r, http.MethodPost, "/v1/draft/new", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Submit Blank Draft", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/v1/draft/submit", handler.Submit)
		mockUsecase.On("Submit", mock.Anything).Return(nil, pkgerrors.NewValidationError("", "Name is required, Email is required"))

		w := doJSON(r, http.MethodPost, "/v1/draft/submit", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Submit Internal Error", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/v1/draft/submit", handler.Submit)
		mockUsecase.On("Submit", mock.Anything).Return(nil, pkgerrors.NewInternalError("boom", nil))

		w := doJSON(r, http.MethodPost, "/v1/draft/submit", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "boom")
	})
}

func TestEvents(t *testing.T) {
	r, handler, mockUsecase := setupTest(t)
	r.GET("/v1/registry/events", handler.Events)

	ch := make(chan domain.Snapshot, 1)
	ch <- readySn
	canceled := make(chan struct{})
	mockUsecase.On("Subscribe").Return((<-chan domain.Snapshot)(ch), func() { close(canceled) })

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/registry/events", nil).WithContext(ctx)
	r.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, "event:snapshot")
	assert.Contains(t, body, `"version":2`)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	select {
	case <-canceled:
	default:
		t.Fatal("subscription was not canceled")
	}
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "conflict", errorCode(http.StatusConflict))
	assert.Equal(t, "error", errorCode(http.StatusTeapot))
}
