package handler

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "user-registry/internal/domain/user"
	"user-registry/internal/usecase/registry"
	"user-registry/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded HTML templates.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// FormRequest is the body posted by the HTML form.
type FormRequest struct {
	Name  string `form:"name"`
	Email string `form:"email"`
}

type pageData struct {
	Snapshot domain.Snapshot
	Error    string
}

// ViewHandler renders the registry as an HTML page and handles its form posts.
// Every post redirects back to the page.
type ViewHandler struct {
	uc  registry.Usecase
	log *zap.Logger
}

// NewViewHandler creates a new ViewHandler instance
func NewViewHandler(uc registry.Usecase, log *zap.Logger) *ViewHandler {
	return &ViewHandler{uc: uc, log: log}
}

// Index handles GET /
func (h *ViewHandler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, h.uc.Snapshot(), "")
}

// Submit handles POST /form/submit: the posted fields become the draft and
// are submitted as one registry command.
func (h *ViewHandler) Submit(c *gin.Context) {
	var req FormRequest
	if err := c.ShouldBind(&req); err != nil {
		h.render(c, http.StatusBadRequest, h.uc.Snapshot(), err.Error())
		return
	}

	ctx := c.Request.Context()
	if _, err := h.uc.SubmitDraft(ctx, domain.Draft{Name: req.Name, Email: req.Email}); err != nil {
		logger.WithContext(ctx, h.log).Warn("form submit rejected", zap.Error(err))
		h.render(c, http.StatusBadRequest, h.uc.Snapshot(), err.Error())
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// Edit handles POST /form/edit/:id
func (h *ViewHandler) Edit(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.render(c, http.StatusBadRequest, h.uc.Snapshot(), "User ID must be a valid number")
		return
	}

	snap, err := h.uc.BeginEdit(c.Request.Context(), id)
	if err != nil {
		h.render(c, http.StatusNotFound, snap, err.Error())
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// Delete handles POST /form/delete/:id
func (h *ViewHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.render(c, http.StatusBadRequest, h.uc.Snapshot(), "User ID must be a valid number")
		return
	}

	h.uc.Delete(c.Request.Context(), id)
	c.Redirect(http.StatusSeeOther, "/")
}

// New handles POST /form/new
func (h *ViewHandler) New(c *gin.Context) {
	h.uc.BeginCreate(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *ViewHandler) render(c *gin.Context, code int, s domain.Snapshot, errMsg string) {
	c.HTML(code, "index.html", pageData{Snapshot: s, Error: errMsg})
}
