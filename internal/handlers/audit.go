package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/evanshaw/resguard/internal/services"
	"github.com/evanshaw/resguard/pkg/errors"
	"github.com/evanshaw/resguard/pkg/response"
)

// AuditHandler exposes the read side of the audit trail.
type AuditHandler struct {
	svc *services.AuditService
}

// NewAuditHandler builds the handler on the shared database handle.
func NewAuditHandler(db *gorm.DB) (*AuditHandler, error) {
	svc, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	return &AuditHandler{svc: svc}, nil
}

// GET /api/audit
func (h *AuditHandler) List(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 100)

	entries, err := h.svc.List(requestContext(c), c.Query("action"), limit)
	if err != nil {
		response.Error(c, errors.Wrap(err, "failed to list audit entries"))
		return
	}

	response.Success(c, http.StatusOK, entries)
}
