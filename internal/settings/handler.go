package settings

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumehub/internal/shared/server/respond"
)

// Handler exposes the forwarding defaults over HTTP.
type Handler struct {
	Store *Store
}

// NewHandler constructs a Handler.
func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes attaches settings routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/settings/growhire", h.get)
	rg.PUT("/settings/growhire", h.put)
}

type growhireSettings struct {
	JobID    string `json:"jobId"`
	CookieID string `json:"cookieId"`
}

func (h *Handler) get(c *gin.Context) {
	respond.OK(c, growhireSettings{
		JobID:    h.Store.Get(KeyJobID),
		CookieID: h.Store.Get(KeyCookie),
	})
}

func (h *Handler) put(c *gin.Context) {
	var req growhireSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if err := h.Store.Set(KeyJobID, strings.TrimSpace(req.JobID)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save settings", nil)
		return
	}
	if err := h.Store.Set(KeyCookie, strings.TrimSpace(req.CookieID)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save settings", nil)
		return
	}

	respond.OK(c, growhireSettings{
		JobID:    h.Store.Get(KeyJobID),
		CookieID: h.Store.Get(KeyCookie),
	})
}
