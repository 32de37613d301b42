package resumes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resumehub/internal/growhire"
	"resumehub/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resume", h.create)
	rg.GET("/resume", h.listAll)
	rg.GET("/resume/search", h.search)
	rg.GET("/resume/:id", h.byID)
	rg.PATCH("/resume/:id", h.update)
	rg.DELETE("/resume/:id", h.remove)
	rg.POST("/resume/sendtogrowhire/:id", h.sendToGrowHire)
}

func (h *Handler) create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	profile, fields, err := parseMetadata(c.PostForm("jsonData"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "jsonData must be a JSON object", nil)
		return
	}

	res, err := h.Svc.Create(c.Request.Context(), fileHeader.Filename, data, profile, fields)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrStorage):
			respond.Error(c, http.StatusBadGateway, "create_failed", "failed to store resume file", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create resume", nil)
		}
		return
	}

	respond.Created(c, toResponse(res))
}

func (h *Handler) byID(c *gin.Context) {
	res, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondLookupError(c, err, "failed to fetch resume")
		return
	}
	respond.OK(c, toResponse(res))
}

func (h *Handler) listAll(c *gin.Context) {
	list, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list resumes", nil)
		return
	}

	resp := make([]ResumeResponse, 0, len(list))
	for _, res := range list {
		resp = append(resp, toResponse(res))
	}
	respond.OK(c, resp)
}

func (h *Handler) search(c *gin.Context) {
	page := 1
	if v := c.Query("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}

	limit := 10
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	result, err := h.Svc.Search(c.Request.Context(), page, limit, parseKeywords(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to search resumes", nil)
		return
	}
	respond.OK(c, toSearchResponse(result))
}

func (h *Handler) update(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	res, err := h.Svc.Update(c.Request.Context(), c.Param("id"), splitPatch(body))
	if err != nil {
		h.respondLookupError(c, err, "failed to update resume")
		return
	}
	respond.OK(c, toResponse(res))
}

func (h *Handler) remove(c *gin.Context) {
	res, err := h.Svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondLookupError(c, err, "failed to delete resume")
		return
	}
	respond.OK(c, toResponse(res))
}

type forwardRequest struct {
	CookieString string `json:"cookieString"`
	JobID        string `json:"jobId"`
}

func (h *Handler) sendToGrowHire(c *gin.Context) {
	var req forwardRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}

	result, err := h.Svc.Forward(c.Request.Context(), c.Param("id"), req.CookieString, req.JobID)
	if err != nil {
		var downloadErr *growhire.DownloadError
		var forwardErr *growhire.ForwardError
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrMissingCredential):
			respond.Error(c, http.StatusBadRequest, "missing_credential", "no session cookie supplied or stored", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.As(err, &downloadErr):
			respond.Error(c, http.StatusBadGateway, "download_failed", "failed to download stored resume file", nil)
		case errors.As(err, &forwardErr):
			respond.Error(c, http.StatusBadGateway, "forward_failed", "growhire rejected the candidate", gin.H{
				"upstreamStatus": forwardErr.StatusCode,
				"upstreamBody":   forwardErr.Body,
			})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to forward resume", nil)
		}
		return
	}

	respond.OK(c, result)
}

func (h *Handler) respondLookupError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

// parseMetadata decodes the jsonData form part: the "profile" key becomes the
// structured profile, everything else lands in the free-form fields.
func parseMetadata(raw string) (Profile, map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return Profile{}, nil, nil
	}

	var meta map[string]any
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return Profile{}, nil, err
	}

	var profile Profile
	if rawProfile, ok := meta["profile"]; ok {
		profileJSON, err := json.Marshal(rawProfile)
		if err != nil {
			return Profile{}, nil, err
		}
		if err := json.Unmarshal(profileJSON, &profile); err != nil {
			return Profile{}, nil, err
		}
		delete(meta, "profile")
	}

	// The id and the blob reference are assigned server-side.
	delete(meta, "id")
	delete(meta, "resumePdf")

	if len(meta) == 0 {
		meta = nil
	}
	return profile, meta, nil
}

// splitPatch partitions an update body into profile and free-form merges.
func splitPatch(body map[string]any) Patch {
	patch := Patch{}
	if rawProfile, ok := body["profile"].(map[string]any); ok {
		patch.Profile = rawProfile
		delete(body, "profile")
	}

	delete(body, "id")
	delete(body, "resumePdf")

	if len(body) > 0 {
		patch.Fields = body
	}
	return patch
}

func parseKeywords(c *gin.Context) []string {
	var keywords []string
	for _, raw := range c.QueryArray("keywords") {
		for _, kw := range strings.FieldsFunc(raw, func(r rune) bool {
			return r == ',' || r == ' '
		}) {
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
	}
	return keywords
}
