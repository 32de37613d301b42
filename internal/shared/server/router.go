package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumehub/internal/resumes"
	"resumehub/internal/settings"
	"resumehub/internal/shared/config"
	"resumehub/internal/shared/server/middleware"
	"resumehub/internal/shared/server/respond"
	"resumehub/internal/webui"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config          config.Config
	ResumeHandler   *resumes.Handler
	SettingsHandler *settings.Handler

	// LocalFilesDir, when set, is served under /files so locally stored
	// resume file URLs resolve over HTTP.
	LocalFilesDir string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api/v1")
	deps.ResumeHandler.RegisterRoutes(api)
	deps.SettingsHandler.RegisterRoutes(api)

	if deps.LocalFilesDir != "" {
		r.Static("/files", deps.LocalFilesDir)
	}

	webui.RegisterRoutes(r)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
