package webui

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed forward.html
var content embed.FS

// RegisterRoutes serves the embedded forwarding control page.
func RegisterRoutes(r *gin.Engine) {
	r.GET("/ui/forward", func(c *gin.Context) {
		data, err := content.ReadFile("forward.html")
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	})
}
