package http

import "github.com/gin-gonic/gin"

// Register registers the user-facing mockup routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/mockups", h.SubmitMockup)
}
