package http

import "github.com/gin-gonic/gin"

// RegisterVendorWebhookRoutes registers routes intended to be called by the
// print vendor (no Firebase auth; shared-secret header instead).
func (h *Handler) RegisterVendorWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/vendor", h.VendorWebhook)
}
