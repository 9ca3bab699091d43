package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printloom/mockup-backend/internal/mockups/domain"
	"github.com/printloom/mockup-backend/internal/mockups/printful"
)

// SubmitMockup accepts a mockup render job for a design and dispatches it
// to the vendor. Responds 202 on acceptance; the render result arrives
// later over the vendor webhook and the owner's live connections.
func (h *Handler) SubmitMockup(c *gin.Context) {
	// Get user ID from context (set by Firebase auth middleware if authenticated)
	userID := c.GetString("firebase_uid")
	if userID == "" {
		// Fallback to header for development
		userID = c.GetHeader("X-User-Id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}
	}

	var body struct {
		DesignID       int64  `json:"design_id"`
		SourceImageURL string `json:"source_image_url"`
		VariantRef     int64  `json:"variant_ref"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	job := &domain.DispatchJob{
		DesignID:       body.DesignID,
		SourceImageURL: body.SourceImageURL,
		VariantRef:     body.VariantRef,
	}

	if err := h.dispatch.Dispatch(c.Request.Context(), userID, job); err != nil {
		var (
			validationErr *domain.ValidationError
			vendorErr     *printful.VendorError
		)
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		case errors.Is(err, domain.ErrDesignNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "design not found"})
		case errors.Is(err, domain.ErrAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		case errors.Is(err, domain.ErrAlreadyDispatched):
			c.JSON(http.StatusConflict, gin.H{"error": "design already has a mockup task in flight"})
		case errors.Is(err, domain.ErrVendorNotConfigured):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "mockup generation is not configured"})
		case errors.As(err, &vendorErr):
			c.JSON(http.StatusBadGateway, gin.H{
				"error":         "vendor rejected mockup task",
				"vendor_status": vendorErr.Status,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to dispatch mockup task"})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":    "accepted",
		"design_id": body.DesignID,
	})
}
