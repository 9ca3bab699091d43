package http

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printloom/mockup-backend/internal/mockups/domain"
)

// webhookEnvelope is the vendor's event envelope. The type discriminator
// selects which data member is populated.
type webhookEnvelope struct {
	Type string `json:"type"`
	Data struct {
		Task *struct {
			TaskKey    string `json:"task_key"`
			ExternalID string `json:"external_id"`
			Reason     string `json:"reason"`
		} `json:"task"`
		Mockup *struct {
			ExternalID string `json:"external_id"`
			MockupURL  string `json:"mockup_url"`
		} `json:"mockup"`
	} `json:"data"`
}

// VendorWebhook handles asynchronous render events from the print vendor.
// The webhook is authenticated using header X-Vendor-Webhook-Secret
// (optional in dev if the secret is not configured). Unrecognized event
// types are acknowledged without action so new vendor events never cause
// retry storms.
func (h *Handler) VendorWebhook(c *gin.Context) {
	// Authn: shared secret (vendor-to-backend)
	if h.webhookSecret != "" {
		secret := c.GetHeader("X-Vendor-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(secret), []byte(h.webhookSecret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: invalid webhook secret"})
			return
		}
	}

	var body webhookEnvelope
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Printf("Webhook JSON binding error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var err error
	switch body.Type {
	case "task_finished":
		if body.Data.Mockup == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing mockup data"})
			return
		}
		err = h.webhooks.HandleTaskFinished(c.Request.Context(), body.Data.Mockup.ExternalID, body.Data.Mockup.MockupURL)
	case "task_failed":
		if body.Data.Task == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing task data"})
			return
		}
		err = h.webhooks.HandleTaskFailed(c.Request.Context(), body.Data.Task.ExternalID, body.Data.Task.Reason)
	default:
		log.Printf("Webhook: ignoring event type %q", body.Type)
	}

	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process webhook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
