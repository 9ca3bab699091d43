package http

import (
	"github.com/printloom/mockup-backend/internal/mockups/service"
)

// Handler handles HTTP requests for the mockup pipeline
type Handler struct {
	dispatch      *service.DispatchService
	webhooks      *service.WebhookService
	webhookSecret string // Secret for authenticating webhooks from the vendor
}

// New creates a new Handler
func New(dispatch *service.DispatchService, webhooks *service.WebhookService, webhookSecret string) *Handler {
	return &Handler{
		dispatch:      dispatch,
		webhooks:      webhooks,
		webhookSecret: webhookSecret,
	}
}
