package service

import (
	"context"
	"log"
	"strconv"

	"github.com/printloom/mockup-backend/internal/mockups/domain"
	"github.com/printloom/mockup-backend/internal/realtime"
)

// WebhookService correlates asynchronous vendor events back to designs.
//
// The vendor retries webhooks, may deliver them out of order, and may
// deliver them more than once. Every transition here is a conditional
// update, so a replay or a late event affects zero rows and is acknowledged
// as a no-op instead of overwriting a terminal state. Persistence is
// authoritative; notification is best effort and never rolls anything back.
type WebhookService struct {
	designs  DesignStore
	notifier Notifier
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(designs DesignStore, notifier Notifier) *WebhookService {
	return &WebhookService{
		designs:  designs,
		notifier: notifier,
	}
}

// HandleTaskFinished applies a successful render result. Returns a
// ValidationError only when the payload itself is malformed; every other
// failure is absorbed and logged so the vendor is not pushed into a retry
// storm.
func (s *WebhookService) HandleTaskFinished(ctx context.Context, externalID, mockupURL string) error {
	if externalID == "" {
		return domain.NewValidationError("external_id", "is required")
	}
	if mockupURL == "" {
		return domain.NewValidationError("mockup_url", "is required")
	}

	designID, err := strconv.ParseInt(externalID, 10, 64)
	if err != nil {
		return domain.NewValidationError("external_id", "must be a design id")
	}

	applied, err := s.designs.MarkReady(ctx, designID, mockupURL)
	if err != nil {
		log.Printf("[webhook] failed to mark design_id=%d ready: %v", designID, err)
		return nil
	}
	if !applied {
		log.Printf("[webhook] task_finished for design_id=%d ignored (not pending)", designID)
		return nil
	}

	s.notify(ctx, designID, realtime.Event{
		Type:      domain.NotifyMockupReady,
		DesignID:  designID,
		MockupURL: mockupURL,
	})
	return nil
}

// HandleTaskFailed applies a failed render result. Only a missing
// correlation id fails the HTTP contract; an unknown design, an
// unparseable id, or a design already terminal are all acknowledged.
func (s *WebhookService) HandleTaskFailed(ctx context.Context, externalID, reason string) error {
	if externalID == "" {
		return domain.NewValidationError("external_id", "is required")
	}

	designID, err := strconv.ParseInt(externalID, 10, 64)
	if err != nil {
		log.Printf("[webhook] task_failed with unparseable external_id=%q ignored", externalID)
		return nil
	}

	applied, err := s.designs.MarkError(ctx, designID, false)
	if err != nil {
		log.Printf("[webhook] failed to mark design_id=%d errored: %v", designID, err)
		return nil
	}
	if !applied {
		log.Printf("[webhook] task_failed for design_id=%d ignored (not pending)", designID)
		return nil
	}

	s.notify(ctx, designID, realtime.Event{
		Type:     domain.NotifyMockupError,
		DesignID: designID,
		Reason:   reason,
	})
	return nil
}

func (s *WebhookService) notify(ctx context.Context, designID int64, event realtime.Event) {
	owner, err := s.designs.GetOwner(ctx, designID)
	if err != nil {
		log.Printf("[webhook] cannot resolve owner for design_id=%d: %v", designID, err)
		return
	}

	if err := s.notifier.Notify(ctx, owner, event); err != nil {
		log.Printf("[webhook] failed to notify owner=%s design_id=%d: %v", owner, designID, err)
	}
}
