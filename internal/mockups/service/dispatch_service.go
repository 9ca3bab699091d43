package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	catalog "github.com/printloom/mockup-backend/internal/catalog/repository"
	"github.com/printloom/mockup-backend/internal/mockups/domain"
	"github.com/printloom/mockup-backend/internal/mockups/printful"
	"github.com/printloom/mockup-backend/internal/realtime"
)

// DesignStore is the record-store surface the mockup pipeline mutates
// designs through. Only conditional transitions are exposed; nothing else
// in the codebase writes design status.
type DesignStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Design, error)
	GetOwner(ctx context.Context, id int64) (string, error)
	MarkPending(ctx context.Context, id int64) error
	MarkReady(ctx context.Context, id int64, mockupURL string) (bool, error)
	MarkError(ctx context.Context, id int64, allowDraft bool) (bool, error)
}

// VariantStore resolves catalog variants to vendor mappings (read-only).
type VariantStore interface {
	GetMapping(ctx context.Context, variantRef int64) (*catalog.VariantMapping, error)
}

// VendorClient submits mockup render tasks to the print vendor.
type VendorClient interface {
	Configured() bool
	CreateMockupTask(ctx context.Context, productRef int64, task *printful.MockupTaskRequest) (string, error)
}

// Notifier delivers a notification event to an owner's live sessions.
type Notifier interface {
	Notify(ctx context.Context, owner string, event realtime.Event) error
}

// DispatchService submits mockup render jobs to the vendor.
type DispatchService struct {
	designs  DesignStore
	variants VariantStore
	vendor   VendorClient
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(designs DesignStore, variants VariantStore, vendor VendorClient) *DispatchService {
	return &DispatchService{
		designs:  designs,
		variants: variants,
		vendor:   vendor,
	}
}

// Dispatch validates a job, moves the design draft -> pending, and submits
// exactly one render task to the vendor. requester, when non-empty, must
// match the design's owner.
//
// The pending transition happens before the vendor call so a design can
// never carry two in-flight tasks; if the vendor rejects the submission the
// design is moved to error before the failure is returned. The two writes
// are not atomic with the vendor call: a crash in between can leave the
// design pending with no task, which the sweep job surfaces to operators.
func (s *DispatchService) Dispatch(ctx context.Context, requester string, job *domain.DispatchJob) error {
	if err := validateJob(job); err != nil {
		return err
	}

	design, err := s.designs.GetByID(ctx, job.DesignID)
	if err != nil {
		return err
	}
	if requester != "" && design.Owner != requester {
		return domain.ErrAccessDenied
	}

	mapping, err := s.variants.GetMapping(ctx, job.VariantRef)
	if errors.Is(err, catalog.ErrVariantNotFound) {
		return domain.NewValidationError("variant_ref", "unknown variant")
	}
	if errors.Is(err, catalog.ErrNoVendorMapping) {
		return domain.NewValidationError("variant_ref", "variant has no vendor mapping")
	}
	if err != nil {
		return err
	}

	if !s.vendor.Configured() {
		log.Printf("[dispatch] ERROR: vendor credentials missing, cannot submit design_id=%d", job.DesignID)
		return domain.ErrVendorNotConfigured
	}

	if err := s.designs.MarkPending(ctx, job.DesignID); err != nil {
		return err
	}

	// Center the artwork: full print-area width/height, zero offsets.
	task := &printful.MockupTaskRequest{
		VariantIDs: []int64{mapping.VendorVariantID},
		Files: []printful.TaskFile{
			{
				Placement: "front",
				ImageURL:  job.SourceImageURL,
				Position: printful.FilePosition{
					AreaWidth:  mapping.AreaWidth,
					AreaHeight: mapping.AreaHeight,
					Width:      mapping.AreaWidth,
					Height:     mapping.AreaHeight,
					Top:        0,
					Left:       0,
				},
			},
		},
		ExternalID: strconv.FormatInt(job.DesignID, 10),
	}

	taskRef, err := s.vendor.CreateMockupTask(ctx, design.ProductRef, task)
	if err != nil {
		if _, merr := s.designs.MarkError(ctx, job.DesignID, true); merr != nil {
			log.Printf("[dispatch] failed to mark design_id=%d errored after vendor failure: %v", job.DesignID, merr)
		}
		return err
	}

	log.Printf("[dispatch] submitted design_id=%d vendor_task=%s variant=%d", job.DesignID, taskRef, mapping.VendorVariantID)
	return nil
}

func validateJob(job *domain.DispatchJob) error {
	if job == nil || job.DesignID == 0 {
		return domain.NewValidationError("design_id", "is required")
	}
	if job.SourceImageURL == "" {
		return domain.NewValidationError("source_image_url", "is required")
	}
	if !strings.HasPrefix(job.SourceImageURL, "https://") {
		return domain.NewValidationError("source_image_url", "must be an https URL")
	}
	if job.VariantRef == 0 {
		return domain.NewValidationError("variant_ref", "is required")
	}
	return nil
}
