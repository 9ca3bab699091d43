package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "github.com/printloom/mockup-backend/internal/catalog/repository"
	"github.com/printloom/mockup-backend/internal/mockups/domain"
	"github.com/printloom/mockup-backend/internal/mockups/printful"
	"github.com/printloom/mockup-backend/internal/realtime"
)

type stubDesignStore struct {
	design *domain.Design
	owner  string

	pendingCalls []int64
	pendingErr   error

	readyIDs     []int64
	readyURLs    []string
	readyApplied bool
	readyErr     error

	errorIDs     []int64
	errorDraft   []bool
	errorApplied bool
	errorErr     error

	ownerErr error
}

func (s *stubDesignStore) GetByID(_ context.Context, id int64) (*domain.Design, error) {
	if s.design == nil || s.design.ID != id {
		return nil, domain.ErrDesignNotFound
	}
	return s.design, nil
}

func (s *stubDesignStore) GetOwner(_ context.Context, id int64) (string, error) {
	if s.ownerErr != nil {
		return "", s.ownerErr
	}
	return s.owner, nil
}

func (s *stubDesignStore) MarkPending(_ context.Context, id int64) error {
	s.pendingCalls = append(s.pendingCalls, id)
	return s.pendingErr
}

func (s *stubDesignStore) MarkReady(_ context.Context, id int64, mockupURL string) (bool, error) {
	s.readyIDs = append(s.readyIDs, id)
	s.readyURLs = append(s.readyURLs, mockupURL)
	return s.readyApplied, s.readyErr
}

func (s *stubDesignStore) MarkError(_ context.Context, id int64, allowDraft bool) (bool, error) {
	s.errorIDs = append(s.errorIDs, id)
	s.errorDraft = append(s.errorDraft, allowDraft)
	return s.errorApplied, s.errorErr
}

type stubVariantStore struct {
	mapping *catalog.VariantMapping
	err     error
}

func (s *stubVariantStore) GetMapping(_ context.Context, variantRef int64) (*catalog.VariantMapping, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.mapping, nil
}

type stubVendorClient struct {
	configured bool
	taskRef    string
	err        error
	tasks      []*printful.MockupTaskRequest
	products   []int64
}

func (s *stubVendorClient) Configured() bool { return s.configured }

func (s *stubVendorClient) CreateMockupTask(_ context.Context, productRef int64, task *printful.MockupTaskRequest) (string, error) {
	s.products = append(s.products, productRef)
	s.tasks = append(s.tasks, task)
	if s.err != nil {
		return "", s.err
	}
	return s.taskRef, nil
}

type stubNotifier struct {
	owners []string
	events []realtime.Event
	err    error
}

func (s *stubNotifier) Notify(_ context.Context, owner string, event realtime.Event) error {
	s.owners = append(s.owners, owner)
	s.events = append(s.events, event)
	return s.err
}

func validJob() *domain.DispatchJob {
	return &domain.DispatchJob{
		DesignID:       42,
		SourceImageURL: "https://x/y.png",
		VariantRef:     7,
	}
}

func testMapping() *catalog.VariantMapping {
	return &catalog.VariantMapping{
		VariantRef:      7,
		VendorVariantID: 1001,
		AreaWidth:       1800,
		AreaHeight:      2400,
		Top:             0,
		Left:            0,
	}
}

func TestDispatchService_Validation(t *testing.T) {
	designs := &stubDesignStore{}
	variants := &stubVariantStore{mapping: testMapping()}
	vendor := &stubVendorClient{configured: true, taskRef: "gt-1"}
	svc := NewDispatchService(designs, variants, vendor)

	testCases := []struct {
		name  string
		job   *domain.DispatchJob
		field string
	}{
		{"missing design_id", &domain.DispatchJob{SourceImageURL: "https://x/y.png", VariantRef: 7}, "design_id"},
		{"missing source_image_url", &domain.DispatchJob{DesignID: 42, VariantRef: 7}, "source_image_url"},
		{"non-https source_image_url", &domain.DispatchJob{DesignID: 42, SourceImageURL: "http://x/y.png", VariantRef: 7}, "source_image_url"},
		{"missing variant_ref", &domain.DispatchJob{DesignID: 42, SourceImageURL: "https://x/y.png"}, "variant_ref"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Dispatch(context.Background(), "", tc.job)

			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
			assert.Empty(t, vendor.tasks, "no vendor call for invalid job")
		})
	}
}

func TestDispatchService_BuildsCenteredPayload(t *testing.T) {
	designs := &stubDesignStore{
		design: &domain.Design{ID: 42, Owner: "user-1", ProductRef: 71, VariantRef: 7, Status: domain.StatusDraft},
	}
	variants := &stubVariantStore{mapping: testMapping()}
	vendor := &stubVendorClient{configured: true, taskRef: "gt-42"}
	svc := NewDispatchService(designs, variants, vendor)

	err := svc.Dispatch(context.Background(), "user-1", validJob())
	require.NoError(t, err)

	require.Equal(t, []int64{42}, designs.pendingCalls, "design must be marked pending")
	require.Len(t, vendor.tasks, 1)
	assert.Equal(t, []int64{71}, vendor.products)

	task := vendor.tasks[0]
	assert.Equal(t, []int64{1001}, task.VariantIDs)
	assert.Equal(t, "42", task.ExternalID)

	require.Len(t, task.Files, 1)
	assert.Equal(t, "https://x/y.png", task.Files[0].ImageURL)
	assert.Equal(t, printful.FilePosition{
		AreaWidth:  1800,
		AreaHeight: 2400,
		Width:      1800,
		Height:     2400,
		Top:        0,
		Left:       0,
	}, task.Files[0].Position)
}

func TestDispatchService_UnknownVariant(t *testing.T) {
	designs := &stubDesignStore{
		design: &domain.Design{ID: 42, Owner: "user-1", ProductRef: 71, Status: domain.StatusDraft},
	}
	vendor := &stubVendorClient{configured: true}

	t.Run("variant not found", func(t *testing.T) {
		svc := NewDispatchService(designs, &stubVariantStore{err: catalog.ErrVariantNotFound}, vendor)
		err := svc.Dispatch(context.Background(), "", validJob())

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "variant_ref", validationErr.Field)
	})

	t.Run("no vendor mapping", func(t *testing.T) {
		svc := NewDispatchService(designs, &stubVariantStore{err: catalog.ErrNoVendorMapping}, vendor)
		err := svc.Dispatch(context.Background(), "", validJob())

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	assert.Empty(t, vendor.tasks)
	assert.Empty(t, designs.pendingCalls, "must not touch status before validation passes")
}

func TestDispatchService_VendorNotConfigured(t *testing.T) {
	designs := &stubDesignStore{
		design: &domain.Design{ID: 42, Owner: "user-1", ProductRef: 71, Status: domain.StatusDraft},
	}
	svc := NewDispatchService(designs, &stubVariantStore{mapping: testMapping()}, &stubVendorClient{configured: false})

	err := svc.Dispatch(context.Background(), "", validJob())
	assert.ErrorIs(t, err, domain.ErrVendorNotConfigured)
	assert.Empty(t, designs.pendingCalls)
}

func TestDispatchService_AlreadyDispatched(t *testing.T) {
	designs := &stubDesignStore{
		design:     &domain.Design{ID: 42, Owner: "user-1", ProductRef: 71, Status: domain.StatusPending},
		pendingErr: domain.ErrAlreadyDispatched,
	}
	vendor := &stubVendorClient{configured: true, taskRef: "gt-42"}
	svc := NewDispatchService(designs, &stubVariantStore{mapping: testMapping()}, vendor)

	err := svc.Dispatch(context.Background(), "", validJob())
	assert.ErrorIs(t, err, domain.ErrAlreadyDispatched)
	assert.Empty(t, vendor.tasks, "no second vendor task for a pending design")
}

func TestDispatchService_VendorFailureMarksError(t *testing.T) {
	designs := &stubDesignStore{
		design:       &domain.Design{ID: 42, Owner: "user-1", ProductRef: 71, Status: domain.StatusDraft},
		errorApplied: true,
	}
	vendorErr := &printful.VendorError{Status: 503, Body: `{"error":"down"}`}
	vendor := &stubVendorClient{configured: true, err: vendorErr}
	svc := NewDispatchService(designs, &stubVariantStore{mapping: testMapping()}, vendor)

	err := svc.Dispatch(context.Background(), "", validJob())

	var ve *printful.VendorError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 503, ve.Status)
	assert.Equal(t, []int64{42}, designs.errorIDs, "design must be marked errored")
}

func TestDispatchService_OwnershipCheck(t *testing.T) {
	designs := &stubDesignStore{
		design: &domain.Design{ID: 42, Owner: "user-1", ProductRef: 71, Status: domain.StatusDraft},
	}
	vendor := &stubVendorClient{configured: true, taskRef: "gt-42"}
	svc := NewDispatchService(designs, &stubVariantStore{mapping: testMapping()}, vendor)

	err := svc.Dispatch(context.Background(), "user-2", validJob())
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	assert.Empty(t, vendor.tasks)
}

func TestDispatchService_UnknownDesign(t *testing.T) {
	svc := NewDispatchService(&stubDesignStore{}, &stubVariantStore{mapping: testMapping()}, &stubVendorClient{configured: true})

	err := svc.Dispatch(context.Background(), "", validJob())
	assert.True(t, errors.Is(err, domain.ErrDesignNotFound))
}
