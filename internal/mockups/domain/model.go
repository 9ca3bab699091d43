package domain

import "time"

// Design represents one user's customization of a print product variant.
// The record is created elsewhere (design editor) in state draft; this
// subsystem only moves it through the mockup render lifecycle.
type Design struct {
	ID                int64     `json:"id"`
	Owner             string    `json:"owner"`
	ProductRef        int64     `json:"product_ref"`
	VariantRef        int64     `json:"variant_ref"`
	SourceImageURL    string    `json:"source_image_url"`
	RenderedMockupURL *string   `json:"rendered_mockup_url,omitempty"`
	Status            string    `json:"status"` // draft, pending, ready, error
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Design status constants
const (
	StatusDraft   = "draft"
	StatusPending = "pending"
	StatusReady   = "ready"
	StatusError   = "error"
)

// DispatchJob is the validated input for submitting a mockup render task.
type DispatchJob struct {
	DesignID       int64  `json:"design_id"`
	SourceImageURL string `json:"source_image_url"`
	VariantRef     int64  `json:"variant_ref"`
}

// NotificationKind values pushed to connected clients.
const (
	NotifyMockupReady = "mockup_ready"
	NotifyMockupError = "mockup_error"
)

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(status string) bool {
	return status == StatusReady || status == StatusError
}
