package realtime

// Event is the transient notification pushed to an owner's live sessions
// when a design's mockup render finishes. Never persisted.
type Event struct {
	Type      string `json:"type"` // mockup_ready or mockup_error
	DesignID  int64  `json:"design_id"`
	MockupURL string `json:"mockup_url,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Session is one live push channel belonging to an owner. Send must apply
// its own bounded write timeout so a slow client cannot stall fan-out to
// the owner's other sessions.
type Session interface {
	Send(event Event) error
}
