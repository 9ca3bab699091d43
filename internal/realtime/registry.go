package realtime

import (
	"context"
	"sync"
)

// Hub is the session registry. Each owner gets a dedicated worker goroutine
// with a mailbox; register, unregister, and notify for the same owner are
// applied in arrival order, while different owners proceed fully
// concurrently. A worker retires once its session set is empty and no
// operations are queued, so idle owners cost nothing.
type Hub struct {
	mu      sync.Mutex
	workers map[string]*ownerWorker
}

type opKind int

const (
	opRegister opKind = iota
	opUnregister
	opNotify
	opCount
)

type ownerOp struct {
	kind    opKind
	session Session
	event   Event
	done    chan int
}

type ownerWorker struct {
	mailbox chan ownerOp
	// pending counts queued-or-in-flight ops, guarded by Hub.mu. The worker
	// only retires when the session set and pending are both zero, so a
	// concurrent post can never land in a dead mailbox.
	pending int
}

const mailboxSize = 64

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{workers: make(map[string]*ownerWorker)}
}

// Register adds a live session for an owner.
func (h *Hub) Register(owner string, s Session) {
	h.post(owner, ownerOp{kind: opRegister, session: s})
}

// Unregister removes a session for an owner. Removing a session that is
// already absent is a no-op.
func (h *Hub) Unregister(owner string, s Session) {
	h.post(owner, ownerOp{kind: opUnregister, session: s})
}

// Notify delivers the event to every live session of the owner and returns
// how many deliveries succeeded. A failed delivery removes that session and
// does not abort delivery to the rest.
func (h *Hub) Notify(owner string, event Event) int {
	done := make(chan int, 1)
	h.post(owner, ownerOp{kind: opNotify, event: event, done: done})
	return <-done
}

// LocalNotifier adapts the Hub to the correlator's notifier contract for
// single-instance deployments and tests, bypassing the redis bridge.
type LocalNotifier struct {
	Hub *Hub
}

func (n LocalNotifier) Notify(ctx context.Context, owner string, event Event) error {
	n.Hub.Notify(owner, event)
	return nil
}

func (h *Hub) post(owner string, op ownerOp) {
	h.mu.Lock()
	w := h.workers[owner]
	if w == nil {
		w = &ownerWorker{mailbox: make(chan ownerOp, mailboxSize)}
		h.workers[owner] = w
		go h.run(owner, w)
	}
	w.pending++
	h.mu.Unlock()

	w.mailbox <- op
}

func (h *Hub) run(owner string, w *ownerWorker) {
	sessions := make(map[Session]struct{})

	for op := range w.mailbox {
		switch op.kind {
		case opRegister:
			sessions[op.session] = struct{}{}
		case opUnregister:
			delete(sessions, op.session)
		case opNotify:
			delivered := 0
			for s := range sessions {
				if err := s.Send(op.event); err != nil {
					// Dead or stalled connection: drop it and keep going.
					delete(sessions, s)
					continue
				}
				delivered++
			}
			op.done <- delivered
		case opCount:
			op.done <- len(sessions)
		}

		h.mu.Lock()
		w.pending--
		if len(sessions) == 0 && w.pending == 0 {
			delete(h.workers, owner)
			h.mu.Unlock()
			return
		}
		h.mu.Unlock()
	}
}

// SessionCount reports the number of live sessions for an owner.
func (h *Hub) SessionCount(owner string) int {
	done := make(chan int, 1)
	h.post(owner, ownerOp{kind: opCount, done: done})
	return <-done
}
