package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/printloom/mockup-backend/internal/realtime"
)

const (
	writeTimeout = 5 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 25 * time.Second
	maxFrameSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS for the API is handled globally; browser websocket clients
	// connect from the storefront origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler handles live notification connections
type Handler struct {
	hub *realtime.Hub
}

// New creates a new Handler
func New(hub *realtime.Hub) *Handler {
	return &Handler{hub: hub}
}

// Register registers the live connection route
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/events", h.Stream)
}

// Stream upgrades the request to a websocket and registers it as a live
// session for the authenticated owner. The server only pushes; inbound
// frames are drained for keep-alive and otherwise discarded.
func (h *Handler) Stream(c *gin.Context) {
	owner := c.GetString("firebase_uid")
	if owner == "" {
		owner = c.GetHeader("X-User-Id")
	}
	if owner == "" {
		// A session with no verified owner is rejected before registration.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[realtime] upgrade failed for owner=%s: %v", owner, err)
		return
	}

	session := &wsSession{conn: conn}
	h.hub.Register(owner, session)
	defer func() {
		h.hub.Unregister(owner, session)
		conn.Close()
	}()

	done := make(chan struct{})
	go h.pingLoop(conn, done)
	defer close(done)

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		// Any client frame counts as keep-alive.
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (h *Handler) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

// wsSession adapts one websocket connection to the realtime.Session
// interface. The write deadline bounds delivery so one slow client cannot
// stall fan-out to the owner's other sessions.
type wsSession struct {
	conn *websocket.Conn
}

func (s *wsSession) Send(event realtime.Event) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(event)
}
