package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/monocle-dev/bugtracker/internal/services"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

type FeedMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	ProjectID uint   `json:"projectId"`
	Event     string `json:"event,omitempty"`
	BugID     uint   `json:"bugId,omitempty"`
}

// feedClient owns one connection. Only its write loop touches the socket for
// writing; publishers hand messages over through send.
type feedClient struct {
	conn      *websocket.Conn
	send      chan FeedMessage
	done      chan struct{}
	closeOnce sync.Once
}

func newFeedClient(conn *websocket.Conn) *feedClient {
	return &feedClient{
		conn: conn,
		send: make(chan FeedMessage, sendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue never blocks. It reports false when the client is too far behind.
func (c *feedClient) enqueue(msg FeedMessage) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *feedClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *feedClient) writeLoop(log zerolog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Str("type", msg.Type).Msg("feed write failed")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug().Err(err).Msg("ping failed")
				return
			}
		}
	}
}

// Hub fans bug transitions out to the websocket subscribers of a project.
type Hub struct {
	mu       sync.RWMutex
	projects map[uint]map[*feedClient]struct{}
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

var _ services.BugEvents = (*Hub)(nil)

func NewHub(allowedOrigins []string, log zerolog.Logger) *Hub {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.TrimRight(origin, "/")] = struct{}{}
	}

	return &Hub{
		projects: make(map[uint]map[*feedClient]struct{}),
		log:      log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if _, ok := allowed[origin]; ok {
					return true
				}
				// same origin as the embedded client
				u, err := url.Parse(origin)
				return err == nil && strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (h *Hub) subscribe(projectID uint, c *feedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.projects[projectID] == nil {
		h.projects[projectID] = make(map[*feedClient]struct{})
	}
	h.projects[projectID][c] = struct{}{}
}

func (h *Hub) unsubscribe(projectID uint, c *feedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.projects[projectID]; exists {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.projects, projectID)
		}
	}
}

func (h *Hub) Subscribers(projectID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.projects[projectID])
}

// Publish queues a refresh message for every subscriber of the project. It
// never waits on a socket; a subscriber whose queue is full is dropped.
func (h *Hub) Publish(projectID uint, event string, bugID uint) {
	h.mu.RLock()
	clients := make([]*feedClient, 0, len(h.projects[projectID]))
	for c := range h.projects[projectID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	msg := FeedMessage{
		Type:      "refresh",
		ProjectID: projectID,
		Event:     event,
		BugID:     bugID,
	}

	for _, c := range clients {
		if !c.enqueue(msg) {
			h.log.Warn().Uint("project_id", projectID).Msg("feed subscriber too slow, dropping")
			h.unsubscribe(projectID, c)
			c.close()
		}
	}
}

// ProjectFeed upgrades a project member's request to a websocket that
// receives a refresh message after every bug transition in the project.
func (h *Handlers) ProjectFeed(ctx *gin.Context) {
	projectID, ok := pathID(ctx, "id", "Invalid project ID")

	if !ok {
		return
	}

	userID, ok := currentUserID(ctx)

	if !ok {
		return
	}

	if _, err := h.projects.RequireMembership(ctx.Request.Context(), userID, projectID); err != nil {
		respondError(ctx, err)
		return
	}

	h.hub.serve(ctx, projectID, userID)
}

func (h *Hub) serve(ctx *gin.Context, projectID, userID uint) {
	log := h.log.With().Uint("project_id", projectID).Uint("user_id", userID).Logger()

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// the upgrader has already written an error response
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := newFeedClient(conn)

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// the queue is empty, so the welcome always goes out first
	client.enqueue(FeedMessage{
		Type:      "connected",
		Message:   "WebSocket connection established",
		ProjectID: projectID,
	})

	h.subscribe(projectID, client)

	defer func() {
		h.unsubscribe(projectID, client)
		client.close()

		log.Debug().Msg("websocket connection closed")
	}()

	go client.writeLoop(log)

	for {
		// clients only send control frames; anything else is discarded
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("websocket error")
			}
			return
		}
	}
}
