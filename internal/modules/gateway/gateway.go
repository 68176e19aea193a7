package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	pkgredis "github.com/quillspace/core/internal/pkg/redis"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

const (
	eventUserConnected = "user_connected"
	eventOnlineUsers   = "online_users"
	redisChanPresence  = "qs:gateway:presence"
)

// Message is the envelope used by hub broadcasts and Redis fan-out.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Hub tracks which users are online over socket.io. A user may hold several
// sockets at once; they stay online until the last one disconnects.
type Hub struct {
	mu sync.RWMutex

	// socket id -> user id, and user id -> live socket count
	sidUser     map[string]string
	socketCount map[string]int

	broadcast  chan Message
	register   chan presenceEvent
	unregister chan string

	rc     *pkgredis.Client
	logger *zap.Logger
	sio    *socketio.Server
}

type presenceEvent struct {
	sid    string
	userID string
}

func NewHub(rc *pkgredis.Client, logger *zap.Logger) *Hub {
	h := &Hub{
		sidUser:     make(map[string]string),
		socketCount: make(map[string]int),
		broadcast:   make(chan Message, 256),
		register:    make(chan presenceEvent, 256),
		unregister:  make(chan string, 256),
		rc:          rc,
		logger:      logger,
		sio:         socketio.NewServer(nil, nil),
	}
	h.registerHandlers()
	return h
}

func (h *Hub) registerHandlers() {
	_ = h.sio.Of("/", nil).On("connection", func(args ...any) {
		client, ok := args[0].(*socketio.Socket)
		if !ok {
			return
		}
		sid := string(client.Id())

		// clients announce themselves after connecting
		_ = client.On(eventUserConnected, func(data ...any) {
			if len(data) == 0 {
				return
			}
			userID, ok := data[0].(string)
			if !ok || userID == "" {
				return
			}
			h.register <- presenceEvent{sid: sid, userID: userID}
		})

		_ = client.On("disconnect", func(_ ...any) {
			h.unregister <- sid
		})
	})
}

// Run starts the hub loop and Redis subscriber.
func (h *Hub) Run(ctx context.Context) {
	if h.rc != nil {
		go h.subscribeRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.sio.Close(nil)
			return

		case ev := <-h.register:
			if h.registerSocket(ev) {
				h.announce(ctx)
			}

		case sid := <-h.unregister:
			if h.unregisterSocket(sid) {
				h.announce(ctx)
			}

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// registerSocket binds a socket to a user. Returns true when the user came
// online with this socket.
func (h *Hub) registerSocket(ev presenceEvent) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.sidUser[ev.sid]; ok {
		if prev == ev.userID {
			return false
		}
		h.dropSocketLocked(ev.sid)
	}
	h.sidUser[ev.sid] = ev.userID
	h.socketCount[ev.userID]++
	return h.socketCount[ev.userID] == 1
}

// unregisterSocket removes a socket. Returns true when its user went offline.
func (h *Hub) unregisterSocket(sid string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sidUser[sid]; !ok {
		return false
	}
	userID := h.sidUser[sid]
	h.dropSocketLocked(sid)
	return h.socketCount[userID] == 0
}

func (h *Hub) dropSocketLocked(sid string) {
	userID := h.sidUser[sid]
	delete(h.sidUser, sid)
	if h.socketCount[userID] > 0 {
		h.socketCount[userID]--
	}
	if h.socketCount[userID] == 0 {
		delete(h.socketCount, userID)
	}
}

// announce broadcasts the online user list locally and to peers via Redis.
func (h *Hub) announce(ctx context.Context) {
	msg := Message{Event: eventOnlineUsers, Payload: h.snapshot()}
	h.deliver(msg)

	if h.rc != nil {
		data, err := json.Marshal(msg)
		if err != nil {
			return
		}
		if err := h.rc.Publish(ctx, redisChanPresence, string(data)); err != nil && h.logger != nil {
			h.logger.Warn("presence publish failed", zap.Error(err))
		}
	}
}

func (h *Hub) deliver(msg Message) {
	h.sio.Of("/", nil).Emit(msg.Event, msg.Payload)
}

// subscribeRedis relays presence broadcasts from other server instances.
func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rc.Subscribe(ctx, redisChanPresence)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return

		case redisMsg, ok := <-ch:
			if !ok {
				return
			}
			var msg Message
			if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
				continue
			}
			h.deliver(msg)
		}
	}
}

// snapshot returns the distinct online user ids.
func (h *Hub) snapshot() gin.H {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]string, 0, len(h.socketCount))
	for userID := range h.socketCount {
		users = append(users, userID)
	}
	return gin.H{"users": users, "count": len(users)}
}

// OnlineCount returns the number of distinct users currently online.
func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.socketCount)
}

// IsOnline reports whether the user has at least one live socket.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.socketCount[userID] > 0
}

// Handler returns the socket.io HTTP handler mounted at /socket.io.
func (h *Hub) Handler() http.Handler {
	return h.sio.ServeHandler(nil)
}

// RegisterRoutes mounts socket.io and the presence snapshot endpoint.
func RegisterRoutes(rg *gin.RouterGroup, hub *Hub) {
	handler := gin.WrapH(hub.Handler())
	rg.Any("/socket.io", handler)
	rg.Any("/socket.io/*any", handler)

	rg.GET("/presence", func(c *gin.Context) {
		c.JSON(http.StatusOK, hub.snapshot())
	})
}
