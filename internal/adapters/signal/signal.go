package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/habeshagames/bingohub/internal/app"
	"github.com/habeshagames/bingohub/internal/config"
	"github.com/habeshagames/bingohub/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// SessionController is the per-message protocol handler. It owns no
// state of its own: it validates inbound events and drives the stores
// and the dispatcher.
type SessionController struct {
	Orch *app.Orchestrator
	Cfg  *config.Config
}

func NewSessionController(orch *app.Orchestrator, cfg *config.Config) *SessionController {
	return &SessionController{Orch: orch, Cfg: cfg}
}

// WsConn is the transport endpoint: a websocket plus a bounded send
// queue. TrySend never blocks; a full queue is backpressure.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandlePlay upgrades a player-facing connection. The endpoint starts
// anonymous; hello/register bind an identity.
func (ctl *SessionController) HandlePlay(ctx context.Context, c *gin.Context) {
	ctl.handle(ctx, c, app.RoleAnonymous)
}

// HandleAdmin upgrades a privileged connection; the router has
// already checked the admin key.
func (ctl *SessionController) HandleAdmin(ctx context.Context, c *gin.Context) {
	ctl.handle(ctx, c, app.RoleAdmin)
}

func (ctl *SessionController) handle(ctx context.Context, c *gin.Context, role app.Role) {
	sid := core.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("role", string(role)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}
	ctl.Orch.Registry.Register(sid, conn, role)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
