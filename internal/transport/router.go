package transport

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/omarsel/bidworks/internal/auth"
	"github.com/omarsel/bidworks/internal/domain/event"
	porteventbus "github.com/omarsel/bidworks/internal/port/eventbus"
	"github.com/omarsel/bidworks/internal/transport/ws"
)

// RegisterFunc wires one handler package onto the /api group. Registration is
// injected from the composition root because the handler sub-packages import
// this package's middleware helpers.
type RegisterFunc func(api *gin.RouterGroup, authn gin.HandlerFunc)

// NewRouter builds the gin engine: global middleware, the /api group with
// each handler package registered, and a websocket hub bridged to the domain
// event channels so clients see task and bid activity live.
func NewRouter(ctx context.Context, mgr *auth.Manager, bus porteventbus.EventBus, registers ...RegisterFunc) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())

	api := r.Group("/api")
	authn := Authenticate(mgr)
	for _, register := range registers {
		register(api, authn)
	}

	hub := ws.NewHub()
	hub.Register(api.Group("/ws"))

	// Bridge: one subscription per domain channel. Event.Type in the payload
	// lets clients filter.
	for _, ch := range []event.Channel{event.ChannelTask, event.ChannelBid} {
		c := ch
		if _, err := bus.Subscribe(ctx, c, func(_ context.Context, e event.Event) {
			hub.Broadcast(e)
		}); err != nil {
			slog.Error("failed to subscribe channel to WS hub", "channel", c, "error", err)
		}
	}

	return r
}
