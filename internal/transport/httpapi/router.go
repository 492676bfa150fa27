package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/observability"
)

type RouterConfig struct {
	ServiceName       string
	JWTSecret         string
	JWTIssuer         string
	JWTAudience       string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(observability.MetricsMiddleware(cfg.ServiceName))
	r.Use(Recovery())
	if cfg.RateLimitRequests > 0 {
		r.Use(RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	r.Group(func(p chi.Router) {
		p.Use(JWT(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience))

		mesPath := "/api/messages"
		p.Post(mesPath, h.SendMessage)
		p.Post(mesPath+"/resume", h.ResumeSend)

		convPath := "/api/conversations"
		p.Get(convPath, h.ListConversations)
		p.Get(convPath+"/watch", h.WatchConversations)
		p.Get(convPath+"/{conversationID}/messages", h.ListMessages)
		p.Get(convPath+"/{conversationID}/messages/watch", h.WatchMessages)
		p.Post(convPath+"/{conversationID}/read", h.MarkRead)
		p.Post(convPath+"/{conversationID}/repair", h.Repair)

		userPath := "/api/users"
		p.Post(userPath, h.RegisterUser)
		p.Get(userPath, h.ListUsers)
		p.Get(userPath+"/{email}", h.GetUser)
		p.Head(userPath+"/{email}", h.UserExists)
	})

	return otelhttp.NewHandler(r, cfg.ServiceName)
}
