package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"venturehub/internal/pkg/errs"
	"venturehub/internal/pkg/limiter"
	"venturehub/internal/pkg/logx"
	"venturehub/internal/pkg/resp"
)

// Handshake rate limit per client IP. Generous enough for reconnect storms
// after a deploy, tight enough to blunt credential stuffing on /ws.
const (
	wsHandshakeRate  = rate.Limit(5)
	wsHandshakeBurst = 10
)

// NewRouter builds the full HTTP routing tree.
func NewRouter(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	corsOrigins := deps.Config.AllowedOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Service-Key"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/health", deps.HandleHealth)

	wsLimiter := limiter.NewIPRateLimiter(wsHandshakeRate, wsHandshakeBurst)
	r.With(wsLimiter.Middleware).Get("/ws", deps.HandleWS)

	r.Route("/api", func(api chi.Router) {
		api.Use(deps.requireServiceKey)
		api.Get("/stats", deps.HandleStats)
		api.Post("/notify/user", deps.HandleNotifyUser)
		api.Post("/broadcast", deps.HandleBroadcast)
	})

	return r
}

// requireServiceKey gates the service API behind the shared X-Service-Key
// header. Only trusted backend services hold the key.
func (d *AppDeps) requireServiceKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Service-Key")
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(d.Config.ServiceKey)) != 1 {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		next.ServeHTTP(w, r)
	})
}
