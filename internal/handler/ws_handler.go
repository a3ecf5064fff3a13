package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"venturehub/internal/pkg/errs"
	"venturehub/internal/pkg/logx"
	"venturehub/internal/pkg/resp"
)

const (
	wsReadBufferSize  = 1024
	wsWriteBufferSize = 1024
)

// HandleWS authenticates the client and hands the upgraded connection to the
// hub. The token is verified before the upgrade, so unauthenticated clients
// get a plain 401 and never consume a websocket.
func (d *AppDeps) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return
	}

	identity, err := d.Verifier.Verify(token)
	if err != nil {
		logx.Info("Websocket auth rejected", "remote_addr", r.RemoteAddr, "reason", err.Error())
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  wsReadBufferSize,
		WriteBufferSize: wsWriteBufferSize,
		CheckOrigin:     d.checkOrigin,
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logx.Warn("Websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err.Error())
		return
	}

	d.Hub.HandleConnection(ws, identity)
}

// extractToken reads the token from the Authorization header, falling back to
// the token query parameter for browser websocket clients, which cannot set
// custom headers on the handshake request.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// checkOrigin allows handshakes from configured origins. An empty allowlist
// permits any origin, which is the development default.
func (d *AppDeps) checkOrigin(r *http.Request) bool {
	if len(d.Config.AllowedOrigins) == 0 {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients send no Origin header.
		return true
	}

	for _, allowed := range d.Config.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}
