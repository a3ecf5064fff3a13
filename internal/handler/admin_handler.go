package handler

import (
	"encoding/json"
	"net/http"

	"venturehub/internal/pkg/errs"
	"venturehub/internal/pkg/req"
	"venturehub/internal/pkg/resp"
)

// HandleHealth reports process liveness for load balancer probes.
func (d *AppDeps) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp.RespondSuccess(w, r, map[string]string{"status": "ok"})
}

// HandleStats returns current connection, user, and room counts.
func (d *AppDeps) HandleStats(w http.ResponseWriter, r *http.Request) {
	resp.RespondSuccess(w, r, d.Hub.Stats())
}

type notifyUserRequest struct {
	UserID  string          `json:"userId"`
	Title   string          `json:"title"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// HandleNotifyUser pushes a SYSTEM_NOTIFICATION to every connection of one
// user and reports how many local connections received it. Zero deliveries is
// still a success: the user is simply offline.
func (d *AppDeps) HandleNotifyUser(w http.ResponseWriter, r *http.Request) {
	var body notifyUserRequest
	if customErr := req.BindJSON(w, r, &body); customErr != nil {
		resp.RespondError(w, r, customErr)
		return
	}

	if body.UserID == "" || body.Message == "" {
		resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
		return
	}

	delivered := d.Hub.NotifyUser(body.UserID, body.Title, body.Message, body.Data)
	resp.RespondSuccess(w, r, map[string]int{"delivered": delivered})
}

type broadcastRequest struct {
	UpdateType string          `json:"updateType"`
	Data       json.RawMessage `json:"data"`
}

// HandleBroadcast pushes a REALTIME_UPDATE to every connected client.
func (d *AppDeps) HandleBroadcast(w http.ResponseWriter, r *http.Request) {
	var body broadcastRequest
	if customErr := req.BindJSON(w, r, &body); customErr != nil {
		resp.RespondError(w, r, customErr)
		return
	}

	if body.UpdateType == "" {
		resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
		return
	}

	d.Hub.BroadcastUpdate(body.UpdateType, body.Data)
	resp.RespondSuccess(w, r, nil)
}
