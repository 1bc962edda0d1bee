package api

import (
	"net/http"

	"github.com/susu3304/pokerclub/internal/club"
)

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.Users(r.Context(), actorFrom(r))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(users))
}

func (a *API) handleSetRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	role, err := club.ParseRole(req.Role)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	id := pathVar(r, "id")
	actor := actorFrom(r)
	if err := a.users.SetRole(r.Context(), actor, id, role); err != nil {
		a.writeError(w, err)
		return
	}
	a.log.Info().Str("user_id", id).Str("role", string(role)).Str("actor", actor.ID).Msg("role changed")
	writeJSON(w, http.StatusOK, map[string]string{"user_id": id, "role": string(role)})
}
