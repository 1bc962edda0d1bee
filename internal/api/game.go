package api

import (
	"net/http"

	"github.com/susu3304/pokerclub/internal/ledger"
	"github.com/susu3304/pokerclub/internal/livegame"
)

// gameView adds the running totals the table screen shows.
type gameView struct {
	*livegame.Game
	TotalInvested    int64 `json:"total_invested"`
	TotalDistributed int64 `json:"total_distributed"`
	Balanced         bool  `json:"balanced"`
}

func viewGame(g *livegame.Game) interface{} {
	if g == nil {
		return map[string]interface{}{"active": false}
	}
	return gameView{
		Game:             g,
		TotalInvested:    g.TotalInvested(),
		TotalDistributed: g.TotalDistributed(),
		Balanced:         g.IsBalanced(),
	}
}

func (a *API) handleGetGame(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewGame(a.svc.LiveGame()))
}

func (a *API) handleStartGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerIDs []string `json:"player_ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	g, err := a.svc.StartGame(r.Context(), actorFrom(r), req.PlayerIDs)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewGame(g))
}

func (a *API) handleCancelGame(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.CancelGame(actorFrom(r)); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleEndGame(w http.ResponseWriter, r *http.Request) {
	sess, err := a.svc.EndGame(r.Context(), actorFrom(r))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (a *API) handleRenameGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	g, err := a.svc.RenameGame(actorFrom(r), req.Name)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewGame(g))
}

func (a *API) handleAddGamePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"player_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	g, err := a.svc.AddPlayerToGame(r.Context(), actorFrom(r), req.PlayerID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewGame(g))
}

func (a *API) handleAddRebuy(w http.ResponseWriter, r *http.Request) {
	g, err := a.svc.AddRebuy(actorFrom(r), pathVar(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewGame(g))
}

func (a *API) handleRemoveRebuy(w http.ResponseWriter, r *http.Request) {
	g, removed, err := a.svc.RemoveRebuy(actorFrom(r), pathVar(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"game":    viewGame(g),
		"removed": removed,
	})
}

func (a *API) handleSetChips(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FinalChips ledger.LenientAmount `json:"final_chips"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	g, err := a.svc.SetFinalChips(actorFrom(r), pathVar(r, "id"), int64(req.FinalChips))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewGame(g))
}
