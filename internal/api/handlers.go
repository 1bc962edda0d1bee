package api

import (
	"net/http"

	"github.com/susu3304/pokerclub/internal/club"
	"github.com/susu3304/pokerclub/internal/ledger"
)

type playerRequest struct {
	Name       string `json:"name"`
	Contact    string `json:"contact"`
	PaymentKey string `json:"payment_key"`
}

func (p playerRequest) input() club.PlayerInput {
	return club.PlayerInput{Name: p.Name, Contact: p.Contact, PaymentKey: p.PaymentKey}
}

func (a *API) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := a.svc.Players(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(players))
}

func (a *API) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	p, err := a.svc.CreatePlayer(r.Context(), actorFrom(r), req.input())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	p, err := a.svc.UpdatePlayer(r.Context(), actorFrom(r), pathVar(r, "id"), req.input())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handleSetPlayerActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	p, err := a.svc.SetPlayerActive(r.Context(), actorFrom(r), pathVar(r, "id"), req.Active)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handlePlayerInUse(w http.ResponseWriter, r *http.Request) {
	inUse, err := a.svc.PlayerInUse(r.Context(), pathVar(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"in_use": inUse})
}

func (a *API) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.DeletePlayer(r.Context(), actorFrom(r), pathVar(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type defaultsRequest struct {
	BuyInAmount ledger.LenientAmount `json:"buy_in_amount"`
	RebuyAmount ledger.LenientAmount `json:"rebuy_amount"`
}

func (a *API) handleGetDefaults(w http.ResponseWriter, r *http.Request) {
	d, err := a.svc.Defaults(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *API) handleSaveDefaults(w http.ResponseWriter, r *http.Request) {
	var req defaultsRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	d := ledger.GameDefaults{
		BuyInAmount: int64(req.BuyInAmount),
		RebuyAmount: int64(req.RebuyAmount),
	}
	if err := a.svc.SaveDefaults(r.Context(), actorFrom(r), d); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
