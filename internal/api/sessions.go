package api

import (
	"net/http"

	"github.com/susu3304/pokerclub/internal/club"
	"github.com/susu3304/pokerclub/internal/ledger"
)

type entryRequest struct {
	PlayerID      string               `json:"player_id"`
	BuyIn         ledger.LenientAmount `json:"buy_in"`
	Rebuys        ledger.LenientAmount `json:"rebuys"`
	TotalInvested ledger.LenientAmount `json:"total_invested"`
	FinalChips    ledger.LenientAmount `json:"final_chips"`
}

type sessionRequest struct {
	Name    string         `json:"name"`
	Version int            `json:"version"`
	Entries []entryRequest `json:"participants"`
}

func (s sessionRequest) draft() club.SessionDraft {
	d := club.SessionDraft{Name: s.Name}
	for _, e := range s.Entries {
		d.Entries = append(d.Entries, club.EntryInput{
			PlayerID:      e.PlayerID,
			BuyIn:         int64(e.BuyIn),
			Rebuys:        int(e.Rebuys),
			TotalInvested: int64(e.TotalInvested),
			FinalChips:    int64(e.FinalChips),
		})
	}
	return d
}

func (a *API) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := a.svc.Sessions(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(sessions))
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := a.svc.Session(r.Context(), pathVar(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (a *API) handleSaveHistoricSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	sess, err := a.svc.SaveHistoricSession(r.Context(), actorFrom(r), req.draft())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// handleEditSession honours an optional version; 0 or absent means last write wins.
func (a *API) handleEditSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	sess, err := a.svc.EditSession(r.Context(), actorFrom(r), pathVar(r, "id"), req.Version, req.draft())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (a *API) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.DeleteSession(r.Context(), actorFrom(r), pathVar(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
