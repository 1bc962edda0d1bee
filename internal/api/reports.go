package api

import (
	"net/http"
)

func (a *API) handleCashier(w http.ResponseWriter, r *http.Request) {
	report, err := a.svc.Cashier(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleSettle(w http.ResponseWriter, r *http.Request) {
	n, err := a.svc.Settle(r.Context(), actorFrom(r), pathVar(r, "player_id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"settled_entries": n})
}

func (a *API) handleAnnualRanking(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", a.svc.CurrentYear())
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid year")
		return
	}
	entries, err := a.svc.AnnualRanking(r.Context(), year)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"year":    year,
		"entries": nonNil(entries),
	})
}

func (a *API) handleLastGameRanking(w http.ResponseWriter, r *http.Request) {
	entries, err := a.svc.LastGameRanking(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

func (a *API) handleHighlights(w http.ResponseWriter, r *http.Request) {
	h, err := a.svc.Highlights(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (a *API) handleRankingYears(w http.ResponseWriter, r *http.Request) {
	years, err := a.svc.RankingYears(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(years))
}
