package api

import (
	"net/http"

	"github.com/susu3304/pokerclub/internal/dinner"
)

type dinnerView struct {
	*dinner.Dinner
	FoodPerPerson  string         `json:"food_per_person"`
	DrinkPerPerson string         `json:"drink_per_person"`
	Shares         []dinner.Share `json:"shares"`
}

func viewDinner(d *dinner.Dinner) interface{} {
	if d == nil {
		return map[string]interface{}{"active": false}
	}
	return dinnerView{
		Dinner:         d,
		FoodPerPerson:  d.FoodPerPerson().StringFixed(2),
		DrinkPerPerson: d.DrinkPerPerson().StringFixed(2),
		Shares:         nonNil(d.Shares()),
	}
}

func (a *API) handleGetDinner(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewDinner(a.svc.Dinner()))
}

func (a *API) handleStartDinner(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string   `json:"name"`
		PlayerIDs []string `json:"player_ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	d, err := a.svc.StartDinner(r.Context(), actorFrom(r), req.Name, req.PlayerIDs)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewDinner(d))
}

func (a *API) handleCancelDinner(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.CancelDinner(actorFrom(r)); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleRenameDinner(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	d, err := a.svc.RenameDinner(actorFrom(r), req.Name)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewDinner(d))
}

func (a *API) handleSetDinnerCosts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FoodCost  dinner.LenientMoney `json:"food_cost"`
		DrinkCost dinner.LenientMoney `json:"drink_cost"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	d, err := a.svc.SetDinnerCosts(actorFrom(r), req.FoodCost.Decimal(), req.DrinkCost.Decimal())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewDinner(d))
}

func (a *API) handleSetDinnerFlags(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsEating   bool `json:"is_eating"`
		IsDrinking bool `json:"is_drinking"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	d, err := a.svc.SetDinnerFlags(actorFrom(r), pathVar(r, "id"), req.IsEating, req.IsDrinking)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewDinner(d))
}

func (a *API) handleFinalizeDinner(w http.ResponseWriter, r *http.Request) {
	rec, err := a.svc.FinalizeDinner(r.Context(), actorFrom(r))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"dinner": rec,
		"shares": nonNil(rec.Shares()),
	})
}

func (a *API) handleListDinners(w http.ResponseWriter, r *http.Request) {
	recs, err := a.svc.Dinners(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(recs))
}
