package api

import (
	"errors"
	"net/http"

	"github.com/susu3304/pokerclub/internal/club"
	"github.com/susu3304/pokerclub/internal/ledger"
)

// errorBody is what clients render: blocking errors need the user to change
// something, the rest are worth a retry.
type errorBody struct {
	Error    string `json:"error"`
	Kind     string `json:"kind"`
	Blocking bool   `json:"blocking"`
}

func classify(err error) (int, errorBody) {
	var (
		verr *ledger.ValidationError
		perr *ledger.PreconditionError
		rerr *ledger.ReferentialIntegrityError
		serr *ledger.PersistenceError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, errorBody{err.Error(), string(verr.Kind), true}
	case errors.As(err, &perr):
		return http.StatusConflict, errorBody{err.Error(), string(perr.Kind), true}
	case errors.As(err, &rerr):
		return http.StatusConflict, errorBody{err.Error(), "referential_integrity", true}
	case errors.Is(err, club.ErrVersionConflict):
		return http.StatusConflict, errorBody{err.Error(), "version_conflict", true}
	case errors.Is(err, club.ErrForbidden), errors.Is(err, club.ErrOwnerOnly):
		return http.StatusForbidden, errorBody{err.Error(), "forbidden", true}
	case errors.Is(err, club.ErrNotFound):
		return http.StatusNotFound, errorBody{err.Error(), "not_found", true}
	case errors.Is(err, errBadBody):
		return http.StatusBadRequest, errorBody{err.Error(), "bad_request", true}
	case errors.As(err, &serr):
		return http.StatusServiceUnavailable, errorBody{"storage is unavailable, try again", "persistence", false}
	}
	return http.StatusInternalServerError, errorBody{"internal error", "internal", false}
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		a.log.Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeJSON(w, status, body)
}
