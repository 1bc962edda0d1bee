package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const streamKeepAlive = 25 * time.Second

func (a *API) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := a.svc.Snapshot(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleStream pushes a full snapshot as a server-sent event on connect and
// after every change.
func (a *API) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeMessage(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	changes, unsubscribe := a.svc.Hub().Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func() bool {
		snap, err := a.svc.Snapshot(r.Context())
		if err != nil {
			_, body := classify(err)
			b, _ := json.Marshal(body)
			fmt.Fprintf(w, "event: error\ndata: %s\n\n", b)
			flusher.Flush()
			return true
		}
		b, err := json.Marshal(snap)
		if err != nil {
			a.log.Error().Err(err).Msg("encode snapshot")
			return false
		}
		if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", b); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send() {
		return
	}
	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-changes:
			if !send() {
				return
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
