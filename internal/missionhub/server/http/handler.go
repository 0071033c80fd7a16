package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/autopeer-io/missionlens/internal/tracker"
	"github.com/autopeer-io/missionlens/pkg/log"
	"github.com/autopeer-io/missionlens/pkg/mission/render"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error(err, "Failed to write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, tracker.ErrNotFound), errors.Is(err, tracker.ErrNoSpec):
		code = http.StatusNotFound
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	if !s.svc.Ready() {
		http.Error(w, "broker not connected", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) listVehicles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Vehicles())
}

func (s *Server) getVehicle(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Vehicle(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) deleteVehicle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.svc.Deregister(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	log.Info("Vehicle deregistered", "vehicle", id)
	w.WriteHeader(http.StatusNoContent)
}

// getGraph renders the vehicle's mission graph. ?format=dot selects
// Graphviz output, the default is JSON.
func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	renderer, err := render.ForFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	view, err := s.svc.Graph(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, view); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Write(buf.Bytes())
}

func (s *Server) getSpec(w http.ResponseWriter, r *http.Request) {
	spec, err := s.svc.Spec(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}
