package handler

import (
	"encoding/json"
	"net/http"
)

// SessionDelete discards a session without draining it, releasing all
// accumulated state and spill storage.
type SessionDelete struct {
	Base
}

func (s *SessionDelete) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id, h := Lookup{Base: s.Base}.Do(w, r)
	if h == nil {
		return
	}

	if err := s.Sessions.Remove(id); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(OkResponse{Ok: true}) // nolint: errcheck
}
