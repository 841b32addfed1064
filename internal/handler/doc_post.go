package handler

import (
	"encoding/json"
	"net/http"
)

// DocPost adds one document to a session.
type DocPost struct {
	Base
}

func (s *DocPost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	_, h := Lookup{Base: s.Base}.Do(w, r)
	if h == nil {
		return
	}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.Lock()
	err := h.Session.Add(doc)
	h.Unlock()
	if err != nil {
		WriteEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(OkResponse{Ok: true}) // nolint: errcheck
}

type OkResponse struct {
	Ok bool `json:"ok"`
}
