package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// DocsBulk adds a batch of documents to a session, reporting the
// outcome per document.
type DocsBulk struct {
	Base
}

type BulkDocsRequest struct {
	Docs []json.RawMessage `json:"docs"`
}

type BulkDocResponse struct {
	Ok     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

func (s *DocsBulk) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	_, h := Lookup{Base: s.Base}.Do(w, r)
	if h == nil {
		return
	}

	var req BulkDocsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := make([]BulkDocResponse, len(req.Docs))

	h.Lock()
	for i, raw := range req.Docs {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var doc interface{}
		err := dec.Decode(&doc)
		if err == nil {
			err = h.Session.Add(doc)
		}

		if err != nil {
			resp[i].Reason = err.Error()
		} else {
			resp[i].Ok = true
		}
	}
	h.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) // nolint: errcheck
}
