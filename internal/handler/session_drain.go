package handler

import (
	"encoding/json"
	"log"
	"net/http"
)

// SessionDrain streams the session's reduced documents as NDJSON in
// ascending key order, then destroys the session. A mid-stream error
// aborts the response; partial output must not be trusted.
type SessionDrain struct {
	Base
}

type DrainLine struct {
	Key interface{} `json:"key"`
	Doc interface{} `json:"doc"`
}

func (s *SessionDrain) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id, h := Lookup{Base: s.Base}.Do(w, r)
	if h == nil {
		return
	}
	defer func() {
		if err := s.Sessions.Remove(id); err != nil {
			log.Printf("Failed to remove session %q: %v", id, err)
		}
	}()

	h.Lock()
	defer h.Unlock()

	iter, err := h.Session.Drain()
	if err != nil {
		WriteEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	enc := json.NewEncoder(w)
	for {
		doc, err := iter.Next()
		if err != nil {
			// headers are sent; all we can do is abort the stream
			log.Printf("Drain of session %q failed: %v", id, err)
			return
		}
		if doc == nil {
			return
		}
		if err := enc.Encode(DrainLine{Key: doc.Key, Doc: doc.Value}); err != nil {
			log.Printf("Drain of session %q aborted: %v", id, err)
			return
		}
	}
}
