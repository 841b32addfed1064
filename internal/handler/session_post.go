package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mitchellh/mapstructure"

	"github.com/combinedb/combine/pkg/combine"
)

// SessionPost creates a new combine session from a schema, key
// pointers and optional memory budget.
type SessionPost struct {
	Base
}

type SessionRequest struct {
	Key          []string `mapstructure:"key"`
	MemoryBudget int64    `mapstructure:"memory_budget"`
}

func (s *SessionPost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	schema, ok := body["schema"]
	if !ok {
		WriteError(w, http.StatusBadRequest, "missing schema")
		return
	}
	rawSchema, err := json.Marshal(schema)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	delete(body, "schema")

	var req SessionRequest
	if err := mapstructure.WeakDecode(body, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.Sessions.Create(combine.Config{
		Schema:       rawSchema,
		Key:          req.Key,
		MemoryBudget: req.MemoryBudget,
	})
	if err != nil {
		WriteEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SessionResponse{ // nolint: errcheck
		Ok: true,
		ID: id,
	})
}

type SessionResponse struct {
	Ok bool   `json:"ok"`
	ID string `json:"id"`
}
