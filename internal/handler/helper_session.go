package handler

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/combinedb/combine/internal/controller"
)

// Lookup resolves the request's session handle, answering 404 itself
// when the id is unknown.
type Lookup struct {
	Base
}

func (l Lookup) Do(w http.ResponseWriter, r *http.Request) (string, *controller.Handle) {
	id := mux.Vars(r)["session"]
	h, ok := l.Sessions.Get(id)
	if !ok {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("unknown session %q", id))
		return id, nil
	}
	return id, h
}
