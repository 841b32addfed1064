package handler

import (
	"github.com/gorilla/mux"

	"github.com/combinedb/combine/internal/controller"
)

type Router struct {
	Sessions *controller.Sessions
}

func (router Router) Build(r *mux.Router) error {
	b := Base{
		Sessions: router.Sessions,
	}

	r.Methods("POST").Path("/_session").Handler(&SessionPost{Base: b})

	r.Methods("POST").Path("/{session}/_bulk").Handler(&DocsBulk{Base: b})
	r.Methods("GET").Path("/{session}/_drain").Handler(&SessionDrain{Base: b})
	r.Methods("POST").Path("/{session}").Handler(&DocPost{Base: b})
	r.Methods("DELETE").Path("/{session}").Handler(&SessionDelete{Base: b})

	return nil
}
