package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/combinedb/combine/pkg/port"
)

func WriteError(w http.ResponseWriter, status int, reason string) {
	w.WriteHeader(status)
	statusText := strings.ToLower(http.StatusText(status))
	statusText = strings.ReplaceAll(statusText, " ", "_")
	statusText = strings.ReplaceAll(statusText, "'", "")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ErrorResponse{ // nolint: errcheck
		Error:  statusText,
		Reason: reason,
	})
}

// WriteEngineError maps engine error kinds onto response codes:
// rejected documents are the client's fault, reduction conflicts are
// reported as conflicts, everything else is a server failure.
func WriteEngineError(w http.ResponseWriter, err error) {
	var validation *port.ValidationError
	var reduction *port.ReductionError
	var schemaErr *port.SchemaError

	switch {
	case errors.As(err, &validation), errors.As(err, &schemaErr):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &reduction):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, port.ErrSessionDrained), errors.Is(err, port.ErrSessionClosed):
		WriteError(w, http.StatusGone, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}
