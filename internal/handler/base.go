package handler

import (
	"github.com/combinedb/combine/internal/controller"
)

type Base struct {
	Sessions *controller.Sessions
}
