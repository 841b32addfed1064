package main

import (
	"log"
	"net/http"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/combinedb/combine/internal/controller"
	"github.com/combinedb/combine/internal/handler"
	"github.com/combinedb/combine/pkg/combine"
)

type Config struct {
	ListenAddress string `env:"COMBINED_LISTEN" envDefault:":8016"`
	SpillDir      string `env:"COMBINED_SPILL_DIR"`
	MemoryBudget  int64  `env:"COMBINED_MEMORY_BUDGET"`
}

func main() {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal(err)
	}

	sessions := controller.NewSessions(combine.Config{
		MemoryBudget: cfg.MemoryBudget,
		SpillDir:     cfg.SpillDir,
	})
	defer sessions.CloseAll()

	r := mux.NewRouter()
	err := handler.Router{Sessions: sessions}.Build(r)
	if err != nil {
		log.Fatal(err)
	}

	loggedRouter := handlers.LoggingHandler(os.Stdout, r)

	log.Printf("Listening on %s...", cfg.ListenAddress)
	err = http.ListenAndServe(cfg.ListenAddress, loggedRouter)
	if err != nil {
		log.Fatal(err)
	}
}
