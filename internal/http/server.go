// Package http is the reference presentation shell: a thin JSON API that
// drives the ledger engine strictly through its public operations and
// re-derives filtered views on every request. It keeps no record state of
// its own.
package http

import (
	"net/http"
	"time"

	applog "ledger/internal/log"
	"ledger/internal/services"
)

type Server struct {
	http.Server

	engine *services.Engine
	clock  func() time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, engine *services.Engine, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		engine: engine,
		clock:  time.Now,
	}
	s.Addr = addr

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/expenses", s.handleExpenses)
	mux.HandleFunc("/expenses/update", s.handleUpdateExpense)
	mux.HandleFunc("/expenses/delete", s.handleDeleteExpense)

	s.Handler = applog.Middleware(logger.WithComponent(applog.ComponentHTTP))(mux)
	return s
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
