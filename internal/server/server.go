// Package server exposes the status page and the websocket status stream.
package server

import (
	"context"
	"log"
	"net/http"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"

	"github.com/mkorolev/joy2crsf/internal/hub"
)

type Server struct {
	hub        *hub.Hub
	addr       string
	page       []byte
	httpServer *http.Server
}

// New creates a status server serving page at / and the websocket stream
// at /ws. The page is minified once at startup.
func New(h *hub.Hub, addr string, page []byte) *Server {
	return &Server{
		hub:  h,
		addr: addr,
		page: minifyPage(page),
	}
}

func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.hub)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(s.page)
	})

	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	log.Printf("status server listening on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func minifyPage(raw []byte) []byte {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)

	out, err := m.Bytes("text/html", raw)
	if err != nil {
		log.Printf("status page minify failed, serving as-is: %v", err)
		return raw
	}
	return out
}
