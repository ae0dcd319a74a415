package webserver

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

const defaultAddr = ":8080"

type Manager struct {
	r    *mux.Router
	addr string
}

// NewManager serves files in resourcesDir under /resources/. WEBSERVER_ADDRESS overrides
// the listen address.
func NewManager(resourcesDir string) *Manager {
	m := &Manager{
		r:    mux.NewRouter(),
		addr: defaultAddr,
	}
	if addr := os.Getenv("WEBSERVER_ADDRESS"); addr != "" {
		m.addr = addr
	}

	m.rootHandlers(resourcesDir)
	return m
}

func (m *Manager) Router() *mux.Router {
	return m.r
}

func (m *Manager) Addr() string {
	return m.addr
}

func (m *Manager) rootHandlers(resourcesDir string) {
	fs := http.FileServer(http.Dir(resourcesDir))
	resStr := "/resources/"

	m.r.PathPrefix(resStr).Handler(http.StripPrefix(resStr, fs))
}

// Routes lists every registered path template with its methods.
func (m *Manager) Routes() []string {
	routes := []string{}
	_ = m.r.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err == nil {
			pathTemplate += " " + strings.Join(methods, ",")
		}
		routes = append(routes, pathTemplate)
		return nil
	})
	return routes
}

func (m *Manager) Debug() {
	for _, route := range m.Routes() {
		log.Println("ROUTE:", route)
	}
}

// Serve blocks until ctx is cancelled, then shuts the server down gracefully.
func (m *Manager) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         m.addr,
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      m.r,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("webserver listening on %s\n", m.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	log.Println("webserver shutting down")
	return err
}
