package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"

	"github.com/metageek-llc/ManagedWifi/internal/telemetry"
)

type Http struct {
	listen      string
	metricsPath string
	store       *Store
	logger      *slog.Logger
	router      *mux.Router
	server      *http.Server
}

func NewHttp(listen, metricsPath string, store *Store, logger *slog.Logger) *Http {
	h := &Http{
		listen:      listen,
		metricsPath: metricsPath,
		store:       store,
		logger:      logger,
	}
	h.LoadRouter()
	h.server = &http.Server{
		Handler:           h.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return h
}

func (h *Http) Router() *mux.Router {
	if h.router == nil {
		h.router = mux.NewRouter()
		h.router.Use(h.Middleware)
	}
	return h.router
}

func (h *Http) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (h *Http) LoadRouter() {
	router := h.Router()

	router.Handle(h.metricsPath, telemetry.Handler()).Methods("GET")
	router.HandleFunc("/api/bss", h.List).Methods("GET")
	router.HandleFunc("/api/bss/{bssid}", h.Get).Methods("GET")
}

func (h *Http) List(w http.ResponseWriter, r *http.Request) {
	Response(w, r, h.store.List())
}

func (h *Http) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := strings.ToLower(vars["bssid"])
	if b, ok := h.store.Get(id); ok {
		Response(w, r, b)
	} else {
		http.Error(w, vars["bssid"], http.StatusNotFound)
	}
}

// Start listens on the configured address and serves until Shutdown.
func (h *Http) Start() error {
	ln, err := net.Listen("tcp", h.listen)
	if err != nil {
		return err
	}
	return h.Serve(ln)
}

func (h *Http) Serve(ln net.Listener) error {
	h.logger.Info("http server listening", slog.String("addr", ln.Addr().String()))
	if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *Http) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// Response writes v as YAML when the request asks for ?format=yaml and as
// JSON otherwise.
func Response(w http.ResponseWriter, r *http.Request, v interface{}) {
	if r.URL.Query().Get("format") == "yaml" {
		ResponseYaml(w, v)
	} else {
		ResponseJson(w, v)
	}
}

func ResponseJson(w http.ResponseWriter, v interface{}) {
	str, err := json.MarshalIndent(v, "", "    ")
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(str)
	} else {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func ResponseYaml(w http.ResponseWriter, v interface{}) {
	str, err := yaml.Marshal(v)
	if err == nil {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(str)
	} else {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
