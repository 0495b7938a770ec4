// Package bridge accepts location updates and back-button presses from a
// native shell over a loopback HTTP endpoint.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jask/plotbook/internal/config"
	"github.com/jask/plotbook/internal/plots"
)

// ErrDisabled is returned when subscribing to a bridge that is turned off.
var ErrDisabled = errors.New("bridge disabled")

// LocationPort receives positions reported by the native map picker.
type LocationPort interface {
	PublishLocation(plots.LatLng)
}

// LocationFunc adapts a function to LocationPort.
type LocationFunc func(plots.LatLng)

func (f LocationFunc) PublishLocation(ll plots.LatLng) { f(ll) }

// Server is the bridge endpoint.
type Server struct {
	cfg     config.BridgeConfig
	log     *zap.Logger
	limiter *rate.Limiter
	router  *mux.Router

	mu     sync.Mutex
	port   LocationPort
	subs   map[int]func()
	nextID int

	srv *http.Server
	ln  net.Listener
}

func New(cfg config.BridgeConfig, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	limit := rate.Limit(cfg.RatePerSecond)
	if cfg.RatePerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	s := &Server{
		cfg:     cfg,
		log:     log,
		limiter: rate.NewLimiter(limit, burst),
		subs:    map[int]func(){},
	}
	s.router = s.newRouter()
	return s
}

func (s *Server) newRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "OK")
	}).Methods("GET")
	r.HandleFunc("/location", s.handleLocation).Methods("POST")
	r.HandleFunc("/back", s.handleBack).Methods("POST")
	r.Use(s.rateLimit)
	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Enabled reports whether the bridge will listen.
func (s *Server) Enabled() bool { return s.cfg.Enabled }

// SetLocationPort installs the receiver for location updates.
func (s *Server) SetLocationPort(p LocationPort) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.port = p
}

// Subscribe registers fn for back-button presses. The returned function
// removes the subscription and is safe to call more than once.
func (s *Server) Subscribe(fn func()) (func(), error) {
	if !s.cfg.Enabled {
		return func() {}, ErrDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}, nil
}

// Start listens on the configured address and serves in the background.
// A disabled bridge does nothing.
func (s *Server) Start() error {
	if !s.cfg.Enabled {
		return nil
	}
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("bridge listen %s: %w", s.cfg.Addr, err)
	}
	s.ln = ln
	s.srv = &http.Server{Handler: s.router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("bridge stopped", zap.Error(err))
		}
	}()
	s.log.Info("bridge listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Addr is the bound address once started.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Close stops the server.
func (s *Server) Close(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.log.Warn("bridge rate limit exceeded", zap.String("path", r.URL.Path))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lng are required"})
		return
	}
	ll := plots.LatLng{Lat: *req.Lat, Lng: *req.Lng}
	if !ll.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "coordinates out of range"})
		return
	}
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()
	if port == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no location receiver"})
		return
	}
	port.PublishLocation(ll)
	s.log.Debug("location received", zap.Float64("lat", ll.Lat), zap.Float64("lng", ll.Lng))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "ok"})
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"subscribers": len(fns)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
