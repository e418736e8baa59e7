package target

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const maxSlowDelay = 2 * time.Minute

// Server is a local stand-in for a smoke-check target with well-known
// healthy and failing endpoints.
type Server struct {
	Logger     *zap.Logger
	LimitRPM   int
	LimitBurst int

	flap atomic.Uint64
}

func NewServer(l *zap.Logger, limitRPM, limitBurst int) *Server {
	return &Server{Logger: l, LimitRPM: limitRPM, LimitBurst: limitBurst}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/status/{code}", s.handleStatus)
	r.Get("/slow", s.handleSlow)
	r.Get("/flap", s.handleFlap)
	r.With(RateLimit(s.LimitRPM, s.LimitBurst)).Get("/limited", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}

// handleStatus replies with the requested code. ?size=N pads the body to N
// characters so body truncation can be observed.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil || code < 200 || code > 599 {
		http.Error(w, "status must be between 200 and 599", http.StatusBadRequest)
		return
	}

	body := fmt.Sprintf("fixture status %d\n", code)
	if size, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && size > len(body) {
		body += strings.Repeat("x", size-len(body))
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Fixture", "status")
	w.WriteHeader(code)
	w.Write([]byte(body))
}

// handleSlow waits ?delay= (default 5s) before answering 200.
func (s *Server) handleSlow(w http.ResponseWriter, r *http.Request) {
	delay := 5 * time.Second
	if v := r.URL.Query().Get("delay"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 || d > maxSlowDelay {
			http.Error(w, "bad delay", http.StatusBadRequest)
			return
		}
		delay = d
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-r.Context().Done():
		return
	case <-t.C:
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("slow ok"))
}

// handleFlap alternates 503 and 200, starting with 503.
func (s *Server) handleFlap(w http.ResponseWriter, r *http.Request) {
	if s.flap.Add(1)%2 == 1 {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("flap down"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("flap up"))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if s.Logger != nil {
			s.Logger.Debug("target_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("took", time.Since(start)),
			)
		}
	})
}
