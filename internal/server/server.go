// Package server provides the HTTP API for a running redaction engine.
//
// Endpoints:
//
//	POST /v1/redact  - redact one document {"text":"...", "doc_id":"..."}
//	GET  /status     - engine health, active policy, metrics snapshot
//	GET  /healthz    - liveness probe
//	GET  /metrics    - Prometheus exposition
package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/netutil"

	"github.com/sdrasco/freedact/internal/config"
	"github.com/sdrasco/freedact/internal/engine"
	"github.com/sdrasco/freedact/internal/logger"
	"github.com/sdrasco/freedact/internal/metrics"
	"github.com/sdrasco/freedact/internal/verify"
)

// Request bodies larger than this are rejected before decoding.
const maxBodyBytes = 10 << 20

// At most this many connections are served concurrently; the listener
// blocks accepts beyond it.
const maxConns = 64

// Server is the redaction API server.
type Server struct {
	cfg       *config.Config
	engine    *engine.Engine
	metrics   *metrics.Metrics
	token     string // bearer token for auth; empty = no auth
	log       *logger.Logger
	startTime time.Time

	registry      *prometheus.Registry
	httpRequests  *prometheus.CounterVec
	docOutcomes   *prometheus.CounterVec
	redactSeconds prometheus.Histogram
}

// New creates a server around an engine. token enables bearer
// authentication on the redaction and status routes when non-empty. A
// nil metrics disables the /status snapshot counters it would carry; a
// nil log is silenced.
func New(cfg *config.Config, eng *engine.Engine, m *metrics.Metrics, token string, log *logger.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.Nop()
	}

	reg := prometheus.NewRegistry()
	s := &Server{
		cfg:       cfg,
		engine:    eng,
		metrics:   m,
		token:     token,
		log:       log,
		startTime: time.Now(),
		registry:  reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "freedact_http_requests_total",
			Help: "HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "code"}),
		docOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "freedact_documents_total",
			Help: "Redacted documents by verification outcome.",
		}, []string{"outcome"}),
		redactSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "freedact_redact_duration_seconds",
			Help:    "Wall time of one full pipeline run.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(s.httpRequests, s.docOutcomes, s.redactSeconds)

	if s.token != "" {
		log.Info("init", "bearer token authentication enabled")
	}
	return s
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.countRequests)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(s.auth)
		r.Get("/status", s.handleStatus)
		r.Post("/v1/redact", s.handleRedact)
	})
	return r
}

// requestID echoes or assigns the X-Request-ID header.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// countRequests records one counter sample per finished request.
func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.httpRequests.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(ww.Status())).Inc()
	})
}

// auth checks for a valid Bearer token if one is configured.
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) ||
			subtle.ConstantTimeCompare([]byte(strings.TrimSpace(header[len(prefix):])), []byte(s.token)) != 1 {
			s.log.Warnf("auth", "unauthorized request from %s to %s", r.RemoteAddr, r.URL.Path)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type redactRequest struct {
	Text  string `json:"text"`
	DocID string `json:"doc_id"`
}

type redactResponse struct {
	DocID        string         `json:"doc_id"`
	Redacted     string         `json:"redacted"`
	Clean        bool           `json:"clean"`
	Verification *verify.Result `json:"verification"`
	Audit        verify.Audit   `json:"audit"`
}

func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req redactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, "document too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid request: need {\"text\":\"...\"}", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "invalid request: need {\"text\":\"...\"}", http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, err := s.engine.Redact(req.DocID, req.Text)
	if err != nil {
		s.docOutcomes.WithLabelValues("failed").Inc()
		s.log.Errorf("redact", "doc %s: %v", req.DocID, err)
		http.Error(w, "redaction failed", http.StatusInternalServerError)
		return
	}
	s.redactSeconds.Observe(time.Since(start).Seconds())

	status := http.StatusOK
	if res.Clean() {
		s.docOutcomes.WithLabelValues("clean").Inc()
	} else {
		s.docOutcomes.WithLabelValues("residual").Inc()
		if s.cfg.Verification.FailOnResidual {
			status = http.StatusUnprocessableEntity
		}
	}
	s.log.Infof("redact", "doc %s: %d replacements, clean=%t, %s",
		res.DocID, res.Audit.Replacements, res.Clean(), time.Since(start).Round(time.Millisecond))

	writeJSON(w, status, s.log, redactResponse{
		DocID:        res.DocID,
		Redacted:     res.Redacted,
		Clean:        res.Clean(),
		Verification: res.Verification,
		Audit:        res.Audit,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.log, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	type policy struct {
		PersonNames  bool   `json:"personNames"`
		GenericDates bool   `json:"genericDates"`
		RoleAliases  string `json:"roleAliases"`
		CrossDoc     bool   `json:"crossDoc"`
	}
	type response struct {
		Status        string            `json:"status"`
		Uptime        string            `json:"uptime"`
		Tool          string            `json:"tool"`
		SecretPresent bool              `json:"secretPresent"`
		Policy        policy            `json:"policy"`
		Metrics       *metrics.Snapshot `json:"metrics,omitempty"`
	}

	resp := response{
		Status:        "running",
		Uptime:        time.Since(s.startTime).Round(time.Second).String(),
		Tool:          engine.Tool,
		SecretPresent: len(s.cfg.Secret()) > 0,
		Policy: policy{
			PersonNames:  s.cfg.Redact.PersonNames,
			GenericDates: s.cfg.Redact.GenericDates,
			RoleAliases:  s.cfg.Redact.RoleAliases,
			CrossDoc:     s.cfg.Pseudonyms.CrossDocConsistency,
		},
	}
	if s.metrics != nil {
		snap := s.metrics.Snapshot()
		resp.Metrics = &snap
	}
	writeJSON(w, http.StatusOK, s.log, resp)
}

func writeJSON(w http.ResponseWriter, status int, log *logger.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("write", "JSON encode: %v", err)
	}
}

// Serve listens on addr and serves the API until the listener fails.
// Concurrent connections are capped at maxConns.
func (s *Server) Serve(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	ln = netutil.LimitListener(ln, maxConns)
	s.log.Infof("serve", "listening on %s", ln.Addr())

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.Serve(ln)
}
