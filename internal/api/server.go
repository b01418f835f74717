// Package api exposes chart encryption, decryption and the saved chart
// library over HTTP.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/RowanDark/knitcipher/internal/chartstore"
	"github.com/RowanDark/knitcipher/internal/cipher"
	"github.com/RowanDark/knitcipher/internal/knit"
	"github.com/RowanDark/knitcipher/internal/logging"
)

const (
	// TokenHeader carries the static management token when minting JWTs.
	TokenHeader = "X-Knitchart-Token"
	// RequestIDHeader is echoed on every response.
	RequestIDHeader = "X-Request-ID"

	maxBodyBytes           = 1 << 20
	defaultIdentifyTimeout = 5 * time.Second
)

// Config configures the REST API server.
type Config struct {
	Addr             string
	StaticToken      string
	JWTSecret        []byte
	JWTIssuer        string
	DefaultTokenTTL  time.Duration
	DefaultAlgorithm string
	IdentifyTimeout  time.Duration
	Engine           *knit.Engine
	Store            *chartstore.Store
	Logger           *logging.AuditLogger
	Log              *slog.Logger
}

// Server exposes REST endpoints for chart operations.
type Server struct {
	cfg           Config
	httpServer    *http.Server
	router        *mux.Router
	authenticator *Authenticator
	engine        *knit.Engine
	store         *chartstore.Store
	staticToken   string
	logger        *logging.AuditLogger
	log           *slog.Logger
}

// NewServer constructs a REST API server using the provided configuration.
func NewServer(cfg Config) (*Server, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("api address must be provided")
	}
	if cfg.Store == nil {
		return nil, errors.New("chart store is required")
	}
	staticToken := strings.TrimSpace(cfg.StaticToken)
	if staticToken == "" {
		return nil, errors.New("static management token is required")
	}
	auth, err := NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, cfg.DefaultTokenTTL)
	if err != nil {
		return nil, err
	}
	if cfg.Engine == nil {
		cfg.Engine = knit.New(nil)
	}
	if cfg.DefaultAlgorithm == "" {
		cfg.DefaultAlgorithm = cipher.KeyCaesar
	}
	if cfg.IdentifyTimeout <= 0 {
		cfg.IdentifyTimeout = defaultIdentifyTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	s := &Server{
		cfg:           cfg,
		authenticator: auth,
		engine:        cfg.Engine,
		store:         cfg.Store,
		staticToken:   staticToken,
		logger:        cfg.Logger,
		log:           cfg.Log,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.requestID)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/tokens", s.handleTokenIssue).Methods(http.MethodPost)
	api.HandleFunc("/algorithms", s.handleAlgorithms).Methods(http.MethodGet)
	api.HandleFunc("/encrypt", s.handleEncrypt).Methods(http.MethodPost)
	api.HandleFunc("/decrypt", s.handleDecrypt).Methods(http.MethodPost)
	api.HandleFunc("/identify", s.handleIdentify).Methods(http.MethodPost)
	api.HandleFunc("/pipeline", s.handlePipeline).Methods(http.MethodPost)

	charts := api.PathPrefix("/charts").Subrouter()
	charts.Use(s.requireJWT)
	charts.HandleFunc("", s.handleListCharts).Methods(http.MethodGet)
	charts.HandleFunc("", s.handleSaveChart).Methods(http.MethodPost)
	charts.HandleFunc("/{id}", s.handleGetChart).Methods(http.MethodGet)
	charts.HandleFunc("/{id}", s.handleDeleteChart).Methods(http.MethodDelete)
	charts.HandleFunc("/{id}/export", s.handleExportChart).Methods(http.MethodGet)

	// Subrouters settle their own misses; a mismatch inside one never
	// reaches the root router's handlers.
	for _, r := range []*mux.Router{router, api, charts} {
		r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
		r.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)
	}
	return router
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusNotFound, "not found")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until the provided
// context is cancelled or a fatal error occurs.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve accepts connections on lis until ctx is cancelled. Cleartext
// HTTP/2 is accepted alongside HTTP/1.1.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           h2c.NewHandler(s.router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api listening", "addr", lis.Addr().String())
		err := s.httpServer.Serve(lis)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		_ = s.httpServer.Shutdown(shutdownCtx)
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleTokenIssue(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.Header.Get(TokenHeader))
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.staticToken)) != 1 {
		s.audit(r, logging.AuditEvent{
			EventType: logging.EventAuthDenied,
			Decision:  logging.DecisionDeny,
			Reason:    "invalid static token",
		})
		s.writeError(w, http.StatusUnauthorized, "unauthorised")
		return
	}
	var req struct {
		Subject    string  `json:"subject"`
		Scope      string  `json:"scope"`
		TTLSeconds float64 `json:"ttl_seconds"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	ttl := time.Duration(req.TTLSeconds * float64(time.Second))
	signed, expires, err := s.authenticator.Mint(req.Subject, req.Scope, ttl)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.audit(r, logging.AuditEvent{
		EventType: logging.EventTokenIssue,
		Decision:  logging.DecisionAllow,
		Metadata:  map[string]any{"subject": req.Subject, "expires_at": expires.Format(time.RFC3339)},
	})
	s.writeJSON(w, http.StatusOK, map[string]any{
		"token":      signed,
		"expires_at": expires.UTC().Format(time.RFC3339),
	})
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	claimsKey
)

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) requireJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			s.audit(r, logging.AuditEvent{
				EventType: logging.EventAuthDenied,
				Decision:  logging.DecisionDeny,
				Reason:    "missing bearer token",
				Metadata:  map[string]any{"path": r.URL.Path},
			})
			s.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := s.authenticator.Validate(authHeader[7:])
		if err != nil {
			s.audit(r, logging.AuditEvent{
				EventType: logging.EventAuthDenied,
				Decision:  logging.DecisionDeny,
				Reason:    err.Error(),
				Metadata:  map[string]any{"path": r.URL.Path},
			})
			s.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func subjectFrom(ctx context.Context) string {
	if claims, ok := ctx.Value(claimsKey).(*Claims); ok {
		return claims.Subject
	}
	return ""
}

func (s *Server) audit(r *http.Request, event logging.AuditEvent) {
	event.RequestID = requestIDFrom(r.Context())
	if subject := subjectFrom(r.Context()); subject != "" {
		if event.Metadata == nil {
			event.Metadata = map[string]any{}
		}
		event.Metadata["subject"] = subject
	}
	if err := s.logger.Emit(event); err != nil {
		s.log.Warn("audit emit failed", "event", event.EventType, "error", err)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		s.log.Warn("write response failed", "status", status, "error", err)
	}
}
