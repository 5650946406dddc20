// Package server provides the HTTP REST API for IntelliConsult.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/intelliconsult/internal/attendance"
	"github.com/jonathan/intelliconsult/internal/config"
	"github.com/jonathan/intelliconsult/internal/docstore"
	"github.com/jonathan/intelliconsult/internal/insights"
	"github.com/jonathan/intelliconsult/internal/matching"
	"github.com/jonathan/intelliconsult/internal/mlclient"
	"github.com/jonathan/intelliconsult/internal/repository"
	"github.com/jonathan/intelliconsult/internal/server/ratelimit"
)

// maxUploadBytes caps multipart request bodies.
const maxUploadBytes = 32 << 20

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       docstore.Store
	repo        *repository.Repository
	users       *UserService
	hours       *attendance.Service
	compositor  *insights.Compositor
	gateway     *matching.Gateway
	ml          *mlclient.Client
	validate    *validator.Validate
	rateLimiter *ratelimit.Limiter
	logger      *log.Logger
	fanout      int
	now         func() time.Time
}

// New creates a new server instance over an open document store
func New(cfg *config.Config, store docstore.Store, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	ml, err := mlclient.New(cfg.MLServiceURL, &mlclient.Options{
		Timeout:       cfg.MLTimeout,
		UploadTimeout: cfg.MLUploadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ML client: %w", err)
	}

	passwordConfig, err := config.NewPasswordConfig(cfg.BcryptCost, cfg.PasswordPepper)
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}

	repo := repository.New(store)
	agg := attendance.NewAggregator(cfg.MonthlyHoursPerDay, cfg.TotalHoursPerDay)

	s := &Server{
		store:      store,
		repo:       repo,
		users:      NewUserService(repo, passwordConfig),
		hours:      attendance.NewService(repo, agg, cfg.FanoutLimit, logger),
		compositor: insights.NewCompositor(repo, ml, cfg.FanoutLimit, logger),
		gateway:    matching.NewGateway(repo, ml, cfg.FanoutLimit),
		ml:         ml,
		validate:   newValidator(),
		logger:     logger,
		fanout:     max(cfg.FanoutLimit, 1),
		now:        time.Now,
	}

	s.rateLimiter = ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:         cfg.RateLimit.Enabled,
		DefaultLimit:    cfg.RateLimit.DefaultLimit,
		DefaultWindow:   cfg.RateLimit.DefaultWindow,
		CleanupInterval: cfg.RateLimit.CleanupInterval,
		Whitelist:       ratelimit.NewSet(cfg.RateLimit.Whitelist),
		Blacklist:       ratelimit.NewSet(cfg.RateLimit.Blacklist),
		EndpointConfigs: ratelimit.DefaultEndpointConfigs(),
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Person endpoints
	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /users/{id}", s.handleUpdateUser)
	mux.HandleFunc("GET /consultants", s.handleListConsultants)
	mux.HandleFunc("GET /consultants/count", s.handleCountConsultants)

	// Training endpoints
	mux.HandleFunc("POST /trainings", s.handleCreateTraining)
	mux.HandleFunc("GET /trainings/upcoming", s.handleUpcomingTrainings)
	mux.HandleFunc("GET /trainings/{id}", s.handleGetTraining)
	mux.HandleFunc("POST /users/{id}/assignments", s.handleAssignTraining)
	mux.HandleFunc("GET /users/{id}/assignments", s.handleGetAssignments)
	mux.HandleFunc("GET /assignments/count", s.handleCountAssignments)
	mux.HandleFunc("POST /users/{id}/completions", s.handleCompleteTraining)
	mux.HandleFunc("GET /users/{id}/completions", s.handleGetCompletions)

	// Attendance and hours endpoints
	mux.HandleFunc("POST /users/{id}/attendance", s.handleAddAttendance)
	mux.HandleFunc("GET /users/{id}/attendance", s.handleGetAttendance)
	mux.HandleFunc("POST /attendance/upload", s.handleUploadAttendance)
	mux.HandleFunc("GET /users/{id}/hours/monthly", s.handleMonthlyHours)
	mux.HandleFunc("GET /hours/monthly", s.handleAllMonthlyHours)
	mux.HandleFunc("GET /users/{id}/hours/total", s.handleTotalHours)

	// Skill endpoints
	mux.HandleFunc("POST /users/{id}/skills", s.handleMergeSkills)
	mux.HandleFunc("GET /users/{id}/skills", s.handleGetSkills)
	mux.HandleFunc("POST /users/{id}/resume", s.handleUploadResume)
	mux.HandleFunc("GET /users/{id}/training-score", s.handleTrainingScore)

	// Opportunity endpoints
	mux.HandleFunc("POST /opportunities", s.handleCreateOpportunity)
	mux.HandleFunc("POST /opportunities/match", s.handleMatchOpportunity)
	mux.HandleFunc("GET /opportunities/{id}", s.handleGetOpportunity)
	mux.HandleFunc("GET /managers/{id}/opportunities", s.handleListManagerOpportunities)
	mux.HandleFunc("POST /users/{id}/invites", s.handleInvite)
	mux.HandleFunc("GET /users/{id}/invites", s.handleListInvites)
	mux.HandleFunc("POST /users/{id}/accepts", s.handleAccept)
	mux.HandleFunc("GET /users/{id}/accepts", s.handleListAccepts)

	mux.HandleFunc("GET /insights", s.handleInsights)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.MLUploadTimeout + 30*time.Second, // uploads wait on the ML parser
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped request handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.Close(context.Background())
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close(ctx)
	s.logger.Info("server stopped")
	return nil
}

// Close stops background work and releases the store
func (s *Server) Close(ctx context.Context) {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if err := s.store.Close(ctx); err != nil {
		s.logger.Error("failed to close store", "err", err)
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, clientID, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "err", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, code, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message, "code": code})
}

// writeError maps err onto a status and code and writes it. Server-side
// failures are logged; their details are not echoed to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	message := err.Error()

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		message = validationMessage(fieldErrs)
	}

	switch code {
	case CodeInternal:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		message = "internal server error"
	case CodeUpstream:
		s.logger.Warn("ml service call failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	s.errorResponse(w, status, code, message)
}

// decode reads a JSON body into v and validates it
func (s *Server) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid request body: " + err.Error()}
	}
	if n, ok := v.(normalizer); ok {
		n.Normalize()
	}
	return s.validate.Struct(v)
}

// normalizer is implemented by request bodies that canonicalize their
// fields before validation.
type normalizer interface {
	Normalize()
}

// pathID returns the canonical form of a UUID path parameter
func (s *Server) pathID(r *http.Request, name string) (string, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return "", &ErrValidation{Field: name, Message: "must be a UUID"}
	}
	return id.String(), nil
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.logger.Warn("rate limit exceeded", "client", clientID, "limit", info.Limit, "reset", info.ResetTime.Format(time.RFC3339))
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return "validation error: " + strings.Join(parts, "; ")
}
