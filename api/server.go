// Package api - Thin HTTP layer over the valuation engine.
// The API is only responsible for input ingestion, engine orchestration and output serialization.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"inventory-valuation/core/engine"
	"inventory-valuation/core/explanation"
	"inventory-valuation/internal/config"
	"inventory-valuation/internal/errors"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// Server is the API server
type Server struct {
	router  chi.Router
	engine  *engine.Engine
	config  *config.Config
	logger  *zap.Logger
	version string
}

// NewServer creates a new API server
func NewServer(version string, cfg *config.Config, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		router: chi.NewRouter(),
		engine: engine.New(engine.Config{
			Version:  version,
			Currency: cfg.Valuation.Currency,
		}, nil, logger),
		config:  cfg,
		logger:  logger,
		version: version,
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	r := s.router
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/valuation", s.handleValuation)
		r.Post("/oar", s.handleOAR)
		r.Post("/absorption", s.handleAbsorption)
		r.Post("/variance", s.handleVariance)
		r.Get("/bases", s.handleBases)
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "inventory-valuation",
		"api_version": "v1",
	}, http.StatusOK)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on the configured address until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Server.Addr,
		Handler:      s,
		ReadTimeout:  time.Duration(s.config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.config.Server.WriteTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", srv.Addr), zap.String("version", s.version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Internal("serve", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("api shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Internal("shutdown", err)
		}
		return nil
	}
}

// readBody reads a capped request body, treating an empty body as an empty JSON object
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Parsing("read request body", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return []byte("{}"), nil
	}
	return body, nil
}

// decodeJSON strictly decodes a request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Parsing("decode request body", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorBody(err)
	body.RequestID = requestIDFrom(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("request_id", body.RequestID), zap.Error(err))
	}
	s.writeJSON(w, ErrorResponse{Error: body}, status)
}

// errorBody maps a domain error to a status code and payload
func errorBody(err error) (int, ErrorBody) {
	e, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError, ErrorBody{
			Code:    string(errors.TypeInternal),
			Message: "internal error",
		}
	}

	body := ErrorBody{
		Code:    string(e.Type),
		Message: e.Error(),
		Context: e.Context,
	}

	switch e.Type {
	case errors.TypeInput, errors.TypeParsing:
		return http.StatusBadRequest, body
	case errors.TypeDivisionByZero:
		body.Message = explanation.ValidationMessage
		body.Detail = e.Message
		return http.StatusUnprocessableEntity, body
	case errors.TypeNotSupported:
		return http.StatusNotImplemented, body
	default:
		body.Message = "internal error"
		body.Context = nil
		return http.StatusInternalServerError, body
	}
}

// queryBool reads a boolean query parameter, falling back to def
func queryBool(r *http.Request, key string, def bool) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Newf(errors.TypeInput, "query parameter %s must be a boolean", key).
			WithContext("value", raw)
	}
	return v, nil
}
