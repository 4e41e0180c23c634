package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	cpiengine "cpindex/contexts/governance/cpi-engine"
	cpierrors "cpindex/contexts/governance/cpi-engine/domain/errors"
	cpihttp "cpindex/contexts/governance/cpi-engine/transport/http"
	apikeyservice "cpindex/contexts/identity-access/apikey-service"
	apikeyentities "cpindex/contexts/identity-access/apikey-service/domain/entities"
	apikeyerrors "cpindex/contexts/identity-access/apikey-service/domain/errors"
	apikeyhttp "cpindex/contexts/identity-access/apikey-service/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "cpindex/internal/platform/httpserver/docs"
)

const apiKeyHeader = "X-API-Key"

type credentialContextKey struct{}

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	cpi     cpiengine.Module
	apikeys apikeyservice.Module
}

func New(
	cpi cpiengine.Module,
	apikeys apikeyservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		cpi:     cpi,
		apikeys: apikeys,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routing table for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /api/cpi", s.requireKey(s.handleCPISeries))
	s.mux.HandleFunc("GET /api/cpi/simulate", s.requireKey(s.handleSimulatedSeries))
	s.mux.HandleFunc("GET /api/historic-cpi", s.requireKey(s.handleHistoricCPI))
	s.mux.HandleFunc("GET /api/usage", s.requireKey(s.handleUsage))

	s.mux.HandleFunc("POST /api/admin/api-keys", s.handleIssueAPIKey)
	s.mux.HandleFunc("GET /api/admin/api-keys", s.handleGetAPIKey)
}

// requireKey authenticates the X-API-Key header and charges the request
// against the credential's rate-limit window before the wrapped handler
// runs. Telemetry headers are emitted on both admitted and denied
// requests.
func (s *Server) requireKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.apikeys.Handler.AdmitHandler(r.Context(), r.Header.Get(apiKeyHeader))
		if err != nil {
			switch {
			case errors.Is(err, apikeyerrors.ErrAPIKeyRequired):
				writeCPIError(w, http.StatusUnauthorized, "API key is required")
			case errors.Is(err, apikeyerrors.ErrAPIKeyInvalid):
				writeCPIError(w, http.StatusForbidden, "Invalid or inactive API key")
			case errors.Is(err, apikeyerrors.ErrLimiterUnavailable):
				writeCPIError(w, http.StatusServiceUnavailable, "Rate limiter unavailable")
			default:
				writeCPIError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		decision := result.Decision
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.Reset, 10))

		if !decision.Allowed {
			w.Header().Set("Retry-After", strconv.FormatInt(decision.RetryAfter, 10))
			writeCPIError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		ctx := context.WithValue(r.Context(), credentialContextKey{}, result.Key)
		next(w, r.WithContext(ctx))
	}
}

func credentialFromContext(ctx context.Context) (apikeyentities.APIKey, bool) {
	credential, ok := ctx.Value(credentialContextKey{}).(apikeyentities.APIKey)
	return credential, ok
}

func (s *Server) handleCPISeries(w http.ResponseWriter, r *http.Request) {
	resp, err := s.cpi.Handler.SeriesHandler(r.Context(), r.URL.Query().Get("epoch"))
	if err != nil {
		s.writeCPIDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSimulatedSeries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	delegator := query.Get("delegatorAddress")
	to := query.Get("toAddress")
	if delegator == "" || to == "" {
		writeCPIError(w, http.StatusBadRequest, "Both fromAddress and toAddress are required")
		return
	}

	resp, err := s.cpi.Handler.SimulateHandler(r.Context(), delegator, to)
	if err != nil {
		s.writeCPIDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistoricCPI(w http.ResponseWriter, r *http.Request) {
	if date := r.URL.Query().Get("date"); date != "" {
		resp, err := s.cpi.Handler.HistoricByDateHandler(r.Context(), date)
		if err != nil {
			s.writeCPIDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp, err := s.cpi.Handler.HistoricAllHandler(r.Context())
	if err != nil {
		s.writeCPIDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	credential, ok := credentialFromContext(r.Context())
	if !ok {
		writeCPIError(w, http.StatusUnauthorized, "API key is required")
		return
	}
	writeJSON(w, http.StatusOK, s.apikeys.Handler.UsageHandler(r.Context(), credential))
}

func (s *Server) handleIssueAPIKey(w http.ResponseWriter, r *http.Request) {
	var req apikeyhttp.IssueKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIKeyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.apikeys.Handler.IssueKeyHandler(r.Context(), req)
	if err != nil {
		s.writeAPIKeyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetAPIKey(w http.ResponseWriter, r *http.Request) {
	resp, err := s.apikeys.Handler.KeyByOwnerHandler(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		s.writeAPIKeyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeCPIDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cpierrors.ErrNoSnapshots):
		writeCPIError(w, http.StatusNotFound, "No data available")
	case errors.Is(err, cpierrors.ErrDateNotFound):
		writeJSON(w, http.StatusNotFound, cpihttp.ErrorResponse{
			Message: "No data found for the specified date",
		})
	case errors.Is(err, cpierrors.ErrUnknownEpoch):
		writeCPIError(w, http.StatusBadRequest, "Unknown epoch")
	case errors.Is(err, cpierrors.ErrAddressRequired):
		writeCPIError(w, http.StatusBadRequest, "Both fromAddress and toAddress are required")
	case errors.Is(err, cpierrors.ErrDelegateNotFound):
		writeCPIError(w, http.StatusNotFound, "Delegator has no current delegation")
	case errors.Is(err, cpierrors.ErrUpstreamUnavailable):
		s.logUnhandled(err)
		writeCPIError(w, http.StatusBadGateway, "Upstream data source unavailable")
	default:
		s.logUnhandled(err)
		writeCPIError(w, http.StatusInternalServerError, "Failed to calculate CPI")
	}
}

func (s *Server) writeAPIKeyDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apikeyerrors.ErrOwnerRequired):
		writeAPIKeyError(w, http.StatusBadRequest, "owner_required", err.Error())
	case errors.Is(err, apikeyerrors.ErrInvalidRateLimit):
		writeAPIKeyError(w, http.StatusBadRequest, "invalid_rate_limit", err.Error())
	case errors.Is(err, apikeyerrors.ErrKeyNotFound):
		writeAPIKeyError(w, http.StatusNotFound, "key_not_found", err.Error())
	case errors.Is(err, apikeyerrors.ErrKeyConflict):
		writeAPIKeyError(w, http.StatusConflict, "key_conflict", err.Error())
	default:
		s.logUnhandled(err)
		writeAPIKeyError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) logUnhandled(err error) {
	s.logger.Error("request failed",
		"event", "http_request_failed",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"error", err.Error(),
	)
}

func writeCPIError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, cpihttp.ErrorResponse{
		Error: message,
	})
}

func writeAPIKeyError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, apikeyhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
