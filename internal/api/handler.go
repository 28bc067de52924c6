// Package api implements the JSON method API of the scoring service: a
// single POST /method endpoint dispatching to online_score and
// clients_interests.
package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hw-score/scoring-api/internal/auth"
	"github.com/hw-score/scoring-api/internal/metrics"
	"github.com/hw-score/scoring-api/internal/middleware"
	"github.com/hw-score/scoring-api/internal/scoring"
)

// adminScore is returned for online_score calls by the admin login without
// consulting the store.
const adminScore = 42.0

// Response codes of the method API.
const (
	codeOK             = http.StatusOK
	codeBadRequest     = http.StatusBadRequest
	codeForbidden      = http.StatusForbidden
	codeNotFound       = http.StatusNotFound
	codeInvalidRequest = http.StatusUnprocessableEntity
	codeInternalError  = http.StatusInternalServerError
)

// Error messages for codes whose responses carry no field detail.
var errorMessages = map[int]string{
	codeBadRequest:     "Bad Request",
	codeForbidden:      "Forbidden",
	codeNotFound:       "Not Found",
	codeInvalidRequest: "Invalid Request",
	codeInternalError:  "Internal Server Error",
}

// Handler serves the method API.
type Handler struct {
	scorer  *scoring.Service
	authn   *auth.Authenticator
	logger  *slog.Logger
	metrics *metrics.Recorder

	// now feeds birthday validation; injectable for tests.
	now func() time.Time
}

// NewHandler creates the method API handler. The metrics recorder may be
// nil.
func NewHandler(scorer *scoring.Service, authn *auth.Authenticator, logger *slog.Logger, rec *metrics.Recorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		scorer:  scorer,
		authn:   authn,
		logger:  logger.With(slog.String("component", "api")),
		metrics: rec,
		now:     time.Now,
	}
}

// HandleMethod serves POST /method.
func (h *Handler) HandleMethod(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := h.requestLogger(r)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		// MaxBytesReader surfaces oversized bodies here.
		h.writeError(w, r, codeBadRequest, nil)
		return
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		logger.Warn("rejecting unparseable request body",
			slog.Int("body_bytes", len(body)))
		h.writeError(w, r, codeBadRequest, nil)
		return
	}

	req, fieldErrs := parseMethodRequest(payload)
	if fieldErrs != nil {
		logger.Info("request envelope failed validation",
			slog.Any("field_errors", fieldErrs))
		h.writeError(w, r, codeInvalidRequest, fieldErrs)
		return
	}

	if !h.authn.Verify(req.Account, req.Login, req.Token) {
		logger.Info("authentication failed",
			slog.String("login", req.Login))
		h.writeError(w, r, codeForbidden, nil)
		return
	}

	logger = logger.With(
		slog.String("login", req.Login),
		slog.String("api_method", req.Method))

	var (
		response any
		code     int
	)
	switch req.Method {
	case "online_score":
		response, code = h.handleOnlineScore(w, r, req, logger)
	case "clients_interests":
		response, code = h.handleClientsInterests(w, r, req, logger)
	default:
		logger.Info("unknown api method")
		h.writeError(w, r, codeInvalidRequest, nil)
		return
	}
	if response == nil {
		// The method handler already wrote an error response.
		return
	}

	elapsed := time.Since(start)
	if h.metrics != nil {
		h.metrics.RequestDuration.WithLabelValues(req.Method).Observe(elapsed.Seconds())
	}
	logger.Info("request served",
		slog.Int("code", code),
		slog.Duration("duration", elapsed))
	h.writeResponse(w, r, req.Method, response, code)
}

// handleOnlineScore serves the online_score method. A nil response means an
// error envelope was already written.
func (h *Handler) handleOnlineScore(w http.ResponseWriter, r *http.Request, req *MethodRequest, logger *slog.Logger) (any, int) {
	scoreReq, fieldErrs := parseOnlineScoreRequest(req.Arguments, h.now())
	if fieldErrs != nil {
		logger.Info("online_score arguments failed validation",
			slog.Any("field_errors", fieldErrs))
		h.writeError(w, r, codeInvalidRequest, fieldErrs)
		return nil, 0
	}
	if !scoreReq.HasValidPair() {
		logger.Info("online_score arguments missing a complete pair")
		h.writeError(w, r, codeInvalidRequest, nil)
		return nil, 0
	}

	logger.Info("scoring request accepted",
		slog.Any("has", scoreReq.Has))

	if req.Login == auth.AdminLogin {
		return map[string]any{"score": adminScore}, codeOK
	}

	score := h.scorer.Score(r.Context(), scoreReq.Profile)
	return map[string]any{"score": score}, codeOK
}

// handleClientsInterests serves the clients_interests method.
func (h *Handler) handleClientsInterests(w http.ResponseWriter, r *http.Request, req *MethodRequest, logger *slog.Logger) (any, int) {
	interestsReq, fieldErrs := parseClientsInterestsRequest(req.Arguments)
	if fieldErrs != nil {
		logger.Info("clients_interests arguments failed validation",
			slog.Any("field_errors", fieldErrs))
		h.writeError(w, r, codeInvalidRequest, fieldErrs)
		return nil, 0
	}

	logger.Info("interests request accepted",
		slog.Int("nclients", len(interestsReq.ClientIDs)))

	result := make(map[string]any, len(interestsReq.ClientIDs))
	for _, cid := range interestsReq.ClientIDs {
		interests, err := h.scorer.Interests(r.Context(), cid)
		if err != nil {
			logger.Error("interest lookup failed",
				slog.Int("client_id", cid),
				slog.String("error", err.Error()))
			h.writeError(w, r, codeInternalError, nil)
			return nil, 0
		}
		result[strconv.Itoa(cid)] = interests
	}
	return result, codeOK
}

// NotFound writes the API's 404 envelope. Installed as the router's
// not-found handler so unknown paths answer in the same format.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, codeNotFound, nil)
}

// writeResponse writes the success envelope {"response": ..., "code": ...}.
func (h *Handler) writeResponse(w http.ResponseWriter, r *http.Request, method string, response any, code int) {
	h.observe(method, code)
	writeJSON(w, r, code, map[string]any{
		"response": response,
		"code":     code,
	})
}

// writeError writes the error envelope {"error": ..., "code": ...}. detail
// overrides the canned message when validation produced field errors.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, code int, detail FieldErrors) {
	h.observe("", code)
	var errVal any = errorMessages[code]
	if len(detail) > 0 {
		errVal = detail
	}
	writeJSON(w, r, code, map[string]any{
		"error": errVal,
		"code":  code,
	})
}

func (h *Handler) observe(method string, code int) {
	if h.metrics == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	h.metrics.RequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(slog.String("request_id", middleware.RequestID(r.Context())))
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	if id := middleware.RequestID(r.Context()); id != "" {
		w.Header().Set("X-Request-Id", id)
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
