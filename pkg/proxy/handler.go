package proxy

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Flash5127/DU81-Proxy/pkg/gamepass"
	"github.com/Flash5127/DU81-Proxy/pkg/logging"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roproxy_http_requests_total",
		Help: "Total proxy HTTP requests by status",
	}, []string{"status"})

	httpRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "roproxy_http_request_duration_seconds",
		Help:    "Proxy HTTP request duration in seconds",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
	})
)

type gamepassesResponse struct {
	GamePasses []gamepass.Gamepass `json:"gamePasses"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler exposes the service over HTTP.
type Handler struct {
	service *Service
	logger  zerolog.Logger
}

// NewHandler creates an HTTP handler over the service.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
		logger:  logging.NewLogger("handler"),
	}
}

// GetGamepasses handles GET /v1/users/{userID}/gamepasses and the legacy
// GET /gamepasses?userId= form.
func (h *Handler) GetGamepasses(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID := r.PathValue("userID")
	if userID == "" {
		userID = r.URL.Query().Get("userId")
	}

	records, err := h.service.GetGamepasses(r.Context(), userID)

	var status int
	switch {
	case errors.Is(err, ErrMissingUserID):
		status = http.StatusBadRequest
		writeJSON(w, status, errorResponse{Error: "missing userId"})

	case err != nil:
		// Internal detail is logged, never exposed to the client.
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("Gamepass fetch failed")
		status = http.StatusBadGateway
		writeJSON(w, status, errorResponse{Error: "failed to fetch gamepasses"})

	default:
		if records == nil {
			records = []gamepass.Gamepass{}
		}
		status = http.StatusOK
		writeJSON(w, status, gamepassesResponse{GamePasses: records})
	}

	httpRequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	httpRequestDuration.Observe(time.Since(start).Seconds())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
