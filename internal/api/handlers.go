package api

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kargig/divemap-sub000/internal/config"
	"github.com/kargig/divemap-sub000/internal/site"
	"github.com/kargig/divemap-sub000/internal/websocket"
	"github.com/kargig/divemap-sub000/pkg/logger"
)

// maxRequestBytes bounds calculator request bodies
const maxRequestBytes = 64 << 10

// Handler contains the API handlers
type Handler struct {
	calculators *Calculators
	siteService *site.Service
	config      *config.Config
	logger      *logger.Logger
	wsServer    *websocket.Server
	startedAt   time.Time
}

// NewHandler creates a new API handler
func NewHandler(calculators *Calculators, siteService *site.Service, config *config.Config, logger *logger.Logger, wsServer *websocket.Server) *Handler {
	return &Handler{
		calculators: calculators,
		siteService: siteService,
		config:      config,
		logger:      logger.Named("api-handler"),
		wsServer:    wsServer,
		startedAt:   time.Now(),
	}
}

// GetHealth returns the health status of the API
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		"ws_clients":     h.wsServer.ClientCount(),
		"site_count":     len(h.siteService.List()),
	}

	WriteJSON(w, http.StatusOK, response)
}

// GetConfig returns the calculator defaults a frontend pre-fills its forms with
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	calc := h.config.Calculators
	publicConfig := map[string]interface{}{
		"calculators": map[string]interface{}{
			"max_po2":            calc.MaxPO2,
			"max_end_m":          calc.MaxENDMeters,
			"o2_price_per_liter": calc.O2PricePerLiter,
			"he_price_per_liter": calc.HePricePerLiter,
			"rule_of_thirds":     calc.RuleOfThirds,
			"default_sac":        calc.DefaultSAC,
		},
	}

	WriteJSON(w, http.StatusOK, publicConfig)
}

// Calculate returns a handler running the named calculator on the request body
func (h *Handler) Calculate(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err != nil {
			WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}

		resp, err := h.calculators.Run(name, body)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, ErrUnknownCalculator) || errors.Is(err, site.ErrNotFound) {
				status = http.StatusNotFound
			}
			h.logger.Debug("Rejected calculator request",
				logger.String("calculator", name),
				logger.Error(err))
			WriteError(w, status, err.Error())
			return
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

// GetSites returns all configured dive sites
func (h *Handler) GetSites(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sites": h.siteService.List(),
	})
}

// GetSiteConditions returns surface pressure, altitude factor and declination
// for a site. An optional true_bearing query parameter adds the magnetic
// bearing to steer.
func (h *Handler) GetSiteConditions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "missing site id")
		return
	}

	var trueBearing *float64
	if raw := r.URL.Query().Get("true_bearing"); raw != "" {
		b, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(b) || math.IsInf(b, 0) {
			WriteError(w, http.StatusBadRequest, "invalid true_bearing: "+raw)
			return
		}
		trueBearing = &b
	}

	conditions, err := h.siteService.Conditions(id)
	if err != nil {
		if errors.Is(err, site.ErrNotFound) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("Failed to compute site conditions", logger.String("site", id), logger.Error(err))
		WriteError(w, http.StatusInternalServerError, "failed to compute site conditions")
		return
	}

	if trueBearing != nil {
		conditions = conditions.WithBearing(*trueBearing)
	}

	WriteJSON(w, http.StatusOK, conditions)
}

// WriteJSON writes a JSON response. The body is encoded before the status is
// sent so an encoding failure still reaches the client as a 500.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": err.Error()})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
