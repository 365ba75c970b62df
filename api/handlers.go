/*
handlers.go - HTTP API handlers for the salary engine

PURPOSE:
  Exposes the CTC-to-take-home engine and its supporting data via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to the
  salary package and the SQLite store.

ENDPOINTS:
  Salary:
    POST   /api/salary/calculate        Compute a breakdown and record it
    GET    /api/salary/calculations     History (?user_id=&limit=)

  City tax:
    GET    /api/cities                  List city records
    POST   /api/cities                  Create or replace a city record
    POST   /api/cities/seed             Load the standard fallback table
    GET    /api/cities/{city}           Get one city record
    PUT    /api/cities/{city}           Update an existing city record
    DELETE /api/cities/{city}           Delete a city record

  Other:
    GET    /api/statistics              Calculation counts per city
    GET    /health                      Liveness

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: SQLite (city table + history)
  - Calculator: the engine, reading city tax through Cache when enabled
  - Cache: optional Redis cache, invalidated on every city write

REQUEST FLOW:
  1. Decode JSON body
  2. Validate struct tags
  3. Call the engine or the store
  4. Serialize response
  5. Map errors to status codes

ERROR HANDLING:
  Errors are returned as JSON {error, details} with:
  - 400: Validation errors, invalid monetary input, invalid seed data
  - 404: City record not found
  - 500: Internal errors (including failure to record a calculation)

SECURITY NOTE:
  No authentication. userId is taken from the request body as-is.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/salary-engine/salary"
	"github.com/warp/salary-engine/seed"
	"github.com/warp/salary-engine/store/cache"
	"github.com/warp/salary-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Calculator *salary.Calculator
	Cache      *cache.CityTaxCache

	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// NewHandler creates a new handler. cityCache and logger may be nil.
func NewHandler(store *sqlite.Store, calc *salary.Calculator, cityCache *cache.CityTaxCache, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:      store,
		Calculator: calc,
		Cache:      cityCache,
		logger:     logger,
		validate:   newValidator(),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// =============================================================================
// SALARY HANDLERS
// =============================================================================

// Calculate computes a breakdown and appends it to the history.
// POST /api/salary/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateSalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	domainReq := req.toDomain()
	breakdown, err := h.Calculator.Calculate(r.Context(), domainReq)
	if err != nil {
		if salary.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Invalid salary input", err)
			return
		}
		h.logger.Error("calculation failed", zap.String("city", req.City), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to calculate salary", err)
		return
	}

	rec := sqlite.CalculationRecord{
		ID:        h.newID(),
		UserID:    req.UserID,
		Request:   domainReq,
		Breakdown: breakdown,
		CreatedAt: h.now(),
	}
	if err := h.Store.SaveCalculation(r.Context(), rec); err != nil {
		h.logger.Error("failed to record calculation", zap.String("id", rec.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to record calculation", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCalculationDTO(rec))
}

// ListCalculations returns the calculation history, newest first.
// GET /api/salary/calculations?user_id=&limit=
func (h *Handler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	filter := sqlite.CalculationFilter{UserID: r.URL.Query().Get("user_id")}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", err)
			return
		}
		filter.Limit = limit
	}

	records, err := h.Store.ListCalculations(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calculations", err)
		return
	}

	dtos := make([]CalculationDTO, len(records))
	for i, rec := range records {
		dtos[i] = toCalculationDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CITY TAX HANDLERS
// =============================================================================

// ListCities returns all city records.
// GET /api/cities
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListCityTax(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list cities", err)
		return
	}

	dtos := make([]CityTaxDTO, len(records))
	for i, rec := range records {
		dtos[i] = toCityTaxDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCity returns a single city record.
// GET /api/cities/{city}
func (h *Handler) GetCity(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")

	rec, err := h.Store.LookupCity(r.Context(), city)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get city", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "City not found", salary.ErrCityNotFound)
		return
	}

	writeJSON(w, http.StatusOK, toCityTaxDTO(*rec))
}

// CreateCity creates or replaces a city record.
// POST /api/cities
func (h *Handler) CreateCity(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCityRequest(w, r)
	if !ok {
		return
	}
	if !req.ProfessionalTax.Valid {
		writeError(w, http.StatusBadRequest, "professionalTax is required",
			&seed.SeedError{Problems: []string{"professionalTax is required"}})
		return
	}

	rec, ok := validateCity(w, req.apply(salary.CityTaxRecord{City: req.City}))
	if !ok {
		return
	}

	if err := h.Store.SaveCityTax(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save city", err)
		return
	}
	h.invalidate(r, rec.City)

	h.respondWithCity(w, r, rec, http.StatusCreated)
}

// UpdateCity changes the fields sent in the body and keeps the rest.
// PUT /api/cities/{city}
func (h *Handler) UpdateCity(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")

	req, ok := decodeCityRequest(w, r)
	if !ok {
		return
	}

	existing, err := h.Store.LookupCity(r.Context(), city)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update city", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Failed to update city",
			fmt.Errorf("%w: %s", salary.ErrCityNotFound, city))
		return
	}

	rec, ok := validateCity(w, req.apply(*existing))
	if !ok {
		return
	}

	if err := h.Store.UpdateCityTax(r.Context(), rec); err != nil {
		writeError(w, statusFor(err), "Failed to update city", err)
		return
	}
	h.invalidate(r, rec.City)

	h.respondWithCity(w, r, rec, http.StatusOK)
}

// DeleteCity removes a city record.
// DELETE /api/cities/{city}
func (h *Handler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")

	deleted, err := h.Store.DeleteCityTax(r.Context(), city)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete city", err)
		return
	}
	if deleted {
		h.invalidate(r, city)
	}

	writeJSON(w, http.StatusOK, DeleteResponse{Success: deleted})
}

// SeedCities writes the standard fallback table into the store.
// POST /api/cities/seed
func (h *Handler) SeedCities(w http.ResponseWriter, r *http.Request) {
	records := seed.StandardRecords()

	if err := h.Store.SaveCityTaxBatch(r.Context(), records); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed cities", err)
		return
	}
	for _, rec := range records {
		h.invalidate(r, rec.City)
	}

	h.logger.Info("seeded city tax table", zap.Int("cities", len(records)))
	writeJSON(w, http.StatusOK, SeedResponse{Seeded: len(records)})
}

func decodeCityRequest(w http.ResponseWriter, r *http.Request) (CityTaxRequest, bool) {
	var req CityTaxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return CityTaxRequest{}, false
	}
	return req, true
}

// validateCity applies the seed rules to a single entry.
func validateCity(w http.ResponseWriter, c seed.CityJSON) (salary.CityTaxRecord, bool) {
	records, err := seed.FromJSON([]seed.CityJSON{c})
	if err != nil {
		writeError(w, statusFor(err), "Invalid city", err)
		return salary.CityTaxRecord{}, false
	}
	return records[0], true
}

// respondWithCity re-reads rec so the response carries the stored timestamp.
func (h *Handler) respondWithCity(w http.ResponseWriter, r *http.Request, rec salary.CityTaxRecord, status int) {
	if stored, err := h.Store.LookupCity(r.Context(), rec.City); err == nil && stored != nil {
		rec = *stored
	}
	writeJSON(w, status, toCityTaxDTO(rec))
}

func (h *Handler) invalidate(r *http.Request, city string) {
	if h.Cache != nil {
		h.Cache.Invalidate(r.Context(), city)
	}
}

// =============================================================================
// STATISTICS / HEALTH
// =============================================================================

// Statistics returns calculation counts overall and per city.
// GET /api/statistics
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	total, err := h.Store.CountCalculations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count calculations", err)
		return
	}
	usage, err := h.Store.CityUsage(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load city usage", err)
		return
	}

	cities := make([]CityUsageDTO, len(usage))
	for i, u := range usage {
		cities[i] = CityUsageDTO{City: u.City, Calculations: u.Calculations}
	}
	writeJSON(w, http.StatusOK, StatisticsDTO{TotalCalculations: total, Cities: cities})
}

// Health reports liveness.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeValidationError reports the first failed struct tag.
func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := fe.Field() + " is invalid"
		if fe.Tag() == "required" {
			msg = fe.Field() + " is required"
		}
		writeError(w, http.StatusBadRequest, msg, err)
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid input", err)
}

func statusFor(err error) int {
	switch {
	case salary.IsClientError(err), errors.Is(err, seed.ErrInvalidSeed):
		return http.StatusBadRequest
	case salary.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
