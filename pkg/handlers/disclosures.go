package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicledger/disclosure-engine/pkg/apperrors"
	"github.com/civicledger/disclosure-engine/pkg/models"
	"github.com/civicledger/disclosure-engine/pkg/repositories"
)

const (
	defaultDisclosureLimit = 100
	maxDisclosureLimit     = 1000
)

// DisclosureListResponse for GET /api/disclosures.
type DisclosureListResponse struct {
	Disclosures []*models.Disclosure `json:"disclosures"`
	Total       int                  `json:"total"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

// DisclosureHandler handles disclosure HTTP requests.
type DisclosureHandler struct {
	disclosures repositories.DisclosureRepository
	logger      *zap.Logger
}

// NewDisclosureHandler creates a new disclosure handler.
func NewDisclosureHandler(disclosures repositories.DisclosureRepository, logger *zap.Logger) *DisclosureHandler {
	return &DisclosureHandler{disclosures: disclosures, logger: logger}
}

// RegisterRoutes registers the disclosure handler's routes on the given mux.
func (h *DisclosureHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/disclosures", h.List)
	mux.HandleFunc("GET /api/disclosures/{id}", h.Get)
}

// Get handles GET /api/disclosures/{id}.
func (h *DisclosureHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid disclosure id")
		return
	}

	disclosure, err := h.disclosures.GetByID(r.Context(), id)
	if errors.Is(err, apperrors.ErrNotFound) {
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", "disclosure not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to load disclosure", zap.String("disclosure_id", id.String()), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to load disclosure")
		return
	}

	if err := WriteJSON(w, http.StatusOK, disclosure); err != nil {
		h.logger.Error("Failed to encode disclosure response", zap.Error(err))
	}
}

// List handles GET /api/disclosures.
// Supported query parameters: holder, category, from, to, limit, offset.
func (h *DisclosureHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := models.DisclosureFilter{
		HolderName: query.Get("holder"),
		FromDate:   query.Get("from"),
		ToDate:     query.Get("to"),
		Limit:      defaultDisclosureLimit,
	}

	if raw := query.Get("category"); raw != "" {
		category := models.Category(raw)
		if !category.Valid() {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "unrecognized category")
			return
		}
		filter.Category = category
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		if limit > maxDisclosureLimit {
			limit = maxDisclosureLimit
		}
		filter.Limit = limit
	}

	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "offset must be a non-negative integer")
			return
		}
		filter.Offset = offset
	}

	disclosures, err := h.disclosures.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list disclosures", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to list disclosures")
		return
	}

	response := DisclosureListResponse{
		Disclosures: disclosures,
		Total:       len(disclosures),
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if response.Disclosures == nil {
		response.Disclosures = []*models.Disclosure{}
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode disclosure list response", zap.Error(err))
	}
}
