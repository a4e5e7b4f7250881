package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicledger/disclosure-engine/pkg/apperrors"
	"github.com/civicledger/disclosure-engine/pkg/models"
	"github.com/civicledger/disclosure-engine/pkg/services"
)

// EntityListResponse for GET /api/holders/{holder}/entities.
type EntityListResponse struct {
	HolderID string           `json:"holder_id"`
	Entities []*models.Entity `json:"entities"`
	Total    int              `json:"total"`
}

// TimelineResponse for GET /api/entities/{eid}/timeline.
type TimelineResponse struct {
	EntityID    string               `json:"entity_id"`
	Disclosures []*models.Disclosure `json:"disclosures"`
	Total       int                  `json:"total"`
}

// EntityHandler handles entity HTTP requests.
type EntityHandler struct {
	registry services.EntityRegistry
	logger   *zap.Logger
}

// NewEntityHandler creates a new entity handler.
func NewEntityHandler(registry services.EntityRegistry, logger *zap.Logger) *EntityHandler {
	return &EntityHandler{registry: registry, logger: logger}
}

// RegisterRoutes registers the entity handler's routes on the given mux.
func (h *EntityHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/holders/{holder}/entities", h.ListByHolder)
	mux.HandleFunc("GET /api/entities/{eid}/timeline", h.Timeline)
}

// ListByHolder handles GET /api/holders/{holder}/entities.
func (h *EntityHandler) ListByHolder(w http.ResponseWriter, r *http.Request) {
	holder := r.PathValue("holder")
	if holder == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "holder is required")
		return
	}

	entities, err := h.registry.EntitiesForHolder(r.Context(), holder)
	if err != nil {
		h.logger.Error("Failed to list entities", zap.String("holder_id", holder), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to list entities")
		return
	}

	response := EntityListResponse{
		HolderID: holder,
		Entities: entities,
		Total:    len(entities),
	}
	if response.Entities == nil {
		response.Entities = []*models.Entity{}
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode entity list response", zap.Error(err))
	}
}

// Timeline handles GET /api/entities/{eid}/timeline.
func (h *EntityHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	entityID, err := uuid.Parse(r.PathValue("eid"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid entity id")
		return
	}

	disclosures, err := h.registry.Timeline(r.Context(), entityID)
	if errors.Is(err, apperrors.ErrNotFound) {
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", "entity not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to load entity timeline", zap.String("entity_id", entityID.String()), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to load timeline")
		return
	}

	response := TimelineResponse{
		EntityID:    entityID.String(),
		Disclosures: disclosures,
		Total:       len(disclosures),
	}
	if response.Disclosures == nil {
		response.Disclosures = []*models.Disclosure{}
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode timeline response", zap.Error(err))
	}
}
