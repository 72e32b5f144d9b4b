package settlement

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fkhayef/splitter/pkg/middleware"
	"github.com/fkhayef/splitter/pkg/response"
)

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for settlement endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Post("/{id}/confirm", h.Confirm)
	r.Post("/{id}/reject", h.Reject)
	r.Post("/{id}/cancel", h.Cancel)

	return r
}

// Create handles POST /settlements
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "X-User-ID header required")
		return
	}

	var req CreateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	settlement, err := h.service.Create(r.Context(), actorID, &req)
	if err != nil {
		if errors.Is(err, ErrCannotSettleSelf) || errors.Is(err, ErrNonPositiveAmount) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create settlement")
		return
	}

	response.JSON(w, http.StatusCreated, settlement.ToResponse())
}

// List handles GET /settlements filtered by group, user or pending_for
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		settlements []*Settlement
		err         error
	)

	switch {
	case r.URL.Query().Get("group") != "":
		groupID, parseErr := uuid.Parse(r.URL.Query().Get("group"))
		if parseErr != nil {
			response.BadRequest(w, "Invalid group id")
			return
		}
		settlements, err = h.service.ListByGroup(ctx, groupID)
	case r.URL.Query().Get("user") != "":
		userID, parseErr := uuid.Parse(r.URL.Query().Get("user"))
		if parseErr != nil {
			response.BadRequest(w, "Invalid user id")
			return
		}
		settlements, err = h.service.ListByUser(ctx, userID)
	case r.URL.Query().Get("pending_for") != "":
		userID, parseErr := uuid.Parse(r.URL.Query().Get("pending_for"))
		if parseErr != nil {
			response.BadRequest(w, "Invalid user id")
			return
		}
		settlements, err = h.service.ListPendingForUser(ctx, userID)
	default:
		response.BadRequest(w, "One of group, user or pending_for is required")
		return
	}

	if err != nil {
		response.InternalError(w, "Failed to list settlements")
		return
	}

	responses := make([]*SettlementResponse, len(settlements))
	for i, s := range settlements {
		responses[i] = s.ToResponse()
	}
	response.JSON(w, http.StatusOK, responses)
}

// GetByID handles GET /settlements/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid settlement ID")
		return
	}

	settlement, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSettlementNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get settlement")
		return
	}

	response.JSON(w, http.StatusOK, settlement.ToResponse())
}

// Confirm handles POST /settlements/{id}/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id, actorID uuid.UUID) (*Settlement, error) {
		return h.service.Confirm(r.Context(), id, actorID)
	})
}

// Reject handles POST /settlements/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var req RejectSettlementRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
	}

	h.transition(w, r, func(id, actorID uuid.UUID) (*Settlement, error) {
		return h.service.Reject(r.Context(), id, actorID, req.Reason)
	})
}

// Cancel handles POST /settlements/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id, actorID uuid.UUID) (*Settlement, error) {
		return h.service.Cancel(r.Context(), id, actorID)
	})
}

// transition shares the id/actor plumbing and error mapping of the
// three lifecycle endpoints
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(id, actorID uuid.UUID) (*Settlement, error)) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "X-User-ID header required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid settlement ID")
		return
	}

	settlement, err := fn(id, actorID)
	if err != nil {
		var unauthorized *UnauthorizedError
		if errors.As(err, &unauthorized) {
			response.Forbidden(w, err.Error())
			return
		}
		var state *StateError
		if errors.As(err, &state) {
			response.Conflict(w, err.Error())
			return
		}
		if errors.Is(err, ErrSettlementNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update settlement")
		return
	}

	response.JSON(w, http.StatusOK, settlement.ToResponse())
}
