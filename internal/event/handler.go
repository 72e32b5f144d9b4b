package event

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitter/internal/expense/split"
	"github.com/fkhayef/splitter/pkg/response"
)

// Handler accepts domain events over HTTP from upstream services that
// deliver this way instead of over a broker. Same applier, same dedup.
type Handler struct {
	applier *Applier
}

// NewHandler creates a new event ingest handler
func NewHandler(applier *Applier) *Handler {
	return &Handler{applier: applier}
}

// Routes returns the router for event ingest
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Ingest)
	return r
}

// Envelope is the wire shape for ingested events
type Envelope struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

// IngestResult reports what happened to a delivered event
type IngestResult struct {
	Applied   bool `json:"applied"`
	Duplicate bool `json:"duplicate,omitempty"`
}

// Ingest handles POST /events
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var envelope Envelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	var ev any
	switch envelope.EventType {
	case TypeExpenseCreated:
		var e ExpenseCreated
		if err := json.Unmarshal(envelope.Data, &e); err != nil {
			response.BadRequest(w, "Invalid expense.created payload")
			return
		}
		ev = e
	case TypeExpenseDeleted:
		var e ExpenseDeleted
		if err := json.Unmarshal(envelope.Data, &e); err != nil {
			response.BadRequest(w, "Invalid expense.deleted payload")
			return
		}
		ev = e
	case TypeSettlementConfirmed:
		var e SettlementConfirmed
		if err := json.Unmarshal(envelope.Data, &e); err != nil {
			response.BadRequest(w, "Invalid settlement.confirmed payload")
			return
		}
		ev = e
	default:
		response.BadRequest(w, "Unknown event type: "+envelope.EventType)
		return
	}

	if err := h.applier.Apply(r.Context(), ev); err != nil {
		var duplicate *DuplicateEventError
		if errors.As(err, &duplicate) {
			response.JSON(w, http.StatusOK, IngestResult{Applied: false, Duplicate: true})
			return
		}
		var outOfOrder *OutOfOrderEventError
		if errors.As(err, &outOfOrder) {
			response.Conflict(w, err.Error())
			return
		}
		var validation *split.ValidationError
		if errors.As(err, &validation) {
			response.UnprocessableEntity(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to apply event")
		return
	}

	response.JSON(w, http.StatusAccepted, IngestResult{Applied: true})
}
