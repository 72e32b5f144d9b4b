package ledger

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fkhayef/splitter/pkg/response"
)

// Handler exposes the ledger's read surface over HTTP
type Handler struct {
	service *Service
}

// NewHandler creates a new ledger handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GroupRoutes returns the router for group-scoped balance endpoints
func (h *Handler) GroupRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{groupId}/balances", h.GetGroupBalances)
	r.Get("/{groupId}/balances/summary", h.GetGroupSummary)
	r.Get("/{groupId}/balances/{userA}/{userB}", h.GetBalanceBetween)
	r.Get("/{groupId}/debts/simplified", h.GetSimplifiedDebts)
	r.Get("/{groupId}/transactions", h.ListTransactions)

	return r
}

// UserRoutes returns the router for user-scoped balance endpoints
func (h *Handler) UserRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{userId}/balances", h.GetUserBalances)
	return r
}

// GetGroupBalances handles GET /groups/{groupId}/balances
func (h *Handler) GetGroupBalances(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	entries, err := h.service.GetGroupBalances(r.Context(), groupID)
	if err != nil {
		response.InternalError(w, "Failed to get group balances")
		return
	}

	response.JSON(w, http.StatusOK, entries)
}

// GetGroupSummary handles GET /groups/{groupId}/balances/summary
func (h *Handler) GetGroupSummary(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	summary, err := h.service.GetGroupSummary(r.Context(), groupID)
	if err != nil {
		response.InternalError(w, "Failed to get group summary")
		return
	}

	response.JSON(w, http.StatusOK, summary)
}

// GetBalanceBetween handles GET /groups/{groupId}/balances/{userA}/{userB}
func (h *Handler) GetBalanceBetween(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}
	userA, err := uuid.Parse(chi.URLParam(r, "userA"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}
	userB, err := uuid.Parse(chi.URLParam(r, "userB"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = "USD"
	}

	entry, err := h.service.GetBalanceBetween(r.Context(), groupID, userA, userB, currency)
	if err != nil {
		if errors.Is(err, ErrSelfBalance) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get balance")
		return
	}

	response.JSON(w, http.StatusOK, entry)
}

// GetSimplifiedDebts handles GET /groups/{groupId}/debts/simplified
func (h *Handler) GetSimplifiedDebts(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	debts, err := h.service.GetSimplifiedDebts(r.Context(), groupID)
	if err != nil {
		response.InternalError(w, "Failed to simplify debts")
		return
	}

	response.JSON(w, http.StatusOK, debts)
}

// ListTransactions handles GET /groups/{groupId}/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupId"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	transactions, err := h.service.ListTransactions(r.Context(), groupID)
	if err != nil {
		response.InternalError(w, "Failed to list transactions")
		return
	}

	response.JSON(w, http.StatusOK, transactions)
}

// GetUserBalances handles GET /users/{userId}/balances
func (h *Handler) GetUserBalances(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	entries, err := h.service.GetUserBalances(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to get user balances")
		return
	}

	response.JSON(w, http.StatusOK, entries)
}
